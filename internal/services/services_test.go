package services

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

func init() {
	now = func() int64 { return 5000 }
}

func base() *models.Snapshot {
	return &models.Snapshot{
		ClinicName: "Smile",
		Settings:   models.DefaultSettings(),
		Patients: []models.Patient{{
			ID:           "p1",
			Name:         "Ali",
			Teeth:        map[int]models.Tooth{11: {Status: "healthy", UpdatedAt: 1}},
			Appointments: []models.Appointment{{ID: "a1", Date: "2024-05-01", UpdatedAt: 1}},
			UpdatedAt:    1,
		}},
		Memos:       []models.Memo{{ID: "m1", Title: "Gloves", UpdatedAt: 1}},
		LastUpdated: 100,
	}
}

func apply(t *testing.T, fn Transform, in *models.Snapshot) *models.Snapshot {
	t.Helper()
	before := in.Clone()
	out, err := fn(in)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Fatalf("transform modified its input (-before +after):\n%s", diff)
	}
	return out
}

func TestSetupClinic(t *testing.T) {
	out := apply(t, SetupClinic("New Clinic"), &models.Snapshot{})
	if !out.Initialized() || out.Settings != models.DefaultSettings() {
		t.Fatalf("out = %+v", out)
	}
	if _, err := SetupClinic("")(&models.Snapshot{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	cur, yes := "USD", true
	out := apply(t, UpdateSettings(SettingsPatch{Currency: &cur, ThousandsShortcut: &yes}), base())
	want := models.DefaultSettings()
	want.Currency = "USD"
	want.ThousandsShortcut = true
	if out.Settings != want {
		t.Fatalf("Settings = %+v, want %+v", out.Settings, want)
	}
}

func TestAddPatient(t *testing.T) {
	out := apply(t, AddPatient(models.Patient{Name: "Sara"}), base())
	if len(out.Patients) != 2 {
		t.Fatalf("patients = %+v", out.Patients)
	}
	added := out.Patients[1]
	if added.ID == "" || added.UpdatedAt != 5000 {
		t.Fatalf("added = %+v", added)
	}

	if _, err := AddPatient(models.Patient{ID: "p1", Name: "Dup"})(base()); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate: err = %v", err)
	}
	if _, err := AddPatient(models.Patient{})(base()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nameless: err = %v", err)
	}
}

func TestUpdatePatientLeavesSubCollections(t *testing.T) {
	name := "Ali Hassan"
	out := apply(t, UpdatePatient("p1", PatientPatch{Name: &name}), base())
	p := out.Patients[0]
	if p.Name != "Ali Hassan" || p.UpdatedAt != 5000 {
		t.Fatalf("patient = %+v", p)
	}
	if p.Teeth[11].UpdatedAt != 1 || p.Appointments[0].UpdatedAt != 1 {
		t.Fatalf("sub-items restamped: %+v", p)
	}

	if _, err := UpdatePatientNotes("nobody", "x")(base()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing patient: err = %v", err)
	}
}

func TestDeletePatientRecordsTombstone(t *testing.T) {
	out := apply(t, DeletePatient("p1"), base())
	if len(out.Patients) != 0 {
		t.Fatalf("patients = %+v", out.Patients)
	}
	if diff := cmp.Diff([]string{"p1"}, out.DeletedIDs); diff != "" {
		t.Fatalf("DeletedIDs (-want +got):\n%s", diff)
	}
}

func TestAppointments(t *testing.T) {
	out := apply(t, AddAppointment("p1", models.Appointment{Date: "2024-06-01", Time: "10:00"}), base())
	appts := out.Patients[0].Appointments
	if len(appts) != 2 || appts[1].Status != "scheduled" || appts[1].UpdatedAt != 5000 {
		t.Fatalf("appointments = %+v", appts)
	}
	if out.Patients[0].UpdatedAt != 1 {
		t.Fatalf("patient restamped by appointment: %d", out.Patients[0].UpdatedAt)
	}

	out = apply(t, DeleteAppointment("p1", "a1"), out)
	if len(out.Patients[0].Appointments) != 1 || out.Patients[0].Appointments[0].ID == "a1" {
		t.Fatalf("appointments = %+v", out.Patients[0].Appointments)
	}
	if diff := cmp.Diff([]string{"a1"}, out.DeletedIDs); diff != "" {
		t.Fatalf("DeletedIDs (-want +got):\n%s", diff)
	}

	if _, err := DeleteAppointment("p1", "missing")(base()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetTooth(t *testing.T) {
	out := apply(t, SetTooth("p1", 36, models.Tooth{Status: "crown"}), base())
	teeth := out.Patients[0].Teeth
	if teeth[36].Status != "crown" || teeth[36].UpdatedAt != 5000 {
		t.Fatalf("tooth 36 = %+v", teeth[36])
	}
	if teeth[11].UpdatedAt != 1 {
		t.Fatalf("tooth 11 restamped: %+v", teeth[11])
	}
	if _, err := SetTooth("p1", 99, models.Tooth{})(base()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetQueryAnswersOnePerQuestion(t *testing.T) {
	in := base()
	in.Patients[0].PatientQueries = []models.QueryAnswer{{QuestionID: "q1", Answer: "no", UpdatedAt: 1}}
	out := apply(t, SetQueryAnswers("p1", []models.QueryAnswer{
		{QuestionID: "q1", Answer: "yes"},
		{QuestionID: "q2", Answer: "penicillin"},
	}), in)
	want := []models.QueryAnswer{
		{QuestionID: "q1", Answer: "yes", UpdatedAt: 5000},
		{QuestionID: "q2", Answer: "penicillin", UpdatedAt: 5000},
	}
	if diff := cmp.Diff(want, out.Patients[0].PatientQueries); diff != "" {
		t.Fatalf("answers (-want +got):\n%s", diff)
	}
}

func TestAddMemo(t *testing.T) {
	out := apply(t, AddMemo(models.Memo{Title: "Call lab"}), base())
	if len(out.Memos) != 2 || out.Memos[1].ID == "" || out.Memos[1].UpdatedAt != 5000 {
		t.Fatalf("memos = %+v", out.Memos)
	}
}

func TestUpsertItem(t *testing.T) {
	out := apply(t, UpsertItem("inventory", "i1", []byte(`{"name":"Composite","quantity":4,"id":"ignored","updatedAt":1}`)), base())
	if len(out.Inventory) != 1 || out.Inventory[0].ID != "i1" || out.Inventory[0].UpdatedAt != 5000 {
		t.Fatalf("inventory = %+v", out.Inventory)
	}

	out = apply(t, UpsertItem("memos", "m1", []byte(`{"title":"Gloves (large)"}`)), base())
	if len(out.Memos) != 1 || out.Memos[0].Title != "Gloves (large)" {
		t.Fatalf("memos = %+v", out.Memos)
	}

	tests := []struct {
		name, kind, body string
		want             error
	}{
		{"unknown kind", "spaceships", `{}`, ErrUnknownKind},
		{"bad json", "memos", `{`, ErrInvalidInput},
		{"wrong type", "memos", `{"title": 3}`, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UpsertItem(tt.kind, "x", []byte(tt.body))(base()); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeleteItem(t *testing.T) {
	out := apply(t, DeleteItem("memos", "m1"), base())
	if len(out.Memos) != 0 || !cmp.Equal([]string{"m1"}, out.DeletedIDs) {
		t.Fatalf("out = %+v", out)
	}
	if _, err := DeleteItem("memos", "nope")(base()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := DeleteItem("nope", "m1")(base()); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v", err)
	}
}

func TestKinds(t *testing.T) {
	if got := len(Kinds()); got != 11 {
		t.Fatalf("Kinds() has %d entries", got)
	}
}

func TestDeletedIDsAreNotReused(t *testing.T) {
	deleted := apply(t, DeleteItem("memos", "m1"), base())
	deleted.DeletedIDs = append(deleted.DeletedIDs, "p9", "a9")

	tests := []struct {
		name string
		fn   Transform
	}{
		{"upsert", UpsertItem("memos", "m1", []byte(`{"title":"back"}`))},
		{"add memo", AddMemo(models.Memo{ID: "m1", Title: "back"})},
		{"add patient", AddPatient(models.Patient{ID: "p9", Name: "Ghost"})},
		{"add appointment", AddAppointment("p1", models.Appointment{ID: "a9", Date: "2024-06-01"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.fn(deleted)
			if !errors.Is(err, ErrDeleted) || !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrDeleted", err)
			}
			if out != nil {
				t.Fatalf("out = %+v", out)
			}
		})
	}
	if len(deleted.Memos) != 0 {
		t.Fatalf("memos = %+v", deleted.Memos)
	}
}
