package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/tombstone"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ClinicName: "Smile Clinic",
		Settings: models.Settings{
			Language:          "en",
			Currency:          "IQD",
			RxBackgroundImage: "data:image/png;base64,AAAA",
		},
		Doctors: []models.Doctor{
			{ID: "d1", Name: "Dr. Sara", RxBackgroundImage: "data:image/png;base64,BBBB", UpdatedAt: 10},
		},
		Secretaries: []models.Secretary{{ID: "s1", Name: "Huda", UpdatedAt: 10}},
		Patients: []models.Patient{
			{
				ID:        "p1",
				Name:      "Ali",
				UpdatedAt: 100,
				Teeth: map[int]models.Tooth{
					8:  {Status: "filled", UpdatedAt: 90},
					14: {Status: "crown", UpdatedAt: 95},
				},
				Appointments:   []models.Appointment{{ID: "a1", Date: "2025-01-01", UpdatedAt: 50}},
				Payments:       []models.Payment{{ID: "pay1", Amount: 25000, UpdatedAt: 60}},
				PatientQueries: []models.QueryAnswer{{QuestionID: "q-allergy", Answer: "no", UpdatedAt: 40}},
			},
			{ID: "p2", Name: "Noor", UpdatedAt: 80},
		},
		Memos:       []models.Memo{{ID: "m1", Title: "Order gloves", UpdatedAt: 30}},
		Inventory:   []models.InventoryItem{{ID: "i1", Name: "Composite", Quantity: 4, UpdatedAt: 20}},
		Expenses:    []models.Expense{{ID: "e1", Title: "Rent", Amount: 500, UpdatedAt: 20}},
		LabOrders:   []models.LabOrder{{ID: "l1", PatientID: "p1", Work: "crown", UpdatedAt: 20}},
		Supplies:    []models.Supply{{ID: "sp1", Name: "Burs", UpdatedAt: 20}},
		DeletedIDs:  []string{"gone-1"},
		LastUpdated: 1000,
	}
}

func TestMergeIdempotent(t *testing.T) {
	x := sampleSnapshot()

	got := Merge(x, x)

	if diff := cmp.Diff(x, got); diff != "" {
		t.Errorf("Merge(X, X) != X (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.Doctors[0].RxBackgroundImage = ""
	remote.LastUpdated = 5000
	localCopy := local.Clone()
	remoteCopy := remote.Clone()

	_ = Merge(local, remote)

	if diff := cmp.Diff(localCopy, local, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("local modified (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(remoteCopy, remote, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("remote modified (-before +after):\n%s", diff)
	}
}

func TestMergeDegenerateSides(t *testing.T) {
	initialized := sampleSnapshot()
	blank := &models.Snapshot{LastUpdated: 99999}

	tests := []struct {
		name          string
		local, remote *models.Snapshot
		want          *models.Snapshot
	}{
		{name: "remote uninitialized", local: initialized, remote: blank, want: initialized},
		{name: "remote nil", local: initialized, remote: nil, want: initialized},
		{name: "local uninitialized", local: blank, remote: initialized, want: initialized},
		{name: "local nil", local: nil, remote: initialized, want: initialized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.local, tt.remote); got != tt.want {
				t.Errorf("Merge() did not return the initialized side unchanged")
			}
		})
	}
}

func TestMergeBothNil(t *testing.T) {
	got := Merge(nil, nil)
	if got == nil || got.Initialized() {
		t.Fatalf("Merge(nil, nil) = %+v, want empty uninitialized snapshot", got)
	}
}

func TestMergeTombstoneDominance(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()

	// Remote deleted things that local edited afterwards.
	remote.DeletedIDs = []string{"m1", "p2", "a1", "sp1", "d1"}
	remote.Memos = nil
	remote.Supplies = nil
	local.Memos[0].UpdatedAt = 1_000_000
	local.Patients[1].UpdatedAt = 1_000_000
	local.Patients[0].Appointments[0].UpdatedAt = 1_000_000
	local.LastUpdated = 2_000_000 // local wins the wholesale fields too

	got := Merge(local, remote)

	dead := tombstone.NewSet(local.DeletedIDs, remote.DeletedIDs)
	for _, id := range allIDs(got) {
		if dead.Has(id) {
			t.Errorf("tombstoned id %q present in merge result", id)
		}
	}
	if !tombstone.NewSet(got.DeletedIDs).Has("gone-1") || !tombstone.NewSet(got.DeletedIDs).Has("m1") {
		t.Errorf("DeletedIDs = %v, want union of both sides", got.DeletedIDs)
	}
}

func TestMergeLastUpdatedIsMax(t *testing.T) {
	tests := []struct{ local, remote, want int64 }{
		{local: 10, remote: 20, want: 20},
		{local: 30, remote: 20, want: 30},
		{local: 7, remote: 7, want: 7},
	}
	for _, tt := range tests {
		l, r := sampleSnapshot(), sampleSnapshot()
		l.LastUpdated, r.LastUpdated = tt.local, tt.remote
		if got := Merge(l, r).LastUpdated; got != tt.want {
			t.Errorf("Merge(%d, %d).LastUpdated = %d, want %d", tt.local, tt.remote, got, tt.want)
		}
	}
}

func TestMergeTieKeepsLocal(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	local.Memos[0].Content = "local text"
	remote.Memos[0].Content = "remote text"

	got := Merge(local, remote)

	if len(got.Memos) != 1 || got.Memos[0].Content != "local text" {
		t.Errorf("Memos = %+v, want local copy on tie", got.Memos)
	}
}

func TestMergeItemLastWriterWins(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.Inventory[0].Quantity = 9
	remote.Inventory[0].UpdatedAt = 21
	local.Expenses[0].Amount = 750
	local.Expenses[0].UpdatedAt = 21
	remote.Memos = append(remote.Memos, models.Memo{ID: "m2", Title: "remote only", UpdatedAt: 5})
	local.Memos = append(local.Memos, models.Memo{ID: "m3", Title: "local only", UpdatedAt: 5})

	got := Merge(local, remote)

	if got.Inventory[0].Quantity != 9 {
		t.Errorf("Inventory quantity = %d, want remote's newer 9", got.Inventory[0].Quantity)
	}
	if got.Expenses[0].Amount != 750 {
		t.Errorf("Expense amount = %v, want local's newer 750", got.Expenses[0].Amount)
	}
	wantOrder := []string{"m1", "m2", "m3"}
	var gotOrder []string
	for _, m := range got.Memos {
		gotOrder = append(gotOrder, m.ID)
	}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Errorf("memo order (-want +got):\n%s", diff)
	}
}

func TestMergeDeepPatientTeeth(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	local.Patients[0].Teeth = map[int]models.Tooth{8: {Status: "filled", UpdatedAt: 100}}
	remote.Patients[0].Teeth = map[int]models.Tooth{14: {Status: "extracted", UpdatedAt: 200}}

	got := Merge(local, remote)

	teeth := got.Patients[0].Teeth
	if teeth[8].Status != "filled" {
		t.Errorf("tooth 8 = %+v, want local filled", teeth[8])
	}
	if teeth[14].Status != "extracted" {
		t.Errorf("tooth 14 = %+v, want remote extracted", teeth[14])
	}
}

func TestMergeToothCollision(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	local.Patients[0].Teeth = map[int]models.Tooth{
		8:  {Status: "local-old", UpdatedAt: 10},
		11: {Status: "local-tie", UpdatedAt: 50},
	}
	remote.Patients[0].Teeth = map[int]models.Tooth{
		8:  {Status: "remote-new", UpdatedAt: 20},
		11: {Status: "remote-tie", UpdatedAt: 50},
	}

	teeth := Merge(local, remote).Patients[0].Teeth

	if teeth[8].Status != "remote-new" {
		t.Errorf("tooth 8 = %q, want remote-new", teeth[8].Status)
	}
	if teeth[11].Status != "local-tie" {
		t.Errorf("tooth 11 = %q, want local-tie", teeth[11].Status)
	}
}

func TestMergePatientFieldsIndependentOfSubCollections(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	// Remote renamed the patient later; local added a payment afterwards
	// without touching the patient's scalar fields.
	remote.Patients[0].Name = "Ali Hassan"
	remote.Patients[0].UpdatedAt = 300
	local.Patients[0].Payments = append(local.Patients[0].Payments,
		models.Payment{ID: "pay2", Amount: 10000, UpdatedAt: 400})
	local.Patients[0].PatientQueries = []models.QueryAnswer{{QuestionID: "q-allergy", Answer: "penicillin", UpdatedAt: 410}}

	p := Merge(local, remote).Patients[0]

	if p.Name != "Ali Hassan" {
		t.Errorf("Name = %q, want remote's newer name", p.Name)
	}
	if len(p.Payments) != 2 {
		t.Errorf("Payments = %+v, want both payments", p.Payments)
	}
	if len(p.PatientQueries) != 1 || p.PatientQueries[0].Answer != "penicillin" {
		t.Errorf("PatientQueries = %+v, want one replaced answer", p.PatientQueries)
	}
	if p.UpdatedAt != 300 {
		t.Errorf("UpdatedAt = %d, want max 300", p.UpdatedAt)
	}
}

func TestMergeOneSidedPatientsPassThrough(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.Patients = remote.Patients[:1]
	local.Patients = append(local.Patients, models.Patient{ID: "p3", Name: "Zain", UpdatedAt: 1})

	got := Merge(local, remote)

	ids := map[string]bool{}
	for _, p := range got.Patients {
		ids[p.ID] = true
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		if !ids[id] {
			t.Errorf("patient %s missing from merge", id)
		}
	}
}

func TestMergeDeviceAssetsStayLocal(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.Settings.RxBackgroundImage = ""
	remote.Settings.Currency = "USD"
	remote.Doctors[0].RxBackgroundImage = ""
	remote.Doctors[0].Name = "Dr. Sara K."
	remote.Doctors[0].UpdatedAt = 99
	remote.LastUpdated = local.LastUpdated + 1000

	got := Merge(local, remote)

	if got.Settings.Currency != "USD" {
		t.Errorf("Currency = %q, want remote settings (newer snapshot)", got.Settings.Currency)
	}
	if got.Settings.RxBackgroundImage != local.Settings.RxBackgroundImage {
		t.Errorf("RxBackgroundImage = %q, want local image", got.Settings.RxBackgroundImage)
	}
	if got.Doctors[0].Name != "Dr. Sara K." {
		t.Errorf("doctor name = %q, want remote's newer name", got.Doctors[0].Name)
	}
	if got.Doctors[0].RxBackgroundImage != local.Doctors[0].RxBackgroundImage {
		t.Errorf("doctor background = %q, want local image", got.Doctors[0].RxBackgroundImage)
	}
}

func TestMergeWholesaleFieldsFromNewerSnapshot(t *testing.T) {
	local := sampleSnapshot()
	remote := sampleSnapshot()
	remote.ClinicName = "Smile Clinic Erbil"
	remote.Medications = []models.Medication{{ID: "med1", Name: "Amoxicillin"}}
	local.LastUpdated = 5000

	got := Merge(local, remote)

	if got.ClinicName != "Smile Clinic" {
		t.Errorf("ClinicName = %q, want local (newer snapshot)", got.ClinicName)
	}
	if len(got.Medications) != 0 {
		t.Errorf("Medications = %+v, want local's empty list", got.Medications)
	}
}

func TestMergeEndToEndScenario(t *testing.T) {
	local := &models.Snapshot{
		ClinicName:  "Clinic",
		LastUpdated: 1000,
		Patients:    []models.Patient{{ID: "p1", UpdatedAt: 1000, Name: "Ali"}},
		Memos:       []models.Memo{{ID: "m5", UpdatedAt: 900}},
	}
	remote := &models.Snapshot{
		ClinicName:  "Clinic",
		LastUpdated: 2000,
		Patients:    []models.Patient{{ID: "p1", UpdatedAt: 2000, Name: "Ali Hassan"}},
		DeletedIDs:  []string{"m5"},
	}

	got := Merge(local, remote)

	if len(got.Patients) != 1 || got.Patients[0].Name != "Ali Hassan" {
		t.Errorf("Patients = %+v, want p1 named Ali Hassan", got.Patients)
	}
	for _, m := range got.Memos {
		if m.ID == "m5" {
			t.Errorf("memo m5 survived its tombstone")
		}
	}
	if got.LastUpdated != 2000 {
		t.Errorf("LastUpdated = %d, want 2000", got.LastUpdated)
	}
}

func allIDs(s *models.Snapshot) []string {
	var ids []string
	add := func(es ...models.Entity) {
		for _, e := range es {
			ids = append(ids, e.EntityID())
		}
	}
	for _, d := range s.Doctors {
		add(d)
	}
	for _, x := range s.Secretaries {
		add(x)
	}
	for _, m := range s.Memos {
		add(m)
	}
	for _, i := range s.Inventory {
		add(i)
	}
	for _, e := range s.Expenses {
		add(e)
	}
	for _, l := range s.LabOrders {
		add(l)
	}
	for _, x := range s.Supplies {
		add(x)
	}
	for _, g := range s.GuestAppointments {
		add(g)
	}
	for _, m := range s.Medications {
		add(m)
	}
	for _, c := range s.MedicationCategories {
		add(c)
	}
	for _, p := range s.Patients {
		add(p)
		for _, a := range p.Appointments {
			add(a)
		}
		for _, x := range p.Payments {
			add(x)
		}
		for _, x := range p.Examinations {
			add(x)
		}
		for _, x := range p.RootCanals {
			add(x)
		}
		for _, x := range p.TreatmentSessions {
			add(x)
		}
		for _, x := range p.Prescriptions {
			add(x)
		}
		for _, x := range p.Images {
			add(x)
		}
		for _, x := range p.StructuredMedicalHistory {
			add(x)
		}
	}
	return ids
}
