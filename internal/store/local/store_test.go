package local

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clinic.db"), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		ClinicName: "Smile Clinic",
		Settings:   models.Settings{Language: "en", Theme: "dark", Currency: "USD", RxBackgroundImage: "data:image/png;base64,AAAA"},
		Doctors:    []models.Doctor{{ID: "d1", Name: "Dr. Hana", UpdatedAt: 10}},
		Patients: []models.Patient{{
			ID:        "p1",
			Name:      "Ali",
			Teeth:     map[int]models.Tooth{11: {Status: "filled", UpdatedAt: 5}},
			Payments:  []models.Payment{{ID: "pay1", Amount: 25000, UpdatedAt: 6}},
			UpdatedAt: 7,
		}},
		Memos:       []models.Memo{{ID: "m1", Title: "Order gloves", UpdatedAt: 8}},
		DeletedIDs:  []string{"gone"},
		LastUpdated: 1700000000000,
	}
}

func TestLoadEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Fatalf("Load on empty store = %+v, want nil", got)
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	want := testSnapshot()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Load mismatch (-want +got):\n%s", diff)
	}

	// A second save replaces the first.
	want.ClinicName = "Renamed"
	want.Memos = nil
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ClinicName != "Renamed" || len(got.Memos) != 0 {
		t.Fatalf("second save not visible: %+v", got)
	}
}

func TestSaveNil(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(context.Background(), nil); err == nil {
		t.Fatal("Save(nil) succeeded")
	}
}

func TestLoadSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clinic.db")
	s, err := Open(path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	s, err = Open(path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ClinicName != "Smile Clinic" || len(got.Patients) != 1 {
		t.Fatalf("reopened snapshot = %+v", got)
	}
}

func TestLoadMalformedBucketFallsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, bucket := range []string{"patients", "settings"} {
		if _, err := s.db.Exec(`UPDATE snapshot SET payload=? WHERE bucket=?`, []byte("{not json"), bucket); err != nil {
			t.Fatalf("corrupt %s: %v", bucket, err)
		}
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Patients != nil {
		t.Errorf("Patients = %+v, want default", got.Patients)
	}
	if got.Settings != models.DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", got.Settings)
	}
	if got.ClinicName != "Smile Clinic" || len(got.Memos) != 1 {
		t.Errorf("intact buckets lost: %+v", got)
	}
}

func TestImportBackup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap, err := s.ImportBackup(ctx, strings.NewReader(`{
		"clinicName": "Backup Clinic",
		"patients": [{"id": "p9", "name": "Sara", "teeth": {"18": {"status": "missing", "updatedAt": 3}}, "updatedAt": 4}],
		"lastUpdated": 99
	}`))
	if err != nil {
		t.Fatalf("ImportBackup: %v", err)
	}
	if snap.ClinicName != "Backup Clinic" || snap.LastUpdated != 99 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Patients[0].Teeth[18].Status != "missing" {
		t.Fatalf("teeth = %+v", snap.Patients[0].Teeth)
	}
	if snap.Settings != models.DefaultSettings() {
		t.Fatalf("Settings = %+v, want defaults", snap.Settings)
	}

	// ImportBackup does not persist.
	stored, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored != nil {
		t.Fatalf("ImportBackup stored %+v", stored)
	}
}

func TestImportBackupInvalid(t *testing.T) {
	s := openTestStore(t)
	tests := []struct {
		name string
		in   string
	}{
		{"not json", "garbage"},
		{"wrong shape", `{"patients": "nope"}`},
		{"no clinic", `{"patients": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := s.ImportBackup(context.Background(), strings.NewReader(tt.in))
			if !errors.Is(err, ErrInvalidBackup) {
				t.Fatalf("err = %v, want ErrInvalidBackup", err)
			}
			if snap != nil {
				t.Fatalf("snap = %+v, want nil", snap)
			}
		})
	}
}

func TestDevicePrefs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	got, err := s.DevicePrefs(ctx)
	if err != nil {
		t.Fatalf("DevicePrefs: %v", err)
	}
	if got != (models.DevicePrefs{}) {
		t.Fatalf("fresh prefs = %+v, want zero", got)
	}

	want := models.DevicePrefs{Language: "ku", Scale: 110, Theme: "dark", ProfileType: "doctor", ActiveProfile: "d1"}
	if err := s.SaveDevicePrefs(ctx, want); err != nil {
		t.Fatalf("SaveDevicePrefs: %v", err)
	}
	if got, _ = s.DevicePrefs(ctx); got != want {
		t.Fatalf("DevicePrefs = %+v, want %+v", got, want)
	}

	want.Theme = ""
	if err := s.SaveDevicePrefs(ctx, want); err != nil {
		t.Fatalf("SaveDevicePrefs: %v", err)
	}
	if got, _ = s.DevicePrefs(ctx); got != want {
		t.Fatalf("DevicePrefs = %+v, want %+v", got, want)
	}
}

func TestSessionToken(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.SetSessionToken(ctx, "tok"); err != nil {
		t.Fatalf("SetSessionToken: %v", err)
	}
	if tok, _ := s.SessionToken(ctx); tok != "tok" {
		t.Fatalf("token = %q", tok)
	}
	if err := s.SetSessionToken(ctx, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if tok, _ := s.SessionToken(ctx); tok != "" {
		t.Fatalf("token after clear = %q", tok)
	}
}

func TestPrefsNotInSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.SaveDevicePrefs(ctx, models.DevicePrefs{Language: "en"}); err != nil {
		t.Fatalf("SaveDevicePrefs: %v", err)
	}
	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Fatalf("prefs leaked into snapshot: %+v", snap)
	}
}
