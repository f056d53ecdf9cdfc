// Package services holds the snapshot transforms behind every edit the UI can
// make. Each function returns a transform for the mutation funnel: it reads
// the current snapshot and returns a new one, leaving its input untouched.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/tombstone"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrExists       = errors.New("already exists")
	ErrUnknownKind  = errors.New("unknown collection")
	ErrInvalidInput = errors.New("invalid input")

	// ErrDeleted is returned for ids that carry a tombstone. Deleted ids are
	// never reused.
	ErrDeleted = fmt.Errorf("deleted: %w", ErrNotFound)
)

// Transform has the shape the mutation funnel accepts.
type Transform = func(cur *models.Snapshot) (*models.Snapshot, error)

// now stamps item timestamps in unix millis.
var now = func() int64 { return time.Now().UnixMilli() }

// SetupClinic names the clinic, which marks the snapshot as initialized.
func SetupClinic(name string) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		if name == "" {
			return nil, fmt.Errorf("%w: clinic name is required", ErrInvalidInput)
		}
		next := *cur
		next.ClinicName = name
		if next.Settings == (models.Settings{}) {
			next.Settings = models.DefaultSettings()
		}
		return &next, nil
	}
}

// SettingsPatch lists the settings to change; nil fields are kept.
type SettingsPatch struct {
	Language                    *string `json:"language"`
	Theme                       *string `json:"theme"`
	Currency                    *string `json:"currency"`
	ClinicPhone                 *string `json:"clinicPhone"`
	ClinicAddress               *string `json:"clinicAddress"`
	RxTemplate                  *string `json:"rxTemplate"`
	ThousandsShortcut           *bool   `json:"thousandsShortcut"`
	GoogleDriveLinked           *bool   `json:"googleDriveLinked"`
	RxBackgroundImage           *string `json:"rxBackgroundImage"`
	ConsentBackgroundImage      *string `json:"consentBackgroundImage"`
	InstructionsBackgroundImage *string `json:"instructionsBackgroundImage"`
}

func UpdateSettings(p SettingsPatch) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		next := *cur
		s := &next.Settings
		setIf(&s.Language, p.Language)
		setIf(&s.Theme, p.Theme)
		setIf(&s.Currency, p.Currency)
		setIf(&s.ClinicPhone, p.ClinicPhone)
		setIf(&s.ClinicAddress, p.ClinicAddress)
		setIf(&s.RxTemplate, p.RxTemplate)
		setIf(&s.ThousandsShortcut, p.ThousandsShortcut)
		setIf(&s.GoogleDriveLinked, p.GoogleDriveLinked)
		setIf(&s.RxBackgroundImage, p.RxBackgroundImage)
		setIf(&s.ConsentBackgroundImage, p.ConsentBackgroundImage)
		setIf(&s.InstructionsBackgroundImage, p.InstructionsBackgroundImage)
		return &next, nil
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// collection binds a kind name to its snapshot field.
type collection struct {
	upsert func(s *models.Snapshot, id string, item []byte, at int64) error
	remove func(s *models.Snapshot, id string) bool
}

func bind[T models.Entity](field func(s *models.Snapshot) *[]T) collection {
	return collection{
		upsert: func(s *models.Snapshot, id string, body []byte, at int64) error {
			item, err := decodeItem[T](body, id, at)
			if err != nil {
				return err
			}
			f := field(s)
			*f = upsertByID(*f, item)
			return nil
		},
		remove: func(s *models.Snapshot, id string) bool {
			f := field(s)
			out, ok := removeByID(*f, id)
			*f = out
			return ok
		},
	}
}

var collections = map[string]collection{
	"doctors":              bind(func(s *models.Snapshot) *[]models.Doctor { return &s.Doctors }),
	"secretaries":          bind(func(s *models.Snapshot) *[]models.Secretary { return &s.Secretaries }),
	"patients":             bind(func(s *models.Snapshot) *[]models.Patient { return &s.Patients }),
	"memos":                bind(func(s *models.Snapshot) *[]models.Memo { return &s.Memos }),
	"inventory":            bind(func(s *models.Snapshot) *[]models.InventoryItem { return &s.Inventory }),
	"expenses":             bind(func(s *models.Snapshot) *[]models.Expense { return &s.Expenses }),
	"labOrders":            bind(func(s *models.Snapshot) *[]models.LabOrder { return &s.LabOrders }),
	"supplies":             bind(func(s *models.Snapshot) *[]models.Supply { return &s.Supplies }),
	"guestAppointments":    bind(func(s *models.Snapshot) *[]models.GuestAppointment { return &s.GuestAppointments }),
	"medications":          bind(func(s *models.Snapshot) *[]models.Medication { return &s.Medications }),
	"medicationCategories": bind(func(s *models.Snapshot) *[]models.MedicationCategory { return &s.MedicationCategories }),
}

// Kinds returns the collection names accepted by UpsertItem and DeleteItem.
func Kinds() []string {
	out := make([]string, 0, len(collections))
	for k := range collections {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// UpsertItem stores the JSON item under id in the named collection, stamping
// it with the current time. An empty id assigns a new one.
func UpsertItem(kind, id string, body []byte) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		c, ok := collections[kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		if id == "" {
			id = models.NewID()
		}
		if err := checkLive(cur, kind, id); err != nil {
			return nil, err
		}
		next := *cur
		if err := c.upsert(&next, id, body, now()); err != nil {
			return nil, err
		}
		return &next, nil
	}
}

// DeleteItem removes id from the named collection and records its tombstone.
func DeleteItem(kind, id string) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		c, ok := collections[kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		next := *cur
		if !c.remove(&next, id) {
			return nil, fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
		}
		next.DeletedIDs = tombstone.Record(cur.DeletedIDs, id)
		return &next, nil
	}
}

// AddMemo appends a memo with a fresh id.
func AddMemo(m models.Memo) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		if m.ID == "" {
			m.ID = models.NewID()
		}
		if err := checkLive(cur, "memo", m.ID); err != nil {
			return nil, err
		}
		if slices.ContainsFunc(cur.Memos, func(x models.Memo) bool { return x.ID == m.ID }) {
			return nil, fmt.Errorf("memo %q: %w", m.ID, ErrExists)
		}
		m.UpdatedAt = now()
		next := *cur
		next.Memos = append(slices.Clip(cur.Memos), m)
		return &next, nil
	}
}

// checkLive rejects ids that were deleted on any device.
func checkLive(cur *models.Snapshot, kind, id string) error {
	if slices.Contains(cur.DeletedIDs, id) {
		return fmt.Errorf("%s %q: %w", kind, id, ErrDeleted)
	}
	return nil
}

// decodeItem decodes body into T with the given id and timestamp, whatever
// the body says about them.
func decodeItem[T any](body []byte, id string, at int64) (T, error) {
	var item T
	fields := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return item, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	fields["id"] = id
	fields["updatedAt"] = at
	data, err := json.Marshal(fields)
	if err != nil {
		return item, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return item, nil
}

// upsertByID replaces the item with the same id or appends it. The input
// slice is never written to.
func upsertByID[T models.Entity](items []T, item T) []T {
	i := slices.IndexFunc(items, func(x T) bool { return x.EntityID() == item.EntityID() })
	if i < 0 {
		return append(slices.Clip(items), item)
	}
	out := slices.Clone(items)
	out[i] = item
	return out
}

func removeByID[T models.Entity](items []T, id string) ([]T, bool) {
	i := slices.IndexFunc(items, func(x T) bool { return x.EntityID() == id })
	if i < 0 {
		return items, false
	}
	return slices.Delete(slices.Clone(items), i, i+1), true
}
