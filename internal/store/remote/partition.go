package remote

import (
	"strings"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// Field names of a stored record.
const (
	FieldContent1 = "content1"
	FieldContent2 = "content2"
	FieldContent3 = "content3"
	FieldContent4 = "content4"
	// FieldLegacy holds a whole snapshot in records written before partitioning.
	FieldLegacy = "content"
)

// Content1 holds settings and staff.
type Content1 struct {
	Settings    models.Settings    `bson:"settings" json:"settings"`
	ClinicName  string             `bson:"clinicName" json:"clinicName"`
	Doctors     []models.Doctor    `bson:"doctors" json:"doctors"`
	Secretaries []models.Secretary `bson:"secretaries" json:"secretaries"`
	LastUpdated int64              `bson:"lastUpdated" json:"lastUpdated"`
}

// Content2 holds medications, lab orders and inventory.
type Content2 struct {
	Medications          []models.Medication         `bson:"medications" json:"medications"`
	MedicationCategories []models.MedicationCategory `bson:"medicationCategories" json:"medicationCategories"`
	LabOrders            []models.LabOrder           `bson:"labOrders" json:"labOrders"`
	Inventory            []models.InventoryItem      `bson:"inventory" json:"inventory"`
}

// Content3 holds patients.
type Content3 struct {
	Patients          []models.Patient          `bson:"patients" json:"patients"`
	GuestAppointments []models.GuestAppointment `bson:"guestAppointments" json:"guestAppointments"`
}

// Content4 holds memos, finances and tombstones.
type Content4 struct {
	Memos      []models.Memo    `bson:"memos" json:"memos"`
	Supplies   []models.Supply  `bson:"supplies" json:"supplies"`
	Expenses   []models.Expense `bson:"expenses" json:"expenses"`
	DeletedIDs []string         `bson:"deletedIds" json:"deletedIds"`
}

// Parts is a snapshot split into the four stored parts.
type Parts struct {
	Content1 Content1
	Content2 Content2
	Content3 Content3
	Content4 Content4
}

// Partition strips inline assets from s and splits it into parts.
// LastUpdated is carried verbatim.
func Partition(s *models.Snapshot) Parts {
	s = StripInlineAssets(s)
	return Parts{
		Content1: Content1{
			Settings:    s.Settings,
			ClinicName:  s.ClinicName,
			Doctors:     s.Doctors,
			Secretaries: s.Secretaries,
			LastUpdated: s.LastUpdated,
		},
		Content2: Content2{
			Medications:          s.Medications,
			MedicationCategories: s.MedicationCategories,
			LabOrders:            s.LabOrders,
			Inventory:            s.Inventory,
		},
		Content3: Content3{
			Patients:          s.Patients,
			GuestAppointments: s.GuestAppointments,
		},
		Content4: Content4{
			Memos:      s.Memos,
			Supplies:   s.Supplies,
			Expenses:   s.Expenses,
			DeletedIDs: s.DeletedIDs,
		},
	}
}

// Assemble joins the parts back into a snapshot. Missing settings become the
// defaults.
func (p Parts) Assemble() *models.Snapshot {
	settings := p.Content1.Settings
	if settings == (models.Settings{}) {
		settings = models.DefaultSettings()
	}
	return &models.Snapshot{
		ClinicName:           p.Content1.ClinicName,
		Settings:             settings,
		Doctors:              p.Content1.Doctors,
		Secretaries:          p.Content1.Secretaries,
		Patients:             p.Content3.Patients,
		Memos:                p.Content4.Memos,
		Inventory:            p.Content2.Inventory,
		Expenses:             p.Content4.Expenses,
		LabOrders:            p.Content2.LabOrders,
		Supplies:             p.Content4.Supplies,
		GuestAppointments:    p.Content3.GuestAppointments,
		Medications:          p.Content2.Medications,
		MedicationCategories: p.Content2.MedicationCategories,
		DeletedIDs:           p.Content4.DeletedIDs,
		LastUpdated:          p.Content1.LastUpdated,
	}
}

func isInline(v string) bool { return strings.HasPrefix(v, "data:") }

// StripInlineAssets returns a copy of s without inline data: URI images:
// settings backgrounds, doctor backgrounds and patient profile pictures. Links
// to hosted files are kept. s is not modified.
func StripInlineAssets(s *models.Snapshot) *models.Snapshot {
	out := *s
	if isInline(out.Settings.RxBackgroundImage) {
		out.Settings.RxBackgroundImage = ""
	}
	if isInline(out.Settings.ConsentBackgroundImage) {
		out.Settings.ConsentBackgroundImage = ""
	}
	if isInline(out.Settings.InstructionsBackgroundImage) {
		out.Settings.InstructionsBackgroundImage = ""
	}

	if s.Doctors != nil {
		out.Doctors = make([]models.Doctor, len(s.Doctors))
		for i, d := range s.Doctors {
			if isInline(d.RxBackgroundImage) {
				d.RxBackgroundImage = ""
			}
			out.Doctors[i] = d
		}
	}
	if s.Patients != nil {
		out.Patients = make([]models.Patient, len(s.Patients))
		for i, p := range s.Patients {
			if isInline(p.ProfilePicture) {
				p.ProfilePicture = ""
			}
			out.Patients[i] = p
		}
	}
	return &out
}
