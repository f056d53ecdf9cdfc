package models

import "encoding/json"

// Snapshot is the whole replicated clinic record at one point in time.
// Snapshots are values: callers replace them, they never edit one in place.
type Snapshot struct {
	ClinicName           string               `bson:"clinicName" json:"clinicName"`
	Settings             Settings             `bson:"settings" json:"settings"`
	Doctors              []Doctor             `bson:"doctors" json:"doctors"`
	Secretaries          []Secretary          `bson:"secretaries" json:"secretaries"`
	Patients             []Patient            `bson:"patients" json:"patients"`
	Memos                []Memo               `bson:"memos" json:"memos"`
	Inventory            []InventoryItem      `bson:"inventory" json:"inventory"`
	Expenses             []Expense            `bson:"expenses" json:"expenses"`
	LabOrders            []LabOrder           `bson:"labOrders" json:"labOrders"`
	Supplies             []Supply             `bson:"supplies" json:"supplies"`
	GuestAppointments    []GuestAppointment   `bson:"guestAppointments" json:"guestAppointments"`
	Medications          []Medication         `bson:"medications" json:"medications"`
	MedicationCategories []MedicationCategory `bson:"medicationCategories" json:"medicationCategories"`
	DeletedIDs           []string             `bson:"deletedIds" json:"deletedIds"`
	LastUpdated          int64                `bson:"lastUpdated" json:"lastUpdated"` // unix millis
}

// Settings holds clinic-wide preferences. Language and Theme are overwritten by
// the device preferences after every pull; the background images are device
// resident and never taken from the remote side.
type Settings struct {
	Language                    string `bson:"language" json:"language"`
	Theme                       string `bson:"theme" json:"theme"`
	Currency                    string `bson:"currency" json:"currency"`
	ClinicPhone                 string `bson:"clinicPhone" json:"clinicPhone"`
	ClinicAddress               string `bson:"clinicAddress" json:"clinicAddress"`
	RxTemplate                  string `bson:"rxTemplate" json:"rxTemplate"`
	ThousandsShortcut           bool   `bson:"thousandsShortcut" json:"thousandsShortcut"`
	GoogleDriveLinked           bool   `bson:"googleDriveLinked" json:"googleDriveLinked"`
	RxBackgroundImage           string `bson:"rxBackgroundImage" json:"rxBackgroundImage"`
	ConsentBackgroundImage      string `bson:"consentBackgroundImage" json:"consentBackgroundImage"`
	InstructionsBackgroundImage string `bson:"instructionsBackgroundImage" json:"instructionsBackgroundImage"`
}

// DefaultSettings are used whenever stored settings are missing or unreadable.
func DefaultSettings() Settings {
	return Settings{
		Language: "ar",
		Theme:    "light",
		Currency: "IQD",
	}
}

// Initialized reports whether s holds a set-up clinic. An uninitialized
// snapshot never wins a merge.
func (s *Snapshot) Initialized() bool {
	return s != nil && s.ClinicName != ""
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		// Snapshot holds only plain data; Marshal cannot fail.
		panic("models: clone snapshot: " + err.Error())
	}
	out := &Snapshot{}
	if err := json.Unmarshal(data, out); err != nil {
		panic("models: clone snapshot: " + err.Error())
	}
	return out
}

// PatientByID returns the index of the patient with id, or -1.
func (s *Snapshot) PatientByID(id string) int {
	for i := range s.Patients {
		if s.Patients[i].ID == id {
			return i
		}
	}
	return -1
}
