package models

// Patient is a composite entity. Its own UpdatedAt covers the scalar fields
// only; every sub-collection item and every tooth carries its own timestamp.
type Patient struct {
	ID                 string `bson:"id" json:"id"`
	Name               string `bson:"name" json:"name"`
	Age                int    `bson:"age" json:"age"`
	Gender             string `bson:"gender" json:"gender"`
	Phone              string `bson:"phone" json:"phone"`
	PhoneCode          string `bson:"phoneCode" json:"phoneCode"`
	Category           string `bson:"category" json:"category"`
	DoctorID           string `bson:"doctorId" json:"doctorId"`
	Notes              string `bson:"notes" json:"notes"`
	MedicalHistory     string `bson:"medicalHistory" json:"medicalHistory"`
	DentalHistoryNotes string `bson:"dentalHistoryNotes" json:"dentalHistoryNotes"`
	ProfilePicture     string `bson:"profilePicture" json:"profilePicture"`

	Teeth                    map[int]Tooth      `bson:"teeth" json:"teeth"`
	Appointments             []Appointment      `bson:"appointments" json:"appointments"`
	Payments                 []Payment          `bson:"payments" json:"payments"`
	Examinations             []Examination      `bson:"examinations" json:"examinations"`
	RootCanals               []RootCanal        `bson:"rootCanals" json:"rootCanals"`
	TreatmentSessions        []TreatmentSession `bson:"treatmentSessions" json:"treatmentSessions"`
	Prescriptions            []Prescription     `bson:"prescriptions" json:"prescriptions"`
	Images                   []PatientImage     `bson:"images" json:"images"`
	StructuredMedicalHistory []MedicalCondition `bson:"structuredMedicalHistory" json:"structuredMedicalHistory"`
	PatientQueries           []QueryAnswer      `bson:"patientQueries" json:"patientQueries"`

	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
}

// Tooth is keyed by its tooth number inside Patient.Teeth.
type Tooth struct {
	Status    string   `bson:"status" json:"status"`
	Surfaces  []string `bson:"surfaces" json:"surfaces"`
	Notes     string   `bson:"notes" json:"notes"`
	UpdatedAt int64    `bson:"updatedAt" json:"updatedAt"`
}

type Appointment struct {
	ID        string `bson:"id" json:"id"`
	Date      string `bson:"date" json:"date"`
	Time      string `bson:"time" json:"time"`
	Service   string `bson:"service" json:"service"`
	Status    string `bson:"status" json:"status"` // "scheduled", "completed", "cancelled"
	DoctorID  string `bson:"doctorId" json:"doctorId"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type Payment struct {
	ID        string  `bson:"id" json:"id"`
	Amount    float64 `bson:"amount" json:"amount"`
	Date      string  `bson:"date" json:"date"`
	Note      string  `bson:"note" json:"note"`
	UpdatedAt int64   `bson:"updatedAt" json:"updatedAt"`
}

type Examination struct {
	ID        string `bson:"id" json:"id"`
	Date      string `bson:"date" json:"date"`
	Findings  string `bson:"findings" json:"findings"`
	Diagnosis string `bson:"diagnosis" json:"diagnosis"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type RootCanal struct {
	ID            string `bson:"id" json:"id"`
	Tooth         int    `bson:"tooth" json:"tooth"`
	Canal         string `bson:"canal" json:"canal"`
	WorkingLength string `bson:"workingLength" json:"workingLength"`
	MasterCone    string `bson:"masterCone" json:"masterCone"`
	Date          string `bson:"date" json:"date"`
	UpdatedAt     int64  `bson:"updatedAt" json:"updatedAt"`
}

type TreatmentSession struct {
	ID          string  `bson:"id" json:"id"`
	Date        string  `bson:"date" json:"date"`
	Treatment   string  `bson:"treatment" json:"treatment"`
	Teeth       []int   `bson:"teeth" json:"teeth"`
	Cost        float64 `bson:"cost" json:"cost"`
	Description string  `bson:"description" json:"description"`
	UpdatedAt   int64   `bson:"updatedAt" json:"updatedAt"`
}

type Prescription struct {
	ID          string   `bson:"id" json:"id"`
	Date        string   `bson:"date" json:"date"`
	DoctorID    string   `bson:"doctorId" json:"doctorId"`
	Medications []string `bson:"medications" json:"medications"`
	Notes       string   `bson:"notes" json:"notes"`
	UpdatedAt   int64    `bson:"updatedAt" json:"updatedAt"`
}

type PatientImage struct {
	ID        string `bson:"id" json:"id"`
	URL       string `bson:"url" json:"url"`
	DriveID   string `bson:"driveId" json:"driveId"`
	Caption   string `bson:"caption" json:"caption"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type MedicalCondition struct {
	ID        string `bson:"id" json:"id"`
	Condition string `bson:"condition" json:"condition"`
	Active    bool   `bson:"active" json:"active"`
	Notes     string `bson:"notes" json:"notes"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

// QueryAnswer is the current answer to one intake question. A patient holds at
// most one answer per QuestionID.
type QueryAnswer struct {
	QuestionID string `bson:"questionId" json:"questionId"`
	Answer     string `bson:"answer" json:"answer"`
	UpdatedAt  int64  `bson:"updatedAt" json:"updatedAt"`
}

func (p Patient) EntityID() string { return p.ID }
func (p Patient) Stamp() int64 { return p.UpdatedAt }
func (a Appointment) EntityID() string { return a.ID }
func (a Appointment) Stamp() int64 { return a.UpdatedAt }
func (p Payment) EntityID() string { return p.ID }
func (p Payment) Stamp() int64 { return p.UpdatedAt }
func (e Examination) EntityID() string { return e.ID }
func (e Examination) Stamp() int64 { return e.UpdatedAt }
func (r RootCanal) EntityID() string { return r.ID }
func (r RootCanal) Stamp() int64 { return r.UpdatedAt }
func (t TreatmentSession) EntityID() string { return t.ID }
func (t TreatmentSession) Stamp() int64 { return t.UpdatedAt }
func (p Prescription) EntityID() string { return p.ID }
func (p Prescription) Stamp() int64 { return p.UpdatedAt }
func (i PatientImage) EntityID() string { return i.ID }
func (i PatientImage) Stamp() int64 { return i.UpdatedAt }
func (m MedicalCondition) EntityID() string { return m.ID }
func (m MedicalCondition) Stamp() int64 { return m.UpdatedAt }

// QueryAnswer is keyed by question, not by its own id.
func (q QueryAnswer) EntityID() string { return q.QuestionID }
func (q QueryAnswer) Stamp() int64 { return q.UpdatedAt }
