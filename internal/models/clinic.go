package models

type Doctor struct {
	ID                string `bson:"id" json:"id"`
	Name              string `bson:"name" json:"name"`
	Phone             string `bson:"phone" json:"phone"`
	Specialty         string `bson:"specialty" json:"specialty"`
	RxBackgroundImage string `bson:"rxBackgroundImage" json:"rxBackgroundImage"` // device resident
	UpdatedAt         int64  `bson:"updatedAt" json:"updatedAt"`
}

type Secretary struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Phone     string `bson:"phone" json:"phone"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type Memo struct {
	ID        string `bson:"id" json:"id"`
	Title     string `bson:"title" json:"title"`
	Content   string `bson:"content" json:"content"`
	Color     string `bson:"color" json:"color"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type InventoryItem struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	MinStock  int     `bson:"minStock" json:"minStock"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice"`
	UpdatedAt int64   `bson:"updatedAt" json:"updatedAt"`
}

type Expense struct {
	ID        string  `bson:"id" json:"id"`
	Title     string  `bson:"title" json:"title"`
	Amount    float64 `bson:"amount" json:"amount"`
	Date      string  `bson:"date" json:"date"`
	UpdatedAt int64   `bson:"updatedAt" json:"updatedAt"`
}

type LabOrder struct {
	ID        string `bson:"id" json:"id"`
	PatientID string `bson:"patientId" json:"patientId"`
	LabName   string `bson:"labName" json:"labName"`
	Work      string `bson:"work" json:"work"`
	Status    string `bson:"status" json:"status"`
	DueDate   string `bson:"dueDate" json:"dueDate"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type Supply struct {
	ID        string  `bson:"id" json:"id"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Cost      float64 `bson:"cost" json:"cost"`
	Date      string  `bson:"date" json:"date"`
	UpdatedAt int64   `bson:"updatedAt" json:"updatedAt"`
}

// GuestAppointment is booked for someone who has no patient file yet.
type GuestAppointment struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Phone     string `bson:"phone" json:"phone"`
	Date      string `bson:"date" json:"date"`
	Time      string `bson:"time" json:"time"`
	DoctorID  string `bson:"doctorId" json:"doctorId"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

type Medication struct {
	ID         string `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	Dose       string `bson:"dose" json:"dose"`
	Frequency  string `bson:"frequency" json:"frequency"`
	CategoryID string `bson:"categoryId" json:"categoryId"`
	UpdatedAt  int64  `bson:"updatedAt" json:"updatedAt"`
}

type MedicationCategory struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	UpdatedAt int64  `bson:"updatedAt" json:"updatedAt"`
}

func (d Doctor) EntityID() string { return d.ID }
func (d Doctor) Stamp() int64 { return d.UpdatedAt }
func (s Secretary) EntityID() string { return s.ID }
func (s Secretary) Stamp() int64 { return s.UpdatedAt }
func (m Memo) EntityID() string { return m.ID }
func (m Memo) Stamp() int64 { return m.UpdatedAt }
func (i InventoryItem) EntityID() string { return i.ID }
func (i InventoryItem) Stamp() int64 { return i.UpdatedAt }
func (e Expense) EntityID() string { return e.ID }
func (e Expense) Stamp() int64 { return e.UpdatedAt }
func (l LabOrder) EntityID() string { return l.ID }
func (l LabOrder) Stamp() int64 { return l.UpdatedAt }
func (s Supply) EntityID() string { return s.ID }
func (s Supply) Stamp() int64 { return s.UpdatedAt }
func (g GuestAppointment) EntityID() string { return g.ID }
func (g GuestAppointment) Stamp() int64 { return g.UpdatedAt }
func (m Medication) EntityID() string { return m.ID }
func (m Medication) Stamp() int64 { return m.UpdatedAt }
func (c MedicationCategory) EntityID() string { return c.ID }
func (c MedicationCategory) Stamp() int64 { return c.UpdatedAt }
