package services

import (
	"fmt"
	"maps"
	"slices"

	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/tombstone"
)

// AddPatient appends p with a fresh id when it has none.
func AddPatient(p models.Patient) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: patient name is required", ErrInvalidInput)
		}
		if p.ID == "" {
			p.ID = models.NewID()
		}
		if err := checkLive(cur, "patient", p.ID); err != nil {
			return nil, err
		}
		if cur.PatientByID(p.ID) >= 0 {
			return nil, fmt.Errorf("patient %q: %w", p.ID, ErrExists)
		}
		p.UpdatedAt = now()
		next := *cur
		next.Patients = append(slices.Clip(cur.Patients), p)
		return &next, nil
	}
}

// PatientPatch lists the scalar fields to change; nil fields are kept.
type PatientPatch struct {
	Name               *string `json:"name"`
	Age                *int    `json:"age"`
	Gender             *string `json:"gender"`
	Phone              *string `json:"phone"`
	PhoneCode          *string `json:"phoneCode"`
	Category           *string `json:"category"`
	DoctorID           *string `json:"doctorId"`
	Notes              *string `json:"notes"`
	MedicalHistory     *string `json:"medicalHistory"`
	DentalHistoryNotes *string `json:"dentalHistoryNotes"`
	ProfilePicture     *string `json:"profilePicture"`
}

// UpdatePatient changes scalar fields of a patient and bumps its UpdatedAt.
// Teeth and sub-collections carry their own timestamps and are not touched.
func UpdatePatient(id string, patch PatientPatch) Transform {
	return withPatient(id, func(p *models.Patient) error {
		if patch.Name != nil && *patch.Name == "" {
			return fmt.Errorf("%w: patient name is required", ErrInvalidInput)
		}
		setIf(&p.Name, patch.Name)
		setIf(&p.Age, patch.Age)
		setIf(&p.Gender, patch.Gender)
		setIf(&p.Phone, patch.Phone)
		setIf(&p.PhoneCode, patch.PhoneCode)
		setIf(&p.Category, patch.Category)
		setIf(&p.DoctorID, patch.DoctorID)
		setIf(&p.Notes, patch.Notes)
		setIf(&p.MedicalHistory, patch.MedicalHistory)
		setIf(&p.DentalHistoryNotes, patch.DentalHistoryNotes)
		setIf(&p.ProfilePicture, patch.ProfilePicture)
		p.UpdatedAt = now()
		return nil
	})
}

// UpdatePatientNotes replaces the free-text notes of a patient.
func UpdatePatientNotes(id, notes string) Transform {
	return UpdatePatient(id, PatientPatch{Notes: &notes})
}

// DeletePatient removes a patient and records its tombstone.
func DeletePatient(id string) Transform {
	return DeleteItem("patients", id)
}

// AddAppointment schedules an appointment for a patient.
func AddAppointment(patientID string, a models.Appointment) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		if a.ID == "" {
			a.ID = models.NewID()
		}
		if err := checkLive(cur, "appointment", a.ID); err != nil {
			return nil, err
		}
		return addAppointment(patientID, a)(cur)
	}
}

func addAppointment(patientID string, a models.Appointment) Transform {
	return withPatient(patientID, func(p *models.Patient) error {
		if a.Date == "" {
			return fmt.Errorf("%w: appointment date is required", ErrInvalidInput)
		}
		if a.Status == "" {
			a.Status = "scheduled"
		}
		a.UpdatedAt = now()
		p.Appointments = upsertByID(p.Appointments, a)
		return nil
	})
}

// DeleteAppointment removes an appointment of a patient and records its
// tombstone so other devices drop it too.
func DeleteAppointment(patientID, appointmentID string) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		next, err := withPatient(patientID, func(p *models.Patient) error {
			out, ok := removeByID(p.Appointments, appointmentID)
			if !ok {
				return fmt.Errorf("appointment %q: %w", appointmentID, ErrNotFound)
			}
			p.Appointments = out
			return nil
		})(cur)
		if err != nil {
			return nil, err
		}
		next.DeletedIDs = tombstone.Record(cur.DeletedIDs, appointmentID)
		return next, nil
	}
}

// SetTooth records the chart entry of one tooth. Only that tooth is stamped.
func SetTooth(patientID string, number int, t models.Tooth) Transform {
	return withPatient(patientID, func(p *models.Patient) error {
		if number < 11 || number > 85 {
			return fmt.Errorf("%w: tooth number %d", ErrInvalidInput, number)
		}
		t.UpdatedAt = now()
		teeth := maps.Clone(p.Teeth)
		if teeth == nil {
			teeth = make(map[int]models.Tooth)
		}
		teeth[number] = t
		p.Teeth = teeth
		return nil
	})
}

// SetQueryAnswers stores answers to intake questions, keeping at most one
// answer per question.
func SetQueryAnswers(patientID string, answers []models.QueryAnswer) Transform {
	return withPatient(patientID, func(p *models.Patient) error {
		at := now()
		out := p.PatientQueries
		for _, a := range answers {
			if a.QuestionID == "" {
				return fmt.Errorf("%w: question id is required", ErrInvalidInput)
			}
			a.UpdatedAt = at
			out = upsertByID(out, a)
		}
		p.PatientQueries = out
		return nil
	})
}

// withPatient copies the snapshot and the patient with id and lets fn edit
// the copy.
func withPatient(id string, fn func(p *models.Patient) error) Transform {
	return func(cur *models.Snapshot) (*models.Snapshot, error) {
		i := cur.PatientByID(id)
		if i < 0 {
			return nil, fmt.Errorf("patient %q: %w", id, ErrNotFound)
		}
		p := cur.Patients[i]
		if err := fn(&p); err != nil {
			return nil, err
		}
		next := *cur
		next.Patients = slices.Clone(cur.Patients)
		next.Patients[i] = p
		return &next, nil
	}
}
