package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/services"
)

// --- CREATE APPOINTMENT ---
func (h *Handler) CreateAppointment(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var req struct {
		Date     string `json:"date" binding:"required"`
		Time     string `json:"time"`
		Service  string `json:"service"`
		DoctorID string `json:"doctorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if _, err := time.Parse(time.DateOnly, req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, use YYYY-MM-DD"})
		return
	}

	apt := models.Appointment{
		ID:       models.NewID(),
		Date:     req.Date,
		Time:     req.Time,
		Service:  req.Service,
		DoctorID: req.DoctorID,
		Status:   "scheduled",
	}
	patientID := c.Param("id")
	snap := h.awaited(c, http.StatusCreated, services.AddAppointment(patientID, apt), func(s *models.Snapshot) any {
		if a, _, ok := findAppointment(s, patientID, apt.ID); ok {
			return a
		}
		return nil
	})
	if snap == nil {
		return
	}
	if a, p, ok := findAppointment(snap, patientID, apt.ID); ok {
		h.Notifier.SendAppointmentConfirmation(snap.ClinicName, p, a)
	}
}

func findAppointment(s *models.Snapshot, patientID, id string) (models.Appointment, models.Patient, bool) {
	i := s.PatientByID(patientID)
	if i < 0 {
		return models.Appointment{}, models.Patient{}, false
	}
	for _, a := range s.Patients[i].Appointments {
		if a.ID == id {
			return a, s.Patients[i], true
		}
	}
	return models.Appointment{}, models.Patient{}, false
}

// --- DELETE APPOINTMENT ---
func (h *Handler) DeleteAppointment(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	h.awaited(c, http.StatusOK, services.DeleteAppointment(c.Param("id"), c.Param("appointmentId")), nil)
}
