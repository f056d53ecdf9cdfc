package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/services"
)

// --- CREATE PATIENT ---
func (h *Handler) CreatePatient(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var p models.Patient
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	p.ID = models.NewID()
	h.awaited(c, http.StatusCreated, services.AddPatient(p), patientItem(p.ID))
}

// --- UPDATE PATIENT (scalar fields only) ---
func (h *Handler) UpdatePatient(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var patch services.PatientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id := c.Param("id")
	h.awaited(c, http.StatusOK, services.UpdatePatient(id, patch), patientItem(id))
}

// UpdatePatientNotes saves notes as the user types: it does not wait for
// the remote write.
func (h *Handler) UpdatePatientNotes(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.queued(c, services.UpdatePatientNotes(c.Param("id"), req.Notes))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	h.awaited(c, http.StatusOK, services.DeletePatient(c.Param("id")), nil)
}

// SetTooth updates one tooth of the dental chart.
func (h *Handler) SetTooth(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var req struct {
		Tooth int `uri:"tooth" binding:"required"`
	}
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tooth number"})
		return
	}
	var tooth models.Tooth
	if err := c.ShouldBindJSON(&tooth); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id := c.Param("id")
	h.awaited(c, http.StatusOK, services.SetTooth(id, req.Tooth, tooth), func(s *models.Snapshot) any {
		if i := s.PatientByID(id); i >= 0 {
			return s.Patients[i].Teeth[req.Tooth]
		}
		return nil
	})
}

// SetQueryAnswers stores intake question answers of a patient.
func (h *Handler) SetQueryAnswers(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var answers []models.QueryAnswer
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	id := c.Param("id")
	h.awaited(c, http.StatusOK, services.SetQueryAnswers(id, answers), func(s *models.Snapshot) any {
		if i := s.PatientByID(id); i >= 0 {
			return s.Patients[i].PatientQueries
		}
		return nil
	})
}
