package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/services"
)

// PatientInsights asks the clinical assistant to analyse one patient file.
func (h *Handler) PatientInsights(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	snap := h.Sync.Snapshot()
	i := snap.PatientByID(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	prompt := services.PatientPrompt(snap.Patients[i], snap.Settings.Language)
	answer, err := h.Assistant.Insights(ctx, prompt)
	if errors.Is(err, services.ErrAssistantDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.Logger.Printf("Assistant request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get a response from the assistant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}
