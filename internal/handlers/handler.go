package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/auth"
	"github.com/harentsoaR/dentist-sync/internal/clinicsync"
	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/services"
	"github.com/harentsoaR/dentist-sync/internal/store/local"
	"github.com/harentsoaR/dentist-sync/internal/store/remote"
)

// Handler serves the local HTTP API of the device.
type Handler struct {
	Sync    *clinicsync.Orchestrator
	Session *auth.Session
	Local   *local.Store
	Remote  *remote.Store
	Logger  *log.Logger

	// Optional outer services; nil disables them.
	Assistant *services.Assistant
	Notifier  *services.NotificationService
}

func NewHandler(sync *clinicsync.Orchestrator, session *auth.Session, localStore *local.Store, remoteStore *remote.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stderr, "[api] ", log.LstdFlags)
	}
	return &Handler{
		Sync:    sync,
		Session: session,
		Local:   localStore,
		Remote:  remoteStore,
		Logger:  logger,
	}
}

// requireClinic stops the request when the clinic has not been set up yet.
func (h *Handler) requireClinic(c *gin.Context) bool {
	if !h.Sync.Snapshot().Initialized() {
		c.JSON(http.StatusConflict, gin.H{"error": "Clinic is not set up"})
		return false
	}
	return true
}

// mutationError answers a mutation that was not saved.
func (h *Handler) mutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrUnknownKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Logger.Printf("Mutation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save changes"})
	}
}

// awaited runs fn through the funnel and waits for the push. A failed push
// still answers 202: the change is saved on this device. It returns the
// committed snapshot, or nil when nothing was committed.
func (h *Handler) awaited(c *gin.Context, status int, fn services.Transform, item func(*models.Snapshot) any) *models.Snapshot {
	snap, err := h.Sync.ApplyAndWait(c.Request.Context(), fn)
	if snap == nil {
		h.mutationError(c, err)
		return nil
	}
	body := gin.H{"synced": err == nil, "lastUpdated": snap.LastUpdated}
	if item != nil {
		body["data"] = item(snap)
	}
	if err != nil {
		body["error"] = err.Error()
		c.JSON(http.StatusAccepted, body)
		return snap
	}
	c.JSON(status, body)
	return snap
}

// queued runs fn through the funnel without waiting for the push.
func (h *Handler) queued(c *gin.Context, fn services.Transform) {
	snap, err := h.Sync.Apply(c.Request.Context(), fn)
	if err != nil {
		h.mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queued": true, "lastUpdated": snap.LastUpdated})
}

func patientItem(id string) func(*models.Snapshot) any {
	return func(s *models.Snapshot) any {
		if i := s.PatientByID(id); i >= 0 {
			return s.Patients[i]
		}
		return nil
	}
}
