package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/clinicsync"
)

// GetSnapshot returns the whole current snapshot.
func (h *Handler) GetSnapshot(c *gin.Context) {
	snap := h.Sync.Snapshot()
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clinic is not set up"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Sync.Status())
}

// SyncEvents streams status transitions as server-sent events until the
// client goes away.
func (h *Handler) SyncEvents(c *gin.Context) {
	events, unsubscribe := h.Sync.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("status", ev)
			c.Writer.Flush()
		}
	}
}

// Pull reconciles with the remote record now. ?force=true merges even when
// the remote record is not newer.
func (h *Handler) Pull(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := h.Sync.Pull(c.Request.Context(), force); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": h.Sync.Status()})
		return
	}
	c.JSON(http.StatusOK, h.Sync.Status())
}

// Push writes the current snapshot to the remote record and waits.
func (h *Handler) Push(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	err := h.Sync.Push(c.Request.Context(), h.Sync.Snapshot())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.Sync.Status())
	case errors.Is(err, clinicsync.ErrOffline):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "status": h.Sync.Status()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": h.Sync.Status()})
	}
}
