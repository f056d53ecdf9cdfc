package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/models"
	"github.com/harentsoaR/dentist-sync/internal/services"
	"github.com/harentsoaR/dentist-sync/internal/store/local"
)

// SetupClinic names the clinic on a fresh device.
func (h *Handler) SetupClinic(c *gin.Context) {
	var req struct {
		ClinicName string `json:"clinicName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.awaited(c, http.StatusCreated, services.SetupClinic(req.ClinicName), nil)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var patch services.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.awaited(c, http.StatusOK, services.UpdateSettings(patch), func(s *models.Snapshot) any { return s.Settings })
}

func (h *Handler) GetDevicePrefs(c *gin.Context) {
	prefs, err := h.Local.DevicePrefs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read device preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PutDevicePrefs replaces the preferences of this device. They are never
// replicated.
func (h *Handler) PutDevicePrefs(c *gin.Context) {
	var prefs models.DevicePrefs
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.Local.SaveDevicePrefs(c.Request.Context(), prefs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save device preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// ImportBackup restores a JSON backup uploaded as the multipart field "file".
// mode=replace makes it the current snapshot; the default merges it in.
func (h *Handler) ImportBackup(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Backup file required"})
		return
	}
	mode := c.DefaultPostForm("mode", "merge")
	if mode != "merge" && mode != "replace" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be merge or replace"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read backup file"})
		return
	}
	defer f.Close()

	imported, err := h.Local.ImportBackup(c.Request.Context(), io.LimitReader(f, 256<<20))
	if errors.Is(err, local.ErrInvalidBackup) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not import backup"})
		return
	}

	snap, err := h.Sync.Restore(c.Request.Context(), imported, mode == "replace")
	if snap == nil {
		h.mutationError(c, err)
		return
	}
	body := gin.H{"synced": err == nil, "lastUpdated": snap.LastUpdated, "mode": mode}
	if err != nil {
		body["error"] = err.Error()
		c.JSON(http.StatusAccepted, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) CreateMemo(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	var memo models.Memo
	if err := c.ShouldBindJSON(&memo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	memo.ID = models.NewID()
	h.awaited(c, http.StatusCreated, services.AddMemo(memo), func(s *models.Snapshot) any {
		return s.Memos[len(s.Memos)-1]
	})
}

// UpsertItem creates or replaces an item of any keyed collection.
func (h *Handler) UpsertItem(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.awaited(c, http.StatusOK, services.UpsertItem(c.Param("kind"), c.Param("id"), body), nil)
}

// DeleteItem removes an item of any keyed collection and records its
// tombstone.
func (h *Handler) DeleteItem(c *gin.Context) {
	if !h.requireClinic(c) {
		return
	}
	h.awaited(c, http.StatusOK, services.DeleteItem(c.Param("kind"), c.Param("id")), nil)
}
