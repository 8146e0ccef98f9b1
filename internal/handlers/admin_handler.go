package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/backend/internal/services"
)

// AdminHandler exposes maintenance operations: the thumbnail backfill and
// the runtime-editable describer endpoint.
type AdminHandler struct {
	mediaService    *services.MediaService
	settingsService *services.SettingsService
}

func NewAdminHandler(mediaService *services.MediaService, settingsService *services.SettingsService) *AdminHandler {
	return &AdminHandler{
		mediaService:    mediaService,
		settingsService: settingsService,
	}
}

// BackfillThumbnails regenerates missing video thumbnails. Runs
// synchronously and reports per-item outcomes in aggregate.
// POST /admin/media/backfill-thumbnails
func (h *AdminHandler) BackfillThumbnails(c *gin.Context) {
	generated, failed, err := h.mediaService.BackfillThumbnails(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated": generated,
		"failed":    failed,
	})
}

// GetDescriberEndpoint returns the current description-improver endpoint.
// GET /admin/settings/describer-endpoint
func (h *AdminHandler) GetDescriberEndpoint(c *gin.Context) {
	endpoint, err := h.settingsService.DescriberEndpoint()
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": endpoint})
}

// UpdateDescriberEndpoint changes the description-improver endpoint at
// runtime. An empty endpoint disables the describer.
// PUT /admin/settings/describer-endpoint
func (h *AdminHandler) UpdateDescriberEndpoint(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsService.SetDescriberEndpoint(req.Endpoint); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "describer endpoint updated", "endpoint": req.Endpoint})
}
