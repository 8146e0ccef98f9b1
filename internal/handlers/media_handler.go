package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/internal/services"
)

// MediaHandler serves the owner-facing asset routes plus the mixed
// owner/anonymous download by internal id.
type MediaHandler struct {
	mediaService   *services.MediaService
	assetService   *services.AssetService
	storageService *services.StorageService
}

func NewMediaHandler(mediaService *services.MediaService, assetService *services.AssetService, storageService *services.StorageService) *MediaHandler {
	return &MediaHandler{
		mediaService:   mediaService,
		assetService:   assetService,
		storageService: storageService,
	}
}

func ownedAssetJSON(asset *models.Asset) gin.H {
	out := gin.H{
		"id":               asset.ID,
		"title":            asset.Title,
		"description":      asset.Description,
		"stored_file_name": asset.StoredFileName,
		"content_type":     asset.ContentType,
		"size_bytes":       asset.SizeBytes,
		"media_kind":       asset.MediaKind,
		"visibility":       asset.Visibility,
		"uploaded_at":      asset.UploadedAt,
	}
	if asset.PublicID != nil {
		out["public_id"] = *asset.PublicID
	}
	if asset.ThumbnailFileName != nil {
		out["thumbnail_file_name"] = *asset.ThumbnailFileName
	}
	if asset.DurationSeconds != nil {
		out["duration_seconds"] = *asset.DurationSeconds
	}
	return out
}

// Upload handles a media upload.
// POST /user/media
// Multipart form: file (required), title (required), description (optional)
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	title := c.PostForm("title")
	description := c.PostForm("description")
	contentType := header.Header.Get("Content-Type")
	ext := filepath.Ext(header.Filename)

	asset, err := h.mediaService.Ingest(c.Request.Context(), userID, title, description, file, contentType, ext)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ownedAssetJSON(asset))
}

// ListOwn lists the caller's assets, most recent first.
// GET /user/media
func (h *MediaHandler) ListOwn(c *gin.Context) {
	userID, _ := middleware.CallerID(c)

	assets, err := h.assetService.ListByOwner(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	list := make([]gin.H, len(assets))
	for i := range assets {
		list[i] = ownedAssetJSON(&assets[i])
	}
	c.JSON(http.StatusOK, gin.H{"media": list, "total": len(list)})
}

// GetDetails returns one owned asset plus its prev/next neighbors in upload
// order.
// GET /user/media/:id
func (h *MediaHandler) GetDetails(c *gin.Context) {
	userID, _ := middleware.CallerID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media ID"})
		return
	}

	asset, err := h.assetService.GetOwned(userID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	prev, next, err := h.assetService.FindNeighbors(userID, asset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := ownedAssetJSON(asset)
	if prev != nil {
		out["previous_id"] = prev.ID
	}
	if next != nil {
		out["next_id"] = next.ID
	}
	c.JSON(http.StatusOK, out)
}

// UpdateMetadata updates title and description.
// PUT /user/media/:id
func (h *MediaHandler) UpdateMetadata(c *gin.Context) {
	userID, _ := middleware.CallerID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media ID"})
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.assetService.UpdateMetadata(userID, id, req.Title, req.Description); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "metadata updated successfully"})
}

// Publish makes an asset public under a fresh opaque token.
// POST /user/media/:id/publish
func (h *MediaHandler) Publish(c *gin.Context) {
	userID, _ := middleware.CallerID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media ID"})
		return
	}

	publicID, err := h.assetService.Publish(userID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"public_id":  publicID,
		"public_url": "/api/v1/public/media/" + publicID,
	})
}

// Unpublish reverts an asset to private. Idempotent.
// POST /user/media/:id/unpublish
func (h *MediaHandler) Unpublish(c *gin.Context) {
	userID, _ := middleware.CallerID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media ID"})
		return
	}

	if err := h.assetService.Unpublish(userID, id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "media is now private"})
}

// Delete removes the stored file(s) and the record together.
// DELETE /user/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	userID, _ := middleware.CallerID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media ID"})
		return
	}

	if err := h.assetService.Delete(userID, id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "media deleted successfully"})
}

// Download streams an asset payload by internal id. Public assets are open
// to anyone; private assets require the owner. A private asset requested by
// an authenticated non-owner gets 403, not 404: the caller already holds the
// internal id, so existence is not a secret worth protecting here.
// GET /media/:id/download
func (h *MediaHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media ID"})
		return
	}

	asset, err := h.assetService.GetByID(id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if !asset.IsPublic() {
		userID, authenticated := middleware.CallerID(c)
		if !authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if userID != asset.OwnerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	h.serveAssetFile(c, asset)
}

func (h *MediaHandler) serveAssetFile(c *gin.Context, asset *models.Asset) {
	if !h.storageService.Exists(asset.OwnerID, asset.StoredFileName) {
		writeServiceError(c, services.ErrFileMissing)
		return
	}
	absPath, err := h.storageService.Resolve(asset.OwnerID, asset.StoredFileName)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Type", asset.ContentType)
	c.FileAttachment(absPath, asset.StoredFileName)
}
