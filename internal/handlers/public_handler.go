package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/internal/services"
)

// PublicHandler serves anonymous access to published assets. Everything here
// resolves strictly by public id and visibility; internal ids never appear
// in responses.
type PublicHandler struct {
	assetService   *services.AssetService
	storageService *services.StorageService
}

func NewPublicHandler(assetService *services.AssetService, storageService *services.StorageService) *PublicHandler {
	return &PublicHandler{
		assetService:   assetService,
		storageService: storageService,
	}
}

func publicAssetJSON(asset *models.Asset) gin.H {
	publicID := ""
	if asset.PublicID != nil {
		publicID = *asset.PublicID
	}
	out := gin.H{
		"public_id":    publicID,
		"title":        asset.Title,
		"description":  asset.Description,
		"content_type": asset.ContentType,
		"size_bytes":   asset.SizeBytes,
		"media_kind":   asset.MediaKind,
		"uploaded_at":  asset.UploadedAt,
		"file_url":     "/api/v1/public/media/" + publicID + "/file",
	}
	if asset.ThumbnailFileName != nil {
		out["thumbnail_url"] = "/api/v1/public/media/" + publicID + "/thumbnail"
	}
	if asset.DurationSeconds != nil {
		out["duration_seconds"] = *asset.DurationSeconds
	}
	return out
}

func pagination(c *gin.Context) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

// ListMedia lists published assets, optionally filtered by kind.
// GET /public/media?kind=image&page=1&limit=20
func (h *PublicHandler) ListMedia(c *gin.Context) {
	page, limit, offset := pagination(c)

	var kind models.MediaKind
	if k := c.Query("kind"); k != "" {
		switch models.MediaKind(k) {
		case models.MediaKindImage, models.MediaKindVideo, models.MediaKindAudio:
			kind = models.MediaKind(k)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media kind"})
			return
		}
	}

	assets, total, err := h.assetService.ListPublic(kind, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	list := make([]gin.H, len(assets))
	for i := range assets {
		list[i] = publicAssetJSON(&assets[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"media": list,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// ListVideos lists published videos for the video gallery.
// GET /public/media/videos
func (h *PublicHandler) ListVideos(c *gin.Context) {
	page, limit, offset := pagination(c)

	assets, total, err := h.assetService.ListPublic(models.MediaKindVideo, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	list := make([]gin.H, len(assets))
	for i := range assets {
		list[i] = publicAssetJSON(&assets[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"videos": list,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetMedia returns the details of one published asset.
// GET /public/media/:publicId
func (h *PublicHandler) GetMedia(c *gin.Context) {
	asset, err := h.assetService.GetByPublicID(c.Param("publicId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, publicAssetJSON(asset))
}

// GetVideo returns one published video plus a handful of related public
// videos for the gallery sidebar.
// GET /public/media/videos/:publicId
func (h *PublicHandler) GetVideo(c *gin.Context) {
	asset, err := h.assetService.GetByPublicID(c.Param("publicId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !asset.IsVideo() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	related, _, err := h.assetService.ListPublic(models.MediaKindVideo, 9, 0)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	relatedList := make([]gin.H, 0, len(related))
	for i := range related {
		if related[i].ID == asset.ID {
			continue
		}
		if len(relatedList) == 8 {
			break
		}
		relatedList = append(relatedList, publicAssetJSON(&related[i]))
	}

	out := publicAssetJSON(asset)
	out["related"] = relatedList
	c.JSON(http.StatusOK, out)
}

// DownloadMedia streams a published asset's payload.
// GET /public/media/:publicId/file
func (h *PublicHandler) DownloadMedia(c *gin.Context) {
	asset, err := h.assetService.GetByPublicID(c.Param("publicId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

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

// ServeThumbnail streams a published video's thumbnail.
// GET /public/media/:publicId/thumbnail
func (h *PublicHandler) ServeThumbnail(c *gin.Context) {
	asset, err := h.assetService.GetByPublicID(c.Param("publicId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if asset.ThumbnailFileName == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if !h.storageService.Exists(asset.OwnerID, *asset.ThumbnailFileName) {
		writeServiceError(c, services.ErrFileMissing)
		return
	}
	absPath, err := h.storageService.Resolve(asset.OwnerID, *asset.ThumbnailFileName)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(absPath)
}
