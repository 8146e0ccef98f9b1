package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/pkg/validation"
	"gorm.io/gorm"
)

// AssetService is the repository for asset records. All owner-scoped reads
// and mutations use a single "id = ? AND owner_id = ?" predicate, so a
// missing record and someone else's record are indistinguishable.
type AssetService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewAssetService(db *gorm.DB, storage *StorageService) *AssetService {
	return &AssetService{db: db, storage: storage}
}

// NewPublicID returns a fresh high-entropy opaque token (32 hex chars).
func NewPublicID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a v4 UUID without dashes.
		return uuid.New().String()[:8] + uuid.New().String()[:8]
	}
	return hex.EncodeToString(buf)
}

func (s *AssetService) Create(asset *models.Asset) error {
	return s.db.Create(asset).Error
}

// ListByOwner returns all of an owner's assets, most recent first.
func (s *AssetService) ListByOwner(ownerID uuid.UUID) ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC, id DESC").
		Find(&assets).Error
	return assets, err
}

// GetOwned returns a single asset if the caller owns it.
func (s *AssetService) GetOwned(ownerID, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// GetByID returns an asset regardless of owner or visibility. Callers must
// apply the access-control decision table themselves (download by internal id).
func (s *AssetService) GetByID(id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.Where("id = ?", id).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// GetByPublicID resolves a published asset by its public token. The
// visibility check is part of the query: a token whose asset was since
// unpublished no longer resolves.
func (s *AssetService) GetByPublicID(publicID string) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.Where("public_id = ? AND visibility = ?", publicID, models.AssetVisibilityPublic).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// FindNeighbors returns the owner's assets directly before and after the
// reference asset in upload order. Equal timestamps tie-break on id
// ascending so the ordering stays deterministic. Either neighbor may be nil
// at the edges of the sequence.
func (s *AssetService) FindNeighbors(ownerID uuid.UUID, ref *models.Asset) (*models.Asset, *models.Asset, error) {
	var prev, next models.Asset

	err := s.db.Where("owner_id = ? AND (uploaded_at < ? OR (uploaded_at = ? AND id < ?))",
		ownerID, ref.UploadedAt, ref.UploadedAt, ref.ID).
		Order("uploaded_at DESC, id DESC").
		First(&prev).Error
	prevFound := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	err = s.db.Where("owner_id = ? AND (uploaded_at > ? OR (uploaded_at = ? AND id > ?))",
		ownerID, ref.UploadedAt, ref.UploadedAt, ref.ID).
		Order("uploaded_at ASC, id ASC").
		First(&next).Error
	nextFound := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var p, n *models.Asset
	if prevFound {
		p = &prev
	}
	if nextFound {
		n = &next
	}
	return p, n, nil
}

// Publish makes an asset public under a freshly issued token, overwriting
// any previous one. Concurrent publishes resolve last-write-wins.
func (s *AssetService) Publish(ownerID, id uuid.UUID) (string, error) {
	asset, err := s.GetOwned(ownerID, id)
	if err != nil {
		return "", err
	}

	publicID := NewPublicID()
	err = s.db.Model(asset).Updates(map[string]interface{}{
		"visibility": models.AssetVisibilityPublic,
		"public_id":  publicID,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to publish asset: %w", err)
	}
	return publicID, nil
}

// Unpublish reverts an asset to private and retires its token. Unpublishing
// an already-private asset is a no-op success.
func (s *AssetService) Unpublish(ownerID, id uuid.UUID) error {
	asset, err := s.GetOwned(ownerID, id)
	if err != nil {
		return err
	}
	if asset.Visibility == models.AssetVisibilityPrivate {
		return nil
	}

	err = s.db.Model(asset).Updates(map[string]interface{}{
		"visibility": models.AssetVisibilityPrivate,
		"public_id":  nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to unpublish asset: %w", err)
	}
	return nil
}

// UpdateMetadata updates title and description with the same length
// constraints as ingestion.
func (s *AssetService) UpdateMetadata(ownerID, id uuid.UUID, title, description string) error {
	title = validation.SanitizeString(title)
	description = validation.SanitizeString(description)
	if !validation.ValidateTitle(title) {
		return &ValidationError{Field: "title", Message: "title is required and must be at most 100 characters"}
	}
	if !validation.ValidateDescription(description) {
		return &ValidationError{Field: "description", Message: "description must be at most 500 characters"}
	}

	asset, err := s.GetOwned(ownerID, id)
	if err != nil {
		return err
	}

	return s.db.Model(asset).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
	}).Error
}

// Delete removes the stored file(s) and the record together. The file goes
// first: if its removal fails the record stays, leaving both intact for a
// retry rather than a dangling record or an orphaned file.
func (s *AssetService) Delete(ownerID, id uuid.UUID) error {
	asset, err := s.GetOwned(ownerID, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(asset.OwnerID, asset.StoredFileName); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if asset.ThumbnailFileName != nil {
		if err := s.storage.Delete(asset.OwnerID, *asset.ThumbnailFileName); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
	}

	return s.db.Delete(asset).Error
}

// ListPublic returns published assets, optionally filtered by media kind.
// Anonymous-safe: the visibility filter is part of the query.
func (s *AssetService) ListPublic(kind models.MediaKind, limit, offset int) ([]models.Asset, int64, error) {
	var assets []models.Asset
	var total int64

	query := s.db.Model(&models.Asset{}).Where("visibility = ?", models.AssetVisibilityPublic)
	if kind != "" {
		query = query.Where("media_kind = ?", kind)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("uploaded_at DESC, id DESC").Limit(limit).Offset(offset).Find(&assets).Error; err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// FindVideosMissingThumbnail returns all video assets with no thumbnail,
// regardless of visibility. Administrative scan for the backfill job.
func (s *AssetService) FindVideosMissingThumbnail() ([]models.Asset, error) {
	var assets []models.Asset
	err := s.db.Where("media_kind = ? AND thumbnail_file_name IS NULL", models.MediaKindVideo).
		Order("uploaded_at ASC").
		Find(&assets).Error
	return assets, err
}

// SetThumbnail records a generated thumbnail file for an asset.
func (s *AssetService) SetThumbnail(id uuid.UUID, fileName string) error {
	return s.db.Model(&models.Asset{}).Where("id = ?", id).
		Update("thumbnail_file_name", fileName).Error
}

// SetDuration records a probed duration for an asset.
func (s *AssetService) SetDuration(id uuid.UUID, seconds int) error {
	return s.db.Model(&models.Asset{}).Where("id = ?", id).
		Update("duration_seconds", seconds).Error
}
