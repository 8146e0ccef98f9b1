package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/pkg/validation"
)

// MediaService orchestrates ingestion: validation, storage write, optional
// thumbnail and description improvement, then the record commit. It also
// runs the thumbnail backfill.
type MediaService struct {
	cfg       *config.Config
	assets    *AssetService
	storage   *StorageService
	thumbs    Thumbnailer
	describer Describer
}

// NewMediaService wires the pipeline. thumbs and describer may be nil, in
// which case the corresponding best-effort steps are skipped.
func NewMediaService(cfg *config.Config, assets *AssetService, storage *StorageService, thumbs Thumbnailer, describer Describer) *MediaService {
	return &MediaService{
		cfg:       cfg,
		assets:    assets,
		storage:   storage,
		thumbs:    thumbs,
		describer: describer,
	}
}

// ThumbnailNameFor returns the thumbnail file name for a stored video file.
// Thumbnails are always JPEG regardless of the source container.
func ThumbnailNameFor(storedFileName string) string {
	return strings.TrimSuffix(storedFileName, filepath.Ext(storedFileName)) + ".jpg"
}

// Ingest validates and persists one upload. Either the file is fully written
// and exactly one record committed, or nothing persists at all. Thumbnail
// and description improvement are best-effort and never fail the ingestion.
func (s *MediaService) Ingest(ctx context.Context, ownerID uuid.UUID, title, description string, r io.Reader, contentType, originalExt string) (*models.Asset, error) {
	kind, allowed := models.KindForContentType(contentType)
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}

	title = validation.SanitizeString(title)
	description = validation.SanitizeString(description)
	if !validation.ValidateTitle(title) {
		return nil, &ValidationError{Field: "title", Message: "title is required and must be at most 100 characters"}
	}
	if !validation.ValidateDescription(description) {
		return nil, &ValidationError{Field: "description", Message: "description must be at most 500 characters"}
	}

	storedName := s.storage.NewObjectName(originalExt)

	if s.cfg.UploadMaxBytes > 0 {
		r = io.LimitReader(r, s.cfg.UploadMaxBytes+1)
	}
	size, err := s.storage.SaveStream(ctx, ownerID, storedName, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if s.cfg.UploadMaxBytes > 0 && size > s.cfg.UploadMaxBytes {
		_ = s.storage.Delete(ownerID, storedName)
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("file exceeds the %d byte limit", s.cfg.UploadMaxBytes)}
	}

	var thumbName *string
	var duration *int
	if kind == models.MediaKindVideo && s.thumbs != nil {
		srcPath, _ := s.storage.Resolve(ownerID, storedName)
		tn := ThumbnailNameFor(storedName)
		dstPath, _ := s.storage.Resolve(ownerID, tn)
		if err := s.thumbs.ExtractFrame(ctx, srcPath, dstPath); err != nil {
			// Left for the backfill job to retry.
			log.Printf("Thumbnail generation failed for %s: %v", storedName, err)
		} else {
			thumbName = &tn
		}
		if d, err := s.thumbs.ProbeDuration(ctx, srcPath); err == nil && d > 0 {
			duration = &d
		}
	}

	if s.describer != nil && description != "" {
		improved, err := s.describer.ImproveDescription(ctx, description, kind)
		if err != nil {
			log.Printf("Description improvement unavailable, keeping caller text: %v", err)
		} else if validation.ValidateDescription(improved) {
			description = improved
		}
	}

	asset := &models.Asset{
		OwnerID:           ownerID,
		Title:             title,
		Description:       description,
		StoredFileName:    storedName,
		ContentType:       contentType,
		SizeBytes:         size,
		MediaKind:         kind,
		Visibility:        models.AssetVisibilityPrivate,
		ThumbnailFileName: thumbName,
		DurationSeconds:   duration,
	}
	if err := s.assets.Create(asset); err != nil {
		// Roll the storage write back so no orphaned file remains.
		_ = s.storage.Delete(ownerID, storedName)
		if thumbName != nil {
			_ = s.storage.Delete(ownerID, *thumbName)
		}
		return nil, fmt.Errorf("failed to create asset record: %w", err)
	}

	return asset, nil
}

// BackfillThumbnails scans video assets missing a thumbnail and attempts
// generation for each independently, continuing past per-item failures.
// Only successful generations update records. Safe to run concurrently with
// ingestion: regenerating an already-created thumbnail is an idempotent
// overwrite.
func (s *MediaService) BackfillThumbnails(ctx context.Context) (int, int, error) {
	if s.thumbs == nil {
		return 0, 0, fmt.Errorf("no thumbnailer configured")
	}

	assets, err := s.assets.FindVideosMissingThumbnail()
	if err != nil {
		return 0, 0, err
	}

	generated, failed := 0, 0
	for i := range assets {
		asset := &assets[i]
		if err := ctx.Err(); err != nil {
			return generated, failed, err
		}

		if !s.storage.Exists(asset.OwnerID, asset.StoredFileName) {
			log.Printf("Backfill: source file missing for asset %s (%s)", asset.ID, asset.StoredFileName)
			failed++
			continue
		}

		srcPath, _ := s.storage.Resolve(asset.OwnerID, asset.StoredFileName)
		tn := ThumbnailNameFor(asset.StoredFileName)
		dstPath, _ := s.storage.Resolve(asset.OwnerID, tn)

		if err := s.thumbs.ExtractFrame(ctx, srcPath, dstPath); err != nil {
			log.Printf("Backfill: thumbnail generation failed for asset %s: %v", asset.ID, err)
			failed++
			continue
		}

		if err := s.assets.SetThumbnail(asset.ID, tn); err != nil {
			log.Printf("Backfill: failed to record thumbnail for asset %s: %v", asset.ID, err)
			failed++
			continue
		}
		generated++

		if asset.DurationSeconds == nil {
			if d, err := s.thumbs.ProbeDuration(ctx, srcPath); err == nil && d > 0 {
				_ = s.assets.SetDuration(asset.ID, d)
			}
		}
	}

	return generated, failed, nil
}
