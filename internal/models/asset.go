package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

type AssetVisibility string

const (
	AssetVisibilityPrivate AssetVisibility = "private"
	AssetVisibilityPublic  AssetVisibility = "public"
)

// contentTypeKinds is the upload allow-list. Classification goes by the
// declared content type only; the payload bytes are never inspected.
var contentTypeKinds = map[string]MediaKind{
	"image/jpeg": MediaKindImage,
	"image/png":  MediaKindImage,
	"image/gif":  MediaKindImage,
	"image/webp": MediaKindImage,

	"video/mp4":       MediaKindVideo,
	"video/quicktime": MediaKindVideo,
	"video/x-msvideo": MediaKindVideo,
	"video/webm":      MediaKindVideo,

	"audio/mpeg": MediaKindAudio,
	"audio/wav":  MediaKindAudio,
	"audio/ogg":  MediaKindAudio,
}

// KindForContentType classifies a declared content type against the
// allow-list. The second return value is false for anything not allowed.
func KindForContentType(contentType string) (MediaKind, bool) {
	kind, ok := contentTypeKinds[contentType]
	return kind, ok
}

// Asset represents a stored media item (image, video or audio) with
// ownership and visibility metadata.
type Asset struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_assets_owner_file" json:"owner_id"`

	Title       string `gorm:"size:100" json:"title"`
	Description string `gorm:"size:500" json:"description"`

	// StoredFileName is server-generated (random token + client extension),
	// never the client's original name.
	StoredFileName string    `gorm:"size:255;not null;uniqueIndex:idx_assets_owner_file" json:"stored_file_name"`
	ContentType    string    `gorm:"size:120;not null" json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	MediaKind      MediaKind `gorm:"size:16;not null" json:"media_kind"`

	Visibility AssetVisibility `gorm:"size:16;default:private" json:"visibility"`

	// PublicID is set iff the asset is public. A fresh token is issued on
	// every publish; unpublishing clears it.
	PublicID *string `gorm:"size:64;uniqueIndex" json:"public_id,omitempty"`

	ThumbnailFileName *string `gorm:"size:255" json:"thumbnail_file_name,omitempty"`
	DurationSeconds   *int    `json:"duration_seconds,omitempty"`

	UploadedAt time.Time `gorm:"not null;index" json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now().UTC()
	}
	return nil
}

func (a *Asset) IsVideo() bool {
	return a.MediaKind == MediaKindVideo
}

func (a *Asset) IsPublic() bool {
	return a.Visibility == AssetVisibilityPublic
}
