package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubThumbnailer writes a marker file as the extracted frame.
type stubThumbnailer struct {
	fail     bool
	duration int
	calls    int
}

func (s *stubThumbnailer) ExtractFrame(ctx context.Context, srcPath, dstPath string) error {
	s.calls++
	if s.fail {
		return errors.New("ffmpeg exploded")
	}
	return os.WriteFile(dstPath, []byte("jpeg"), 0o644)
}

func (s *stubThumbnailer) ProbeDuration(ctx context.Context, path string) (int, error) {
	if s.duration == 0 {
		return 0, errors.New("no duration")
	}
	return s.duration, nil
}

// stubDescriber rewrites or fails.
type stubDescriber struct {
	improved string
	err      error
}

func (s *stubDescriber) ImproveDescription(ctx context.Context, text string, kind models.MediaKind) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.improved, nil
}

func newTestMediaService(t *testing.T, thumbs Thumbnailer, describer Describer, maxBytes int64) (*MediaService, *AssetService, *StorageService) {
	t.Helper()
	cfg := &config.Config{StorageRoot: t.TempDir(), UploadMaxBytes: maxBytes}
	storage := NewStorageService(cfg)
	assets := NewAssetService(newTestDB(t), storage)
	return NewMediaService(cfg, assets, storage, thumbs, describer), assets, storage
}

func countOwnerFiles(t *testing.T, storage *StorageService, owner uuid.UUID) int {
	t.Helper()
	path, err := storage.Resolve(owner, "probe")
	require.NoError(t, err)
	entries, err := os.ReadDir(strings.TrimSuffix(path, "probe"))
	require.NoError(t, err)
	return len(entries)
}

func TestIngestCreatesPrivateAsset(t *testing.T) {
	svc, assets, storage := newTestMediaService(t, nil, nil, 0)
	owner := uuid.New()

	asset, err := svc.Ingest(context.Background(), owner, "sunset", "over the bay", strings.NewReader("imagebytes"), "image/jpeg", ".JPEG")
	require.NoError(t, err)

	assert.Equal(t, models.MediaKindImage, asset.MediaKind)
	assert.Equal(t, models.AssetVisibilityPrivate, asset.Visibility)
	assert.Nil(t, asset.PublicID)
	assert.Equal(t, int64(10), asset.SizeBytes)
	assert.True(t, strings.HasSuffix(asset.StoredFileName, ".jpeg"))
	assert.True(t, storage.Exists(owner, asset.StoredFileName))

	got, err := assets.GetOwned(owner, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunset", got.Title)
}

func TestIngestRejectsUnsupportedTypeWithoutSideEffects(t *testing.T) {
	svc, assets, storage := newTestMediaService(t, nil, nil, 0)
	owner := uuid.New()

	_, err := svc.Ingest(context.Background(), owner, "doc", "", strings.NewReader("%PDF"), "application/pdf", ".pdf")
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	assert.Equal(t, 0, countOwnerFiles(t, storage, owner))
	list, err := assets.ListByOwner(owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngestValidatesMetadata(t *testing.T) {
	svc, _, _ := newTestMediaService(t, nil, nil, 0)
	owner := uuid.New()

	var validationErr *ValidationError
	_, err := svc.Ingest(context.Background(), owner, "", "", strings.NewReader("x"), "image/png", ".png")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "title", validationErr.Field)

	_, err = svc.Ingest(context.Background(), owner, "ok", strings.Repeat("d", 501), strings.NewReader("x"), "image/png", ".png")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "description", validationErr.Field)
}

func TestIngestAtomicityOnInterruptedWrite(t *testing.T) {
	svc, assets, storage := newTestMediaService(t, nil, nil, 0)
	owner := uuid.New()

	_, err := svc.Ingest(context.Background(), owner, "broken", "", failingReader{}, "image/jpeg", ".jpg")
	assert.ErrorIs(t, err, ErrStorageWrite)

	// no partial file, no record
	assert.Equal(t, 0, countOwnerFiles(t, storage, owner))
	list, err := assets.ListByOwner(owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngestEnforcesConfiguredSizeLimit(t *testing.T) {
	svc, assets, storage := newTestMediaService(t, nil, nil, 8)
	owner := uuid.New()

	var validationErr *ValidationError
	_, err := svc.Ingest(context.Background(), owner, "big", "", strings.NewReader("way more than eight"), "image/png", ".png")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "file", validationErr.Field)

	assert.Equal(t, 0, countOwnerFiles(t, storage, owner))
	list, err := assets.ListByOwner(owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngestVideoWithThumbnailer(t *testing.T) {
	thumbs := &stubThumbnailer{duration: 42}
	svc, _, storage := newTestMediaService(t, thumbs, nil, 0)
	owner := uuid.New()

	asset, err := svc.Ingest(context.Background(), owner, "clip", "", strings.NewReader("videobytes"), "video/mp4", ".mp4")
	require.NoError(t, err)

	require.NotNil(t, asset.ThumbnailFileName)
	assert.Equal(t, ThumbnailNameFor(asset.StoredFileName), *asset.ThumbnailFileName)
	assert.True(t, storage.Exists(owner, *asset.ThumbnailFileName))
	require.NotNil(t, asset.DurationSeconds)
	assert.Equal(t, 42, *asset.DurationSeconds)
}

func TestIngestVideoSurvivesThumbnailFailure(t *testing.T) {
	thumbs := &stubThumbnailer{fail: true}
	svc, assets, _ := newTestMediaService(t, thumbs, nil, 0)
	owner := uuid.New()

	asset, err := svc.Ingest(context.Background(), owner, "clip", "", strings.NewReader("videobytes"), "video/mp4", ".mp4")
	require.NoError(t, err)
	assert.Nil(t, asset.ThumbnailFileName)

	got, err := assets.GetOwned(owner, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MediaKindVideo, got.MediaKind)
	assert.Nil(t, got.ThumbnailFileName)
}

func TestIngestImprovesDescriptionBestEffort(t *testing.T) {
	svc, _, _ := newTestMediaService(t, nil, &stubDescriber{improved: "a golden sunset over the bay"}, 0)
	owner := uuid.New()

	asset, err := svc.Ingest(context.Background(), owner, "sunset", "sunset pic", strings.NewReader("x"), "image/jpeg", ".jpg")
	require.NoError(t, err)
	assert.Equal(t, "a golden sunset over the bay", asset.Description)
}

func TestIngestKeepsDescriptionWhenDescriberUnavailable(t *testing.T) {
	svc, _, _ := newTestMediaService(t, nil, &stubDescriber{err: errors.New("connection refused")}, 0)
	owner := uuid.New()

	asset, err := svc.Ingest(context.Background(), owner, "sunset", "sunset pic", strings.NewReader("x"), "image/jpeg", ".jpg")
	require.NoError(t, err)
	assert.Equal(t, "sunset pic", asset.Description)
}

func TestIngestKeepsDescriptionWhenImprovementTooLong(t *testing.T) {
	svc, _, _ := newTestMediaService(t, nil, &stubDescriber{improved: strings.Repeat("x", 501)}, 0)
	owner := uuid.New()

	asset, err := svc.Ingest(context.Background(), owner, "sunset", "sunset pic", strings.NewReader("x"), "image/jpeg", ".jpg")
	require.NoError(t, err)
	assert.Equal(t, "sunset pic", asset.Description)
}

func TestBackfillThumbnails(t *testing.T) {
	thumbs := &stubThumbnailer{fail: true}
	svc, assets, storage := newTestMediaService(t, thumbs, nil, 0)
	owner := uuid.New()

	// ingest while the generator is down: asset exists, thumbnail unset
	asset, err := svc.Ingest(context.Background(), owner, "clip", "desc", strings.NewReader("videobytes"), "video/mp4", ".mp4")
	require.NoError(t, err)
	require.Nil(t, asset.ThumbnailFileName)

	// generator recovers; backfill repairs the missing thumbnail
	thumbs.fail = false
	thumbs.duration = 7
	generated, failed, err := svc.BackfillThumbnails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.Equal(t, 0, failed)

	got, err := assets.GetOwned(owner, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ThumbnailFileName)
	assert.Equal(t, ThumbnailNameFor(asset.StoredFileName), *got.ThumbnailFileName)
	assert.True(t, storage.Exists(owner, *got.ThumbnailFileName))

	// everything else is untouched
	assert.Equal(t, "clip", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, asset.StoredFileName, got.StoredFileName)
	assert.Equal(t, models.AssetVisibilityPrivate, got.Visibility)

	// a second run finds nothing to do
	generated, failed, err = svc.BackfillThumbnails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, generated)
	assert.Equal(t, 0, failed)
}

func TestBackfillContinuesPastFailures(t *testing.T) {
	thumbs := &stubThumbnailer{fail: true}
	svc, assets, storage := newTestMediaService(t, thumbs, nil, 0)
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Ingest(context.Background(), owner, fmt.Sprintf("clip-%d", i), "", strings.NewReader("videobytes"), "video/mp4", ".mp4")
		require.NoError(t, err)
	}

	// one source file disappears out from under us
	pending, err := assets.FindVideosMissingThumbnail()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.NoError(t, storage.Delete(owner, pending[0].StoredFileName))

	thumbs.fail = false
	generated, failed, err := svc.BackfillThumbnails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, generated)
	assert.Equal(t, 1, failed)
}

func TestBackfillWithoutThumbnailerFails(t *testing.T) {
	svc, _, _ := newTestMediaService(t, nil, nil, 0)
	_, _, err := svc.BackfillThumbnails(context.Background())
	assert.Error(t, err)
}
