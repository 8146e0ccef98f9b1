package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/internal/models"
	"github.com/mediavault/backend/internal/services"
	"github.com/mediavault/backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type downloadFixture struct {
	router  *gin.Engine
	assets  *services.AssetService
	storage *services.StorageService
	owner   uuid.UUID
	asset   *models.Asset
}

func newDownloadFixture(t *testing.T) *downloadFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{StorageRoot: t.TempDir(), JWTSecret: testSecret}
	storage := services.NewStorageService(cfg)
	assets := services.NewAssetService(db, storage)
	media := services.NewMediaService(cfg, assets, storage, nil, nil)
	handler := NewMediaHandler(media, assets, storage)

	router := gin.New()
	router.GET("/media/:id/download", middleware.OptionalAuth(cfg), handler.Download)

	owner := uuid.New()
	asset := &models.Asset{
		OwnerID:        owner,
		Title:          "clip",
		StoredFileName: uuid.New().String() + ".jpg",
		ContentType:    "image/jpeg",
		MediaKind:      models.MediaKindImage,
		Visibility:     models.AssetVisibilityPrivate,
		UploadedAt:     time.Now().UTC(),
	}
	require.NoError(t, assets.Create(asset))
	_, err = storage.SaveStream(context.Background(), owner, asset.StoredFileName, strings.NewReader("imagebytes"))
	require.NoError(t, err)

	return &downloadFixture{router: router, assets: assets, storage: storage, owner: owner, asset: asset}
}

func (f *downloadFixture) download(t *testing.T, assetID uuid.UUID, asUser *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/media/"+assetID.String()+"/download", nil)
	if asUser != nil {
		token, err := jwt.GenerateToken(asUser.String(), false, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestDownloadPrivateRequiresAuthentication(t *testing.T) {
	f := newDownloadFixture(t)

	w := f.download(t, f.asset.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDownloadPrivateRejectsNonOwner(t *testing.T) {
	f := newDownloadFixture(t)
	intruder := uuid.New()

	w := f.download(t, f.asset.ID, &intruder)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownloadPrivateServesOwner(t *testing.T) {
	f := newDownloadFixture(t)

	w := f.download(t, f.asset.ID, &f.owner)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "imagebytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), f.asset.StoredFileName)
}

func TestDownloadPublicServesAnonymous(t *testing.T) {
	f := newDownloadFixture(t)
	_, err := f.assets.Publish(f.owner, f.asset.ID)
	require.NoError(t, err)

	w := f.download(t, f.asset.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "imagebytes", w.Body.String())
}

func TestDownloadUnknownAssetIs404(t *testing.T) {
	f := newDownloadFixture(t)

	w := f.download(t, uuid.New(), &f.owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadMissingFileIs500(t *testing.T) {
	f := newDownloadFixture(t)
	require.NoError(t, f.storage.Delete(f.owner, f.asset.StoredFileName))

	w := f.download(t, f.asset.ID, &f.owner)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
