package services

import (
	"errors"
	"net/url"

	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/models"
	"gorm.io/gorm"
)

const describerEndpointKey = "describer_endpoint"

// SettingsService is the explicit store for runtime-editable settings,
// currently the description-improver endpoint. The value lives in the
// database, not in ambient process state, and is read on every use.
type SettingsService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewSettingsService(db *gorm.DB, cfg *config.Config) *SettingsService {
	return &SettingsService{db: db, cfg: cfg}
}

// DescriberEndpoint returns the current endpoint, seeding the stored value
// from configuration on first read. An empty value disables the describer.
func (s *SettingsService) DescriberEndpoint() (string, error) {
	var setting models.SystemSetting
	err := s.db.Where("key = ?", describerEndpointKey).First(&setting).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setting = models.SystemSetting{
				Key:   describerEndpointKey,
				Value: s.cfg.DescriberEndpoint,
			}
			if err := s.db.Create(&setting).Error; err != nil {
				return "", err
			}
			return s.cfg.DescriberEndpoint, nil
		}
		return "", err
	}

	return setting.Value, nil
}

// SetDescriberEndpoint updates the stored endpoint. Empty disables the
// describer; anything else must be an absolute http(s) URL.
func (s *SettingsService) SetDescriberEndpoint(endpoint string) error {
	if endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Field: "endpoint", Message: "must be an absolute http(s) URL or empty"}
		}
	}

	var setting models.SystemSetting
	err := s.db.Where("key = ?", describerEndpointKey).First(&setting).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setting = models.SystemSetting{
				Key:   describerEndpointKey,
				Value: endpoint,
			}
			return s.db.Create(&setting).Error
		}
		return err
	}

	return s.db.Model(&setting).Update("value", endpoint).Error
}
