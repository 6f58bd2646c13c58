package service

import (
	"context"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/storage"
)

// SiteSettingsUpdate carries text fields and replacement images. Nil means unchanged.
type SiteSettingsUpdate struct {
	TopText          *string
	BottomBannerLink *string
	Logo             *Upload
	Banner           *Upload
	BottomBanner     *Upload
}

// SiteSettingsService reads and writes the singleton settings.
type SiteSettingsService struct {
	settings repository.SiteSettingsRepository
	storage  storage.Storage
}

// NewSiteSettingsService constructs the service.
func NewSiteSettingsService(settings repository.SiteSettingsRepository, store storage.Storage) *SiteSettingsService {
	return &SiteSettingsService{settings: settings, storage: store}
}

func (s *SiteSettingsService) Get(ctx context.Context) (*domain.SiteSettings, error) {
	return s.settings.Get(ctx)
}

// Update stores uploaded images, copies text fields and upserts the row.
func (s *SiteSettingsService) Update(ctx context.Context, input SiteSettingsUpdate) (*domain.SiteSettings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if input.TopText != nil {
		current.TopText = input.TopText
	}
	if input.BottomBannerLink != nil {
		current.BottomBannerLink = input.BottomBannerLink
	}
	for _, f := range []struct {
		upload *Upload
		target **string
	}{
		{input.Logo, &current.LogoURL},
		{input.Banner, &current.BannerURL},
		{input.BottomBanner, &current.BottomBannerURL},
	} {
		if f.upload == nil {
			continue
		}
		stored, err := saveUpload(ctx, s.storage, f.upload)
		if err != nil {
			return nil, err
		}
		url := stored.URL
		*f.target = &url
	}
	if err := s.settings.Upsert(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
