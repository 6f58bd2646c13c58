package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sales-service/internal/domain"
)

const siteSettingsID = 1

// SiteSettingsRepository reads and writes the singleton settings row.
type SiteSettingsRepository interface {
	Get(ctx context.Context) (*domain.SiteSettings, error)
	Upsert(ctx context.Context, settings *domain.SiteSettings) error
}

type siteSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSiteSettingsRepository constructs repository.
func NewSiteSettingsRepository(pool *pgxpool.Pool) SiteSettingsRepository {
	return &siteSettingsRepository{pool: pool}
}

// Get returns empty settings when the row has never been written.
func (r *siteSettingsRepository) Get(ctx context.Context) (*domain.SiteSettings, error) {
	const query = `
        SELECT logo_url, banner_url, top_text, bottom_banner_url, bottom_banner_link, updated_at
        FROM site_settings WHERE id=$1`
	var s domain.SiteSettings
	err := r.pool.QueryRow(ctx, query, siteSettingsID).Scan(
		&s.LogoURL,
		&s.BannerURL,
		&s.TopText,
		&s.BottomBannerURL,
		&s.BottomBannerLink,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.SiteSettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *siteSettingsRepository) Upsert(ctx context.Context, s *domain.SiteSettings) error {
	const query = `
        INSERT INTO site_settings (id, logo_url, banner_url, top_text, bottom_banner_url, bottom_banner_link, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW())
        ON CONFLICT (id) DO UPDATE SET
            logo_url=EXCLUDED.logo_url,
            banner_url=EXCLUDED.banner_url,
            top_text=EXCLUDED.top_text,
            bottom_banner_url=EXCLUDED.bottom_banner_url,
            bottom_banner_link=EXCLUDED.bottom_banner_link,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		siteSettingsID,
		s.LogoURL,
		s.BannerURL,
		s.TopText,
		s.BottomBannerURL,
		s.BottomBannerLink,
	).Scan(&s.UpdatedAt)
}
