package domain

import "time"

// SiteSettings is the singleton branding configuration.
type SiteSettings struct {
	LogoURL          *string   `json:"logoUrl,omitempty"`
	BannerURL        *string   `json:"bannerUrl,omitempty"`
	TopText          *string   `json:"topText,omitempty"`
	BottomBannerURL  *string   `json:"bottomBannerUrl,omitempty"`
	BottomBannerLink *string   `json:"bottomBannerLink,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
