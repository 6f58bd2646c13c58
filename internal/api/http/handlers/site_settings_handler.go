package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/service"
)

// SiteSettingsHandler serves the branding settings.
type SiteSettingsHandler struct {
	settings *service.SiteSettingsService
}

// NewSiteSettingsHandler constructs handler.
func NewSiteSettingsHandler(settingsService *service.SiteSettingsService) *SiteSettingsHandler {
	return &SiteSettingsHandler{settings: settingsService}
}

// Get GET /api/site-settings. Public.
func (h *SiteSettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, settings)
}

// Update PUT /api/site-settings (multipart: logo, banner, bottomBanner, topText, bottomBannerLink).
func (h *SiteSettingsHandler) Update(c *fiber.Ctx) error {
	input := service.SiteSettingsUpdate{
		TopText:          optionalForm(c, "topText"),
		BottomBannerLink: optionalForm(c, "bottomBannerLink"),
	}
	for field, target := range map[string]**service.Upload{
		"logo":         &input.Logo,
		"banner":       &input.Banner,
		"bottomBanner": &input.BottomBanner,
	} {
		up, closeFn, err := formUpload(c, field)
		if err != nil {
			return err
		}
		defer closeFn()
		*target = up
	}
	settings, err := h.settings.Update(c.UserContext(), input)
	if err != nil {
		return err
	}
	return respond(c, settings)
}
