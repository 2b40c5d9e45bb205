package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"barter/internal/domain"
	applog "barter/internal/log"
	"barter/internal/services"
	"barter/internal/validate"
)

type AdHandler struct {
	Ads *services.AdService
}

func adFilter(c *fiber.Ctx) (domain.AdFilter, error) {
	page, ok := validate.Page(c.Query("page"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "page"})
		return domain.AdFilter{}, fiber.NewError(fiber.StatusNotFound, "invalid page")
	}
	f := domain.AdFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Condition: strings.TrimSpace(c.Query("condition")),
		Page:      page,
	}
	if raw := c.Query("search"); strings.TrimSpace(raw) != "" {
		q, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "search"})
			return domain.AdFilter{}, domain.NewValidationError("search", "invalid search term")
		}
		f.Search = q
	}
	return f, nil
}

// GET /api/ads
func (h *AdHandler) List(c *fiber.Ctx) error {
	f, err := adFilter(c)
	if err != nil {
		return err
	}
	page, err := h.Ads.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GET /
func (h *AdHandler) Index(c *fiber.Ctx) error {
	f, err := adFilter(c)
	if err != nil {
		return err
	}
	page, err := h.Ads.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return render(c, "index", fiber.Map{"Page": page, "Filter": f})
}

// POST /api/ads
func (h *AdHandler) Create(c *fiber.Ctx) error {
	var in domain.AdInput
	if err := c.BodyParser(&in); err != nil {
		return domain.NewValidationError("", "malformed request body")
	}
	ad, err := h.Ads.Create(c.UserContext(), principal(c), in)
	if err != nil {
		return err
	}
	applog.Audit(c, "ads.create", map[string]any{"ad_id": ad.ID})
	return c.Status(fiber.StatusCreated).JSON(ad)
}

// GET /api/ads/:id
func (h *AdHandler) Detail(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ad, err := h.Ads.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ad)
}

// PATCH /api/ads/:id. Read-only fields in the body (ad_id, user,
// created_at) are ignored.
func (h *AdHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch domain.AdPatch
	if err := c.BodyParser(&patch); err != nil {
		return domain.NewValidationError("", "malformed request body")
	}
	ad, err := h.Ads.Update(c.UserContext(), principal(c), id, patch)
	if err != nil {
		return err
	}
	applog.Audit(c, "ads.update", map[string]any{"ad_id": id})
	return c.JSON(ad)
}

// DELETE /api/ads/:id
func (h *AdHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Ads.Delete(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	applog.Audit(c, "ads.delete", map[string]any{"ad_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
