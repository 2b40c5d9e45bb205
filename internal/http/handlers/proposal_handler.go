package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"barter/internal/domain"
	applog "barter/internal/log"
	"barter/internal/services"
)

type ProposalHandler struct {
	Proposals *services.ProposalService
}

// GET /api/exchange
func (h *ProposalHandler) List(c *fiber.Ctx) error {
	f := domain.ProposalFilter{Status: domain.ProposalStatus(strings.TrimSpace(c.Query("status")))}
	out, err := h.Proposals.ListForPrincipal(c.UserContext(), principal(c), f)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

type createProposal struct {
	SenderAdID   int64  `json:"ad_sender_id"`
	ReceiverAdID int64  `json:"ad_receiver_id"`
	Comment      string `json:"comment"`
}

// POST /api/exchange
func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	var in createProposal
	if err := c.BodyParser(&in); err != nil {
		return domain.NewValidationError("", "malformed request body")
	}
	verr := &domain.ValidationError{}
	if in.SenderAdID < 1 {
		verr.Add("ad_sender_id", "this field is required")
	}
	if in.ReceiverAdID < 1 {
		verr.Add("ad_receiver_id", "this field is required")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	pr, err := h.Proposals.Create(c.UserContext(), principal(c), in.SenderAdID, in.ReceiverAdID, in.Comment)
	if err != nil {
		return err
	}
	applog.Audit(c, "exchange.create", map[string]any{"exchange_id": pr.ID})
	return c.Status(fiber.StatusCreated).JSON(pr)
}

// GET /api/exchange/:id
func (h *ProposalHandler) Detail(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	pr, err := h.Proposals.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(pr)
}

// PATCH /api/exchange/:id. The whole JSON object is the requested field set;
// the coordinator decides which fields are allowed.
func (h *ProposalHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return domain.NewValidationError("", "request body must be a JSON object")
	}
	pr, err := h.Proposals.Update(c.UserContext(), principal(c), id, fields)
	if err != nil {
		return err
	}
	applog.Audit(c, "exchange.decide", map[string]any{"exchange_id": id, "status": pr.Status})
	return c.JSON(pr)
}

// DELETE /api/exchange/:id
func (h *ProposalHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Proposals.Delete(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	applog.Audit(c, "exchange.delete", map[string]any{"exchange_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
