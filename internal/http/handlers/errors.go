package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"barter/internal/domain"
	applog "barter/internal/log"
	"barter/internal/metrics"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// classify maps an error onto an HTTP status, a metrics kind and the body
// shown to the client. Unknown errors never leak their text.
func classify(err error) (int, string, errorBody) {
	var ve *domain.ValidationError
	var pe *domain.PermissionError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, "validation", errorBody{Error: "invalid input", Fields: ve.Fields}
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "invalid_transition", errorBody{Error: domain.ErrInvalidTransition.Error()}
	case errors.As(err, &pe):
		return fiber.StatusForbidden, "permission", errorBody{Error: pe.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "not_found", errorBody{Error: "not found"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "unauthenticated", errorBody{Error: domain.ErrUnauthenticated.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusBadRequest, "conflict", errorBody{Error: domain.ErrConflict.Error()}
	case errors.Is(err, domain.ErrBadCredentials):
		return fiber.StatusBadRequest, "bad_credentials", errorBody{Error: domain.ErrBadCredentials.Error()}
	case errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError:
		return fe.Code, "http", errorBody{Error: fe.Message}
	}
	return fiber.StatusInternalServerError, "internal", errorBody{Error: "Something went wrong. Please try again."}
}

// ErrorHandler is the app-wide error surface: JSON for /api routes, the
// friendly error page elsewhere.
func ErrorHandler(m *metrics.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, kind, body := classify(err)
		if m != nil {
			m.APIErrors.WithLabelValues(kind).Inc()
		}
		c.Status(status)
		switch {
		case status >= fiber.StatusInternalServerError:
			applog.Error(c, "server.error", err, nil)
		case status == fiber.StatusForbidden || status == fiber.StatusUnauthorized:
			applog.Security(c, "access.denied", map[string]any{"reason": err.Error()})
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.JSON(body)
		}
		if rerr := c.Render("error", fiber.Map{"Message": body.Error}); rerr != nil {
			return c.SendString(body.Error)
		}
		return nil
	}
}
