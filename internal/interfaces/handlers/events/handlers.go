package events

import (
	eventsvc "carbonpay-backend/internal/application/events"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *eventsvc.Service
}

// ViewEvents GET /api/v1/events/view-events — the session user's audit feed.
func (h *Handlers) ViewEvents(c *fiber.Ctx) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ViewActorEvents(c.Context(), caller)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Events retrieved", fiber.Map{"events": list}, nil)
}
