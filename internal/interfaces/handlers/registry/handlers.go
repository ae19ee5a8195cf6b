package registry

import (
	"errors"

	regsvc "carbonpay-backend/internal/application/registry"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *regsvc.Service
}

// Initialize POST /api/v1/registry/initialize — the caller becomes the platform authority.
func (h *Handlers) Initialize(c *fiber.Ctx) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reg, err := h.Service.Initialize(c.Context(), caller)
	if err != nil {
		if errors.Is(err, ledger.ErrRegistryExists) {
			return response.Conflict(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Registry initialized", fiber.Map{"registry": reg}, nil)
}

// Get GET /api/v1/registry — platform-wide totals.
func (h *Handlers) Get(c *fiber.Ctx) error {
	reg, err := h.Service.Get(c.Context())
	if err != nil {
		if errors.Is(err, ledger.ErrRegistryNotInitialized) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Registry retrieved", fiber.Map{"registry": reg}, nil)
}
