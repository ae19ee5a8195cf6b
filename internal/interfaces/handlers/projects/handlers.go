package projects

import (
	"errors"

	projsvc "carbonpay-backend/internal/application/projects"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *projsvc.Service
}

// InitializeRequest body for create-project.
type InitializeRequest struct {
	Amount       uint64 `json:"amount"`
	PricePerUnit uint64 `json:"price_per_unit"`
	FeeRate      uint64 `json:"fee_rate"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	URI          string `json:"uri"`
}

// Initialize POST /api/v1/projects/initialize-project — lists a new carbon project.
func (h *Handlers) Initialize(c *fiber.Ctx) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req InitializeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	project, err := h.Service.Initialize(c.Context(), caller, projsvc.InitializeInput{
		Amount:       req.Amount,
		PricePerUnit: req.PricePerUnit,
		FeeRate:      req.FeeRate,
		Name:         req.Name,
		Symbol:       req.Symbol,
		URI:          req.URI,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidFeeRate):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, ledger.ErrRegistryNotInitialized):
			return response.NotFound(c, err.Error())
		case errors.Is(err, ledger.ErrArithmeticOverflow):
			return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Project created", fiber.Map{"project": project}, nil)
}

// GetAll GET /api/v1/projects/get-all-projects — optionally only active ones (?active=true).
func (h *Handlers) GetAll(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	projects, err := h.Service.GetAll(c.Context(), activeOnly)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Projects retrieved", fiber.Map{"projects": projects}, nil)
}

// GetByID GET /api/v1/projects/get-project/:project_id
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for project_id", fiber.StatusBadRequest, nil)
	}
	project, err := h.Service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, projsvc.ErrProjectNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Project retrieved", fiber.Map{"project": project}, nil)
}

// Deactivate PATCH /api/v1/projects/deactivate-project/:project_id — owner or
// registry authority takes the project off the market.
func (h *Handlers) Deactivate(c *fiber.Ctx) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for project_id", fiber.StatusBadRequest, nil)
	}

	project, err := h.Service.Deactivate(c.Context(), caller, id)
	if err != nil {
		switch {
		case errors.Is(err, projsvc.ErrProjectNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, ledger.ErrUnauthorized):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		case errors.Is(err, ledger.ErrProjectInactive):
			return response.Conflict(c, err.Error())
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Project deactivated", fiber.Map{"project": project}, nil)
}
