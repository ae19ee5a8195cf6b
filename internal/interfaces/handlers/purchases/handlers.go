package purchases

import (
	"errors"

	purchsvc "carbonpay-backend/internal/application/purchases"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *purchsvc.Service
}

// PurchaseRequest body for purchase-credits.
type PurchaseRequest struct {
	ProjectID string `json:"project_id"`
	Amount    uint64 `json:"amount"`
}

// PurchaseCredits POST /api/v1/purchases/purchase-credits — buy credits from a
// project's pooled vault; the session user is the buyer and pays from their wallet.
func (h *Handlers) PurchaseCredits(c *fiber.Ctx) error {
	buyer, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for project_id", fiber.StatusBadRequest, nil)
	}

	purchase, err := h.Service.PurchaseCredits(c.Context(), buyer, projectID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, ledger.ErrInvalidProject):
			return response.NotFound(c, err.Error())
		case errors.Is(err, ledger.ErrProjectInactive),
			errors.Is(err, ledger.ErrInsufficientTokens),
			errors.Is(err, ledger.ErrInsufficientFunds),
			errors.Is(err, ledger.ErrInvalidCarbonPayAuthority),
			errors.Is(err, ledger.ErrArithmeticOverflow):
			return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Credits purchased", fiber.Map{"purchase": purchase}, nil)
}

// ViewPurchases GET /api/v1/purchases/view-purchases — the session user's purchases.
func (h *Handlers) ViewPurchases(c *fiber.Ctx) error {
	buyer, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	purchases, err := h.Service.ViewBuyerPurchases(c.Context(), buyer)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Purchases retrieved", fiber.Map{"purchases": purchases}, nil)
}
