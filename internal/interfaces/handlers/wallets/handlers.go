package wallets

import (
	"errors"

	walletsvc "carbonpay-backend/internal/application/wallets"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *walletsvc.Service
}

// DepositRequest body for deposit.
type DepositRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// Deposit POST /api/v1/wallets/deposit — registry authority funds a wallet.
func (h *Handlers) Deposit(c *fiber.Ctx) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	to, err := uuid.Parse(req.To)
	if err != nil {
		return response.Error(c, "Invalid UUID format for to", fiber.StatusBadRequest, nil)
	}

	wallet, err := h.Service.Deposit(c.Context(), caller, to, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, ledger.ErrRegistryNotInitialized):
			return response.NotFound(c, err.Error())
		case errors.Is(err, ledger.ErrUnauthorizedAdmin):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Deposit successful", fiber.Map{"wallet": wallet}, nil)
}

// Balance GET /api/v1/wallets/balance — the session user's wallet balance.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	balance, err := h.Service.BalanceOf(c.Context(), caller)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Balance retrieved", fiber.Map{"balance": balance}, nil)
}
