package offsets

import (
	"errors"

	offsvc "carbonpay-backend/internal/application/offsets"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *offsvc.Service
}

// RequestOffsetRequest body for request-offset.
type RequestOffsetRequest struct {
	PurchaseID string `json:"purchase_id"`
	Amount     uint64 `json:"amount"`
	RequestID  string `json:"request_id"`
}

// RequestOffset POST /api/v1/offsets/request-offset — retire purchased credits.
func (h *Handlers) RequestOffset(c *fiber.Ctx) error {
	requester, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req RequestOffsetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	purchaseID, err := uuid.Parse(req.PurchaseID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for purchase_id", fiber.StatusBadRequest, nil)
	}

	request, err := h.Service.RequestOffset(c.Context(), requester, purchaseID, req.Amount, req.RequestID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidOffsetRequest):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, offsvc.ErrPurchaseNotFound), errors.Is(err, ledger.ErrInvalidProject):
			return response.NotFound(c, err.Error())
		case errors.Is(err, ledger.ErrNotPurchaseOwner):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		case errors.Is(err, ledger.ErrOffsetRequestExists):
			return response.Conflict(c, err.Error())
		case errors.Is(err, ledger.ErrInsufficientRemainingTokens),
			errors.Is(err, ledger.ErrInsufficientFungibleTokens),
			errors.Is(err, ledger.ErrInvalidCertificateAccount),
			errors.Is(err, ledger.ErrArithmeticOverflow):
			return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Offset request processed", fiber.Map{"offset_request": request}, nil)
}

// ViewRequests GET /api/v1/offsets/view-requests — the session user's offset requests.
func (h *Handlers) ViewRequests(c *fiber.Ctx) error {
	requester, ok := middleware.CallerID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	requests, err := h.Service.ViewRequesterOffsets(c.Context(), requester)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Offset requests retrieved", fiber.Map{"offset_requests": requests}, nil)
}

// ViewRequest GET /api/v1/offsets/view-request/:offset_request_id
func (h *Handlers) ViewRequest(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("offset_request_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for offset_request_id", fiber.StatusBadRequest, nil)
	}
	request, err := h.Service.ViewOffsetRequest(c.Context(), id)
	if err != nil {
		if errors.Is(err, offsvc.ErrOffsetRequestNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Offset request retrieved", fiber.Map{"offset_request": request}, nil)
}
