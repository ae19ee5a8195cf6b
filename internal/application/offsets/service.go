package offsets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/tokenledger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPurchaseNotFound      = errors.New("Purchase not found")
	ErrOffsetRequestNotFound = errors.New("Offset request not found")
)

type Service struct {
	DB     *gorm.DB
	Tokens *tokenledger.Store
}

// RequestOffset retires credits against a purchase. One transaction: the
// purchase certificate and the retired credits are burned, a replacement
// certificate is minted when a balance remains, and the purchase, project
// and registry counters move together with the audit record. The request is
// executed immediately; the stored status is terminal.
func (s *Service) RequestOffset(ctx context.Context, requester, purchaseID uuid.UUID, amount uint64, requestID string) (*domain.OffsetRequest, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if requestID == "" || len(requestID) > domain.MaxRequestIDLength {
		return nil, ledger.ErrInvalidOffsetRequest
	}

	var request *domain.OffsetRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase domain.Purchase
		if err := tx.Where("purchase_id = ?", purchaseID).First(&purchase).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPurchaseNotFound
			}
			return err
		}
		if purchase.Buyer != requester {
			return ledger.ErrNotPurchaseOwner
		}
		if amount > purchase.RemainingAmount {
			return ledger.ErrInsufficientRemainingTokens
		}

		// request_id is an idempotency key within (requester, purchase):
		// a duplicate fails, it never overwrites the first record
		var existing domain.OffsetRequest
		err := tx.Where("requester = ? AND purchase_id = ? AND request_id = ?", requester, purchaseID, requestID).
			First(&existing).Error
		if err == nil {
			return ledger.ErrOffsetRequestExists
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		var project domain.Project
		if err := tx.Where("project_id = ?", purchase.ProjectID).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrInvalidProject
			}
			return err
		}
		var reg domain.Registry
		if err := tx.Where("tag = ?", domain.RegistryTag).First(&reg).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrRegistryNotInitialized
			}
			return err
		}

		lg := s.Tokens.Bind(tx)

		certBalance, err := lg.Balance(ctx, purchase.CertificateMintID, requester)
		if err != nil {
			return err
		}
		if certBalance == 0 {
			return ledger.ErrInvalidCertificateAccount
		}
		creditBalance, err := lg.Balance(ctx, project.CreditMintID, requester)
		if err != nil {
			return err
		}
		if creditBalance < amount {
			return ledger.ErrInsufficientFungibleTokens
		}

		newRemaining, err := ledger.CheckedSub(purchase.RemainingAmount, amount)
		if err != nil {
			return err
		}

		if err := lg.Burn(ctx, purchase.CertificateMintID, requester, 1, requester); err != nil {
			return err
		}
		if err := lg.Burn(ctx, project.CreditMintID, requester, amount, requester); err != nil {
			return err
		}

		if newRemaining > 0 {
			newCert, err := lg.CreateMint(ctx, requester)
			if err != nil {
				return err
			}
			if err := lg.MintTo(ctx, newCert, requester, 1, requester); err != nil {
				return err
			}
			if err := lg.IssueDescriptor(ctx, newCert, tokenledger.Metadata{
				Name:   fmt.Sprintf("Carbon Credits - Remaining: %d", newRemaining),
				Symbol: "CRBN",
				URI:    fmt.Sprintf("https://carbonpay.earth/purchases/%s/remaining", newCert),
				Data:   map[string]interface{}{"remaining": newRemaining},
			}); err != nil {
				return err
			}
			// the purchase is addressed by its live certificate from now on
			purchase.CertificateMintID = newCert
		}

		purchase.RemainingAmount = newRemaining
		if err := tx.Save(&purchase).Error; err != nil {
			return err
		}
		if err := reg.RecordOffset(amount); err != nil {
			return err
		}
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}
		if err := project.RecordOffset(amount); err != nil {
			return err
		}
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		r := domain.OffsetRequest{
			Requester:   requester,
			PurchaseID:  purchase.PurchaseID,
			RequestID:   requestID,
			ProjectID:   project.ProjectID,
			Amount:      amount,
			Status:      domain.RequestStatusApproved,
			RequestedAt: now,
			ProcessedAt: &now,
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		request = &r

		eventData, _ := json.Marshal(map[string]interface{}{
			"amount":     amount,
			"remaining":  newRemaining,
			"request_id": requestID,
			"project":    project.ProjectID.String(),
		})
		return tx.Create(&domain.LedgerEvent{
			EventType: domain.EventCreditsOffset,
			ActorID:   &requester,
			EntityID:  &r.OffsetRequestID,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
	return request, err
}

// ViewRequesterOffsets lists the caller's offset requests, newest first.
func (s *Service) ViewRequesterOffsets(ctx context.Context, requester uuid.UUID) ([]domain.OffsetRequest, error) {
	var out []domain.OffsetRequest
	if err := s.DB.WithContext(ctx).
		Where("requester = ?", requester).
		Order(`"createdAt" DESC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ViewOffsetRequest returns one offset request by id.
func (s *Service) ViewOffsetRequest(ctx context.Context, id uuid.UUID) (*domain.OffsetRequest, error) {
	var r domain.OffsetRequest
	if err := s.DB.WithContext(ctx).Where("offset_request_id = ?", id).First(&r).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOffsetRequestNotFound
		}
		return nil, err
	}
	return &r, nil
}
