package purchases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carbonpay-backend/internal/application/wallets"
	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/tokenledger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const feeRateDenominator = 10_000

type Service struct {
	DB     *gorm.DB
	Tokens *tokenledger.Store
}

// PurchaseCredits buys credits from a project's pooled vault. One
// transaction: buyer pays proceeds to the owner and the fee to the registry,
// gets one purchase certificate plus the credits, and the purchase record
// and project/registry counters are written together.
func (s *Service) PurchaseCredits(ctx context.Context, buyer, projectID uuid.UUID, amount uint64) (*domain.Purchase, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}

	var purchase *domain.Purchase
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := tx.Where("project_id = ?", projectID).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrInvalidProject
			}
			return err
		}
		if !project.IsActive {
			return ledger.ErrProjectInactive
		}
		if amount > project.RemainingAmount {
			return ledger.ErrInsufficientTokens
		}

		var reg domain.Registry
		if err := tx.Where("tag = ?", domain.RegistryTag).First(&reg).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrRegistryNotInitialized
			}
			return err
		}
		if project.FeeRecipient != reg.RegistryID {
			return ledger.ErrInvalidCarbonPayAuthority
		}

		// payment split: fee floors toward zero, owner gets the rest
		total, err := ledger.CheckedMul(amount, project.PricePerUnit)
		if err != nil {
			return err
		}
		feeGross, err := ledger.CheckedMul(total, project.FeeRate)
		if err != nil {
			return err
		}
		fee := feeGross / feeRateDenominator
		proceeds, err := ledger.CheckedSub(total, fee)
		if err != nil {
			return err
		}

		if err := wallets.Transfer(tx, buyer, project.Owner, proceeds); err != nil {
			return err
		}
		if err := wallets.Transfer(tx, buyer, reg.RegistryID, fee); err != nil {
			return err
		}

		lg := s.Tokens.Bind(tx)

		certMint, err := lg.CreateMint(ctx, buyer)
		if err != nil {
			return err
		}
		if err := lg.MintTo(ctx, certMint, buyer, 1, buyer); err != nil {
			return err
		}
		if err := lg.IssueDescriptor(ctx, certMint, tokenledger.Metadata{
			Name:   fmt.Sprintf("Carbon Credits Purchase - %d", amount),
			Symbol: "CRBN",
			URI:    fmt.Sprintf("https://carbonpay.earth/purchases/%s", certMint),
			Data:   map[string]interface{}{"amount": amount},
		}); err != nil {
			return err
		}

		// pooled vault is held by the registry; the registry authorizes the move
		if err := lg.Transfer(ctx, project.CreditMintID, reg.RegistryID, buyer, amount, reg.RegistryID); err != nil {
			return err
		}

		p := domain.Purchase{
			Buyer:             buyer,
			ProjectID:         project.ProjectID,
			CertificateMintID: certMint,
			Amount:            amount,
			RemainingAmount:   amount,
			PurchasedAt:       time.Now().UTC(),
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		purchase = &p

		if err := project.RecordPurchase(amount); err != nil {
			return err
		}
		if err := tx.Save(&project).Error; err != nil {
			return err
		}
		if err := reg.AddFees(fee); err != nil {
			return err
		}
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}

		eventData, _ := json.Marshal(map[string]interface{}{
			"amount":   amount,
			"total":    total,
			"fee":      fee,
			"proceeds": proceeds,
			"project":  project.ProjectID.String(),
		})
		return tx.Create(&domain.LedgerEvent{
			EventType: domain.EventCreditsPurchased,
			ActorID:   &buyer,
			EntityID:  &p.PurchaseID,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
	return purchase, err
}

// ViewBuyerPurchases lists the caller's purchases, newest first.
func (s *Service) ViewBuyerPurchases(ctx context.Context, buyer uuid.UUID) ([]domain.Purchase, error) {
	var out []domain.Purchase
	if err := s.DB.WithContext(ctx).
		Where("buyer = ?", buyer).
		Order(`"createdAt" DESC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
