package projects

import (
	"context"
	"encoding/json"
	"errors"

	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/tokenledger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("Project not found")

type Service struct {
	DB     *gorm.DB
	Tokens *tokenledger.Store
}

type InitializeInput struct {
	Amount       uint64
	PricePerUnit uint64
	FeeRate      uint64
	Name         string
	Symbol       string
	URI          string
}

const maxFeeRateBps = 10_000

// Initialize lists a new carbon credit project: creates its credit and
// certificate mints, mints the full supply into the registry-held pooled
// vault, mints one ownership certificate to the owner, hands the credit mint
// authority to the registry and registers the totals globally.
func (s *Service) Initialize(ctx context.Context, owner uuid.UUID, in InitializeInput) (*domain.Project, error) {
	if in.Amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}
	if in.FeeRate > maxFeeRateBps {
		return nil, ledger.ErrInvalidFeeRate
	}

	var project *domain.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg domain.Registry
		if err := tx.Where("tag = ?", domain.RegistryTag).First(&reg).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrRegistryNotInitialized
			}
			return err
		}

		lg := s.Tokens.Bind(tx)

		creditMint, err := lg.CreateMint(ctx, owner)
		if err != nil {
			return err
		}
		certMint, err := lg.CreateMint(ctx, owner)
		if err != nil {
			return err
		}

		// full supply into the pooled vault under the registry's custody
		if err := lg.MintTo(ctx, creditMint, reg.RegistryID, in.Amount, owner); err != nil {
			return err
		}
		// one ownership certificate for the lister
		if err := lg.MintTo(ctx, certMint, owner, 1, owner); err != nil {
			return err
		}
		if err := lg.IssueDescriptor(ctx, certMint, tokenledger.Metadata{
			Name:   in.Name,
			Symbol: in.Symbol,
			URI:    in.URI,
			Data:   map[string]interface{}{"amount": in.Amount, "fee_rate": in.FeeRate},
		}); err != nil {
			return err
		}
		// from here on only registry-authorized transitions move pooled credits
		if err := lg.SetAuthority(ctx, creditMint, reg.RegistryID, owner); err != nil {
			return err
		}

		if err := reg.AddProjectCredits(in.Amount); err != nil {
			return err
		}
		if err := tx.Save(&reg).Error; err != nil {
			return err
		}

		p := domain.Project{
			Owner:             owner,
			CreditMintID:      creditMint,
			CertificateMintID: certMint,
			IsActive:          true,
			Amount:            in.Amount,
			RemainingAmount:   in.Amount,
			OffsetAmount:      0,
			PricePerUnit:      in.PricePerUnit,
			FeeRate:           in.FeeRate,
			FeeRecipient:      reg.RegistryID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		project = &p

		eventData, _ := json.Marshal(map[string]interface{}{
			"amount":         in.Amount,
			"price_per_unit": in.PricePerUnit,
			"fee_rate":       in.FeeRate,
			"credit_mint":    creditMint.String(),
		})
		return tx.Create(&domain.LedgerEvent{
			EventType: domain.EventProjectCreated,
			ActorID:   &owner,
			EntityID:  &p.ProjectID,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
	return project, err
}

// Deactivate marks a project inactive; only the owner or the platform
// authority may do it. Projects are never deleted.
func (s *Service) Deactivate(ctx context.Context, caller, projectID uuid.UUID) (*domain.Project, error) {
	var project *domain.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.Where("project_id = ?", projectID).First(&p).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrProjectNotFound
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
		if caller != p.Owner && caller != reg.Authority {
			return ledger.ErrUnauthorized
		}
		if !p.IsActive {
			return ledger.ErrProjectInactive
		}

		p.IsActive = false
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		project = &p

		eventData, _ := json.Marshal(map[string]interface{}{
			"remaining_amount": p.RemainingAmount,
		})
		return tx.Create(&domain.LedgerEvent{
			EventType: domain.EventProjectDeactivated,
			ActorID:   &caller,
			EntityID:  &p.ProjectID,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
	return project, err
}

// GetAll lists projects, newest first. Active-only when activeOnly is set.
func (s *Service) GetAll(ctx context.Context, activeOnly bool) ([]domain.Project, error) {
	q := s.DB.WithContext(ctx).Order(`"createdAt" DESC`)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var projects []domain.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a single project.
func (s *Service) GetByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	if err := s.DB.WithContext(ctx).Where("project_id = ?", projectID).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}
