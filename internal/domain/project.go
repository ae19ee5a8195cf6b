package domain

import (
	"time"

	"carbonpay-backend/internal/ledger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is one carbon credit offering with its own mints and its own
// independent accounting, separate from other projects. Addressed by
// (owner, credit mint), enforced by the composite unique index.
type Project struct {
	ProjectID         uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey" json:"project_id"`
	Owner             uuid.UUID `gorm:"column:owner;type:uuid;not null;uniqueIndex:idx_project_owner_credit_mint" json:"owner"`
	CreditMintID      uuid.UUID `gorm:"column:credit_mint_id;type:uuid;not null;uniqueIndex:idx_project_owner_credit_mint" json:"credit_mint_id"`
	CertificateMintID uuid.UUID `gorm:"column:certificate_mint_id;type:uuid;not null" json:"certificate_mint_id"`
	IsActive          bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Amount            uint64    `gorm:"column:amount;not null" json:"amount"`
	RemainingAmount   uint64    `gorm:"column:remaining_amount;not null" json:"remaining_amount"`
	OffsetAmount      uint64    `gorm:"column:offset_amount;not null;default:0" json:"offset_amount"`
	PricePerUnit      uint64    `gorm:"column:price_per_unit;not null" json:"price_per_unit"`
	FeeRate           uint64    `gorm:"column:fee_rate;not null" json:"fee_rate"`
	FeeRecipient      uuid.UUID `gorm:"column:fee_recipient;type:uuid;not null" json:"fee_recipient"`
	CreatedAt         time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Project) TableName() string {
	return "Projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ProjectID == uuid.Nil {
		p.ProjectID = uuid.New()
	}
	return nil
}

// RecordPurchase decrements the unsold supply for a purchase.
func (p *Project) RecordPurchase(purchaseAmount uint64) error {
	remaining, err := ledger.CheckedSub(p.RemainingAmount, purchaseAmount)
	if err != nil {
		return err
	}
	p.RemainingAmount = remaining
	return nil
}

// RecordOffset increments the retired counter for this project.
func (p *Project) RecordOffset(offsetAmount uint64) error {
	offset, err := ledger.CheckedAdd(p.OffsetAmount, offsetAmount)
	if err != nil {
		return err
	}
	p.OffsetAmount = offset
	return nil
}
