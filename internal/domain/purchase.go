package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase is one buy transaction. RemainingAmount tracks how much of it has
// not been offset yet; it only ever decreases, via offset transitions.
// Addressed by (buyer, project, certificate mint).
type Purchase struct {
	PurchaseID        uuid.UUID `gorm:"column:purchase_id;type:uuid;primaryKey" json:"purchase_id"`
	Buyer             uuid.UUID `gorm:"column:buyer;type:uuid;not null;uniqueIndex:idx_purchase_buyer_project_cert" json:"buyer"`
	ProjectID         uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_purchase_buyer_project_cert" json:"project_id"`
	CertificateMintID uuid.UUID `gorm:"column:certificate_mint_id;type:uuid;not null;uniqueIndex:idx_purchase_buyer_project_cert" json:"certificate_mint_id"`
	Amount            uint64    `gorm:"column:amount;not null" json:"amount"`
	RemainingAmount   uint64    `gorm:"column:remaining_amount;not null" json:"remaining_amount"`
	PurchasedAt       time.Time `gorm:"column:purchased_at;not null" json:"purchased_at"`
	CreatedAt         time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Purchase) TableName() string {
	return "Purchases"
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.PurchaseID == uuid.Nil {
		p.PurchaseID = uuid.New()
	}
	return nil
}
