package domain

import (
	"time"

	"carbonpay-backend/internal/ledger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registry tracks the global metrics of all carbon credits across all
// projects on the platform. A single row exists; the unique tag column
// enforces one-time creation at insert.
type Registry struct {
	RegistryID      uuid.UUID `gorm:"column:registry_id;type:uuid;primaryKey" json:"registry_id"`
	Tag             string    `gorm:"column:tag;uniqueIndex;not null" json:"-"`
	Authority       uuid.UUID `gorm:"column:authority;type:uuid;not null" json:"authority"`
	TotalCredits    uint64    `gorm:"column:total_credits;not null;default:0" json:"total_credits"`
	ActiveCredits   uint64    `gorm:"column:active_credits;not null;default:0" json:"active_credits"`
	OffsetCredits   uint64    `gorm:"column:offset_credits;not null;default:0" json:"offset_credits"`
	ProjectsCount   uint64    `gorm:"column:projects_count;not null;default:0" json:"projects_count"`
	TotalFeesEarned uint64    `gorm:"column:total_fees_earned;not null;default:0" json:"total_fees_earned"`
	CreatedAt       time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

// RegistryTag is the fixed tag of the singleton row.
const RegistryTag = "global"

func (Registry) TableName() string {
	return "Registries"
}

func (r *Registry) BeforeCreate(tx *gorm.DB) error {
	if r.RegistryID == uuid.Nil {
		r.RegistryID = uuid.New()
	}
	if r.Tag == "" {
		r.Tag = RegistryTag
	}
	return nil
}

// AddProjectCredits updates global counts when a new project is created.
func (r *Registry) AddProjectCredits(creditsAmount uint64) error {
	total, err := ledger.CheckedAdd(r.TotalCredits, creditsAmount)
	if err != nil {
		return err
	}
	active, err := ledger.CheckedAdd(r.ActiveCredits, creditsAmount)
	if err != nil {
		return err
	}
	count, err := ledger.CheckedAdd(r.ProjectsCount, 1)
	if err != nil {
		return err
	}
	r.TotalCredits = total
	r.ActiveCredits = active
	r.ProjectsCount = count
	return nil
}

// RecordOffset updates global counts when credits are retired. Fails with
// ErrArithmeticOverflow when offsetAmount exceeds the active supply.
func (r *Registry) RecordOffset(offsetAmount uint64) error {
	active, err := ledger.CheckedSub(r.ActiveCredits, offsetAmount)
	if err != nil {
		return err
	}
	offset, err := ledger.CheckedAdd(r.OffsetCredits, offsetAmount)
	if err != nil {
		return err
	}
	r.ActiveCredits = active
	r.OffsetCredits = offset
	return nil
}

// AddFees tracks total fees earned by the platform.
func (r *Registry) AddFees(feeAmount uint64) error {
	fees, err := ledger.CheckedAdd(r.TotalFeesEarned, feeAmount)
	if err != nil {
		return err
	}
	r.TotalFeesEarned = fees
	return nil
}
