package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger event types, one per transition.
const (
	EventRegistryInitialized = "REGISTRY_INITIALIZED"
	EventProjectCreated      = "PROJECT_CREATED"
	EventProjectDeactivated  = "PROJECT_DEACTIVATED"
	EventCreditsPurchased    = "CREDITS_PURCHASED"
	EventCreditsOffset       = "CREDITS_OFFSET"
	EventWalletDeposit       = "WALLET_DEPOSIT"
)

// LedgerEvent is an append-only audit row written inside the same
// transaction as the transition it describes.
type LedgerEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	EventType string         `gorm:"column:event_type;type:varchar(32);not null" json:"event_type"`
	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	EntityID  *uuid.UUID     `gorm:"column:entity_id;type:uuid" json:"entity_id"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (LedgerEvent) TableName() string {
	return "LedgerEvents"
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
