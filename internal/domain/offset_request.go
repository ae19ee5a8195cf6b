package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus of an offset request.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// MaxRequestIDLength bounds the caller-supplied request id.
const MaxRequestIDLength = 64

// OffsetRequest is the audit record of one retirement attempt against a
// Purchase. Written once; never mutated or deleted. The (requester, purchase,
// request_id) unique index makes the caller-supplied request id idempotent.
type OffsetRequest struct {
	OffsetRequestID uuid.UUID  `gorm:"column:offset_request_id;type:uuid;primaryKey" json:"offset_request_id"`
	Requester       uuid.UUID  `gorm:"column:requester;type:uuid;not null;uniqueIndex:idx_offset_requester_purchase_rid" json:"requester"`
	PurchaseID      uuid.UUID  `gorm:"column:purchase_id;type:uuid;not null;uniqueIndex:idx_offset_requester_purchase_rid" json:"purchase_id"`
	RequestID       string     `gorm:"column:request_id;type:varchar(64);not null;uniqueIndex:idx_offset_requester_purchase_rid" json:"request_id"`
	ProjectID       uuid.UUID  `gorm:"column:project_id;type:uuid;not null" json:"project_id"`
	Amount          uint64     `gorm:"column:amount;not null" json:"amount"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	RequestedAt     time.Time  `gorm:"column:requested_at;not null" json:"requested_at"`
	ProcessedAt     *time.Time `gorm:"column:processed_at" json:"processed_at"`
	Processor       *uuid.UUID `gorm:"column:processor;type:uuid" json:"processor"`
	CreatedAt       time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (OffsetRequest) TableName() string {
	return "OffsetRequests"
}

func (o *OffsetRequest) BeforeCreate(tx *gorm.DB) error {
	if o.OffsetRequestID == uuid.Nil {
		o.OffsetRequestID = uuid.New()
	}
	return nil
}
