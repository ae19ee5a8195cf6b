package events

import (
	"context"

	"carbonpay-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ViewActorEvents returns the audit feed for one actor, newest first.
func (s *Service) ViewActorEvents(ctx context.Context, actorID uuid.UUID) ([]domain.LedgerEvent, error) {
	var out []domain.LedgerEvent
	if err := s.DB.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order(`"createdAt" DESC`).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
