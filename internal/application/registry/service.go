package registry

import (
	"context"
	"encoding/json"

	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// Initialize creates the global registry with zeroed counters; the caller
// becomes the platform authority. Exactly one registry exists, enforced both
// here and by the unique tag column.
func (s *Service) Initialize(ctx context.Context, authority uuid.UUID) (*domain.Registry, error) {
	var reg *domain.Registry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Registry
		err := tx.Where("tag = ?", domain.RegistryTag).First(&existing).Error
		if err == nil {
			return ledger.ErrRegistryExists
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		r := domain.Registry{Authority: authority}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		reg = &r

		eventData, _ := json.Marshal(map[string]interface{}{
			"authority": authority.String(),
		})
		return tx.Create(&domain.LedgerEvent{
			EventType: domain.EventRegistryInitialized,
			ActorID:   &authority,
			EntityID:  &r.RegistryID,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
	return reg, err
}

// Get returns the platform-wide totals.
func (s *Service) Get(ctx context.Context) (*domain.Registry, error) {
	var reg domain.Registry
	if err := s.DB.WithContext(ctx).Where("tag = ?", domain.RegistryTag).First(&reg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledger.ErrRegistryNotInitialized
		}
		return nil, err
	}
	return &reg, nil
}
