package wallets

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

// Deposit credits native funds to an account's wallet. Only the registry
// authority funds wallets; everyone else gets UnauthorizedAdmin.
func (s *Service) Deposit(ctx context.Context, caller, to uuid.UUID, amount uint64) (*domain.Wallet, error) {
	if amount == 0 {
		return nil, ledger.ErrInvalidAmount
	}

	var wallet *domain.Wallet
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg domain.Registry
		if err := tx.Where("tag = ?", domain.RegistryTag).First(&reg).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ledger.ErrRegistryNotInitialized
			}
			return err
		}
		if caller != reg.Authority {
			return ledger.ErrUnauthorizedAdmin
		}

		if err := credit(tx, to, amount); err != nil {
			return err
		}
		var w domain.Wallet
		if err := tx.Where("owner_id = ?", to).First(&w).Error; err != nil {
			return err
		}
		wallet = &w

		eventData, _ := json.Marshal(map[string]interface{}{
			"amount":  amount,
			"balance": w.Balance,
		})
		return tx.Create(&domain.LedgerEvent{
			EventType: domain.EventWalletDeposit,
			ActorID:   &caller,
			EntityID:  &to,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
	return wallet, err
}

// BalanceOf returns the wallet balance; a missing wallet is an empty one.
func (s *Service) BalanceOf(ctx context.Context, owner uuid.UUID) (uint64, error) {
	var w domain.Wallet
	err := s.DB.WithContext(ctx).Where("owner_id = ?", owner).First(&w).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// Transfer moves native funds between wallets inside the caller's
// transaction. The purchase transition uses it for proceeds and fee.
func Transfer(tx *gorm.DB, from, to uuid.UUID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	var sender domain.Wallet
	if err := tx.Where("owner_id = ?", from).First(&sender).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ledger.ErrInsufficientFunds
		}
		return err
	}
	balance, err := ledger.CheckedSub(sender.Balance, amount)
	if err != nil {
		return ledger.ErrInsufficientFunds
	}
	sender.Balance = balance
	if err := tx.Save(&sender).Error; err != nil {
		return err
	}
	return credit(tx, to, amount)
}

func credit(tx *gorm.DB, to uuid.UUID, amount uint64) error {
	var receiver domain.Wallet
	err := tx.Where("owner_id = ?", to).First(&receiver).Error
	if err == gorm.ErrRecordNotFound {
		receiver = domain.Wallet{OwnerID: to, Balance: amount}
		return tx.Create(&receiver).Error
	}
	if err != nil {
		return err
	}
	balance, err := ledger.CheckedAdd(receiver.Balance, amount)
	if err != nil {
		return err
	}
	receiver.Balance = balance
	return tx.Save(&receiver).Error
}
