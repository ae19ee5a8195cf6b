package wallets

import (
	"context"
	"testing"

	regsvc "carbonpay-backend/internal/application/registry"
	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Registry{}, &domain.Wallet{}, &domain.LedgerEvent{}))

	authority := uuid.New()
	_, err = (&regsvc.Service{DB: db}).Initialize(context.Background(), authority)
	require.NoError(t, err)
	return db, authority
}

func TestDepositRequiresAuthority(t *testing.T) {
	db, authority := setupDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.Deposit(ctx, user, user, 100)
	assert.ErrorIs(t, err, ledger.ErrUnauthorizedAdmin)

	w, err := svc.Deposit(ctx, authority, user, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), w.Balance)

	w, err = svc.Deposit(ctx, authority, user, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), w.Balance)

	_, err = svc.Deposit(ctx, authority, user, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestBalanceOf(t *testing.T) {
	db, authority := setupDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	user := uuid.New()

	bal, err := svc.BalanceOf(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)

	_, err = svc.Deposit(ctx, authority, user, 42)
	require.NoError(t, err)
	bal, err = svc.BalanceOf(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal)
}

func TestTransfer(t *testing.T) {
	db, authority := setupDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	from := uuid.New()
	to := uuid.New()

	_, err := svc.Deposit(ctx, authority, from, 100)
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Transfer(tx, from, to, 40)
	}))

	fromBal, _ := svc.BalanceOf(ctx, from)
	toBal, _ := svc.BalanceOf(ctx, to)
	assert.Equal(t, uint64(60), fromBal)
	assert.Equal(t, uint64(40), toBal)

	err = db.Transaction(func(tx *gorm.DB) error {
		return Transfer(tx, from, to, 61)
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// a wallet that never existed has no funds
	err = db.Transaction(func(tx *gorm.DB) error {
		return Transfer(tx, uuid.New(), to, 1)
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// zero transfers are a no-op
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Transfer(tx, from, to, 0)
	}))
}
