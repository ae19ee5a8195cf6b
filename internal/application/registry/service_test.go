package registry

import (
	"context"
	"testing"

	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Registry{}, &domain.LedgerEvent{}))
	return db
}

func TestInitializeOnce(t *testing.T) {
	db := setupDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()
	authority := uuid.New()

	reg, err := svc.Initialize(ctx, authority)
	require.NoError(t, err)
	assert.Equal(t, authority, reg.Authority)
	assert.Equal(t, uint64(0), reg.TotalCredits)
	assert.Equal(t, uint64(0), reg.ActiveCredits)
	assert.Equal(t, uint64(0), reg.OffsetCredits)
	assert.Equal(t, uint64(0), reg.ProjectsCount)
	assert.Equal(t, uint64(0), reg.TotalFeesEarned)

	_, err = svc.Initialize(ctx, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrRegistryExists)

	// the original authority is untouched
	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, authority, got.Authority)
}

func TestGetWithoutRegistry(t *testing.T) {
	db := setupDB(t)
	svc := &Service{DB: db}

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, ledger.ErrRegistryNotInitialized)
}
