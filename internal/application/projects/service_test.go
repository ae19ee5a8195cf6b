package projects

import (
	"context"
	"testing"

	regsvc "carbonpay-backend/internal/application/registry"
	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/ledger"
	"carbonpay-backend/internal/tokenledger"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, *tokenledger.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Registry{}, &domain.Project{}, &domain.LedgerEvent{},
		&tokenledger.Mint{}, &tokenledger.Account{}, &tokenledger.Descriptor{},
	))
	return db, &tokenledger.Store{DB: db}
}

func initRegistry(t *testing.T, db *gorm.DB) (*domain.Registry, uuid.UUID) {
	authority := uuid.New()
	reg, err := (&regsvc.Service{DB: db}).Initialize(context.Background(), authority)
	require.NoError(t, err)
	return reg, authority
}

func TestInitializeProject(t *testing.T) {
	db, tokens := setupDB(t)
	reg, _ := initRegistry(t, db)
	svc := &Service{DB: db, Tokens: tokens}
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Initialize(ctx, owner, InitializeInput{
		Amount:       1000,
		PricePerUnit: 25,
		FeeRate:      500,
		Name:         "Reforestation Alpha",
		Symbol:       "CRBN",
		URI:          "https://carbonpay.earth/projects/alpha",
	})
	require.NoError(t, err)

	assert.True(t, p.IsActive)
	assert.Equal(t, uint64(1000), p.Amount)
	assert.Equal(t, uint64(1000), p.RemainingAmount)
	assert.Equal(t, uint64(0), p.OffsetAmount)
	assert.Equal(t, reg.RegistryID, p.FeeRecipient)

	// full supply sits in the registry-held vault
	vaultBal, err := tokens.Balance(ctx, p.CreditMintID, reg.RegistryID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), vaultBal)

	// owner holds exactly one ownership certificate
	certBal, err := tokens.Balance(ctx, p.CertificateMintID, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), certBal)

	// credit mint authority moved to the registry: the owner can no longer mint
	err = tokens.MintTo(ctx, p.CreditMintID, owner, 1, owner)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	// global totals registered
	var got domain.Registry
	require.NoError(t, db.Where("tag = ?", domain.RegistryTag).First(&got).Error)
	assert.Equal(t, uint64(1000), got.TotalCredits)
	assert.Equal(t, uint64(1000), got.ActiveCredits)
	assert.Equal(t, uint64(1), got.ProjectsCount)
}

func TestInitializeProjectValidation(t *testing.T) {
	db, tokens := setupDB(t)
	initRegistry(t, db)
	svc := &Service{DB: db, Tokens: tokens}
	ctx := context.Background()

	_, err := svc.Initialize(ctx, uuid.New(), InitializeInput{Amount: 0, PricePerUnit: 1})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.Initialize(ctx, uuid.New(), InitializeInput{Amount: 10, PricePerUnit: 1, FeeRate: 10_001})
	assert.ErrorIs(t, err, ledger.ErrInvalidFeeRate)
}

func TestInitializeProjectWithoutRegistry(t *testing.T) {
	db, tokens := setupDB(t)
	svc := &Service{DB: db, Tokens: tokens}

	_, err := svc.Initialize(context.Background(), uuid.New(), InitializeInput{Amount: 10, PricePerUnit: 1})
	assert.ErrorIs(t, err, ledger.ErrRegistryNotInitialized)
}

func TestGlobalTotalsAreSumOfProjects(t *testing.T) {
	db, tokens := setupDB(t)
	initRegistry(t, db)
	svc := &Service{DB: db, Tokens: tokens}
	ctx := context.Background()

	for _, amount := range []uint64{100, 250, 4000} {
		_, err := svc.Initialize(ctx, uuid.New(), InitializeInput{Amount: amount, PricePerUnit: 1})
		require.NoError(t, err)
	}

	var projects []domain.Project
	require.NoError(t, db.Find(&projects).Error)
	var sum uint64
	for _, p := range projects {
		sum += p.Amount
	}

	var reg domain.Registry
	require.NoError(t, db.Where("tag = ?", domain.RegistryTag).First(&reg).Error)
	assert.Equal(t, sum, reg.TotalCredits)
	assert.Equal(t, uint64(3), reg.ProjectsCount)
}

func TestDeactivate(t *testing.T) {
	db, tokens := setupDB(t)
	_, authority := initRegistry(t, db)
	svc := &Service{DB: db, Tokens: tokens}
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Initialize(ctx, owner, InitializeInput{Amount: 10, PricePerUnit: 1})
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, uuid.New(), p.ProjectID)
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	got, err := svc.Deactivate(ctx, owner, p.ProjectID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// already inactive
	_, err = svc.Deactivate(ctx, authority, p.ProjectID)
	assert.ErrorIs(t, err, ledger.ErrProjectInactive)

	_, err = svc.Deactivate(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
