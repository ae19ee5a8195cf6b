package offsets

import (
	"context"
	"testing"

	projsvc "carbonpay-backend/internal/application/projects"
	purchsvc "carbonpay-backend/internal/application/purchases"
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

type fixture struct {
	db       *gorm.DB
	tokens   *tokenledger.Store
	svc      *Service
	owner    uuid.UUID
	buyer    uuid.UUID
	registry *domain.Registry
	project  *domain.Project
	purchase *domain.Purchase
}

// setup builds a registry, a 1000-credit project and a 300-credit purchase
// by the buyer.
func setup(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Registry{}, &domain.Project{}, &domain.Purchase{},
		&domain.OffsetRequest{}, &domain.Wallet{}, &domain.LedgerEvent{},
		&tokenledger.Mint{}, &tokenledger.Account{}, &tokenledger.Descriptor{},
	))

	f := &fixture{
		db:     db,
		tokens: &tokenledger.Store{DB: db},
		owner:  uuid.New(),
		buyer:  uuid.New(),
	}
	f.svc = &Service{DB: db, Tokens: f.tokens}

	ctx := context.Background()
	reg, err := (&regsvc.Service{DB: db}).Initialize(ctx, uuid.New())
	require.NoError(t, err)
	f.registry = reg

	project, err := (&projsvc.Service{DB: db, Tokens: f.tokens}).Initialize(ctx, f.owner, projsvc.InitializeInput{
		Amount:       1000,
		PricePerUnit: 10,
		FeeRate:      500,
		Name:         "Mangrove Beta",
		Symbol:       "CRBN",
		URI:          "https://carbonpay.earth/projects/beta",
	})
	require.NoError(t, err)
	f.project = project

	require.NoError(t, db.Create(&domain.Wallet{OwnerID: f.buyer, Balance: 1_000_000}).Error)
	purchase, err := (&purchsvc.Service{DB: db, Tokens: f.tokens}).PurchaseCredits(ctx, f.buyer, project.ProjectID, 300)
	require.NoError(t, err)
	f.purchase = purchase

	return f
}

func (f *fixture) reload(t *testing.T) (domain.Registry, domain.Project, domain.Purchase) {
	var reg domain.Registry
	require.NoError(t, f.db.Where("tag = ?", domain.RegistryTag).First(&reg).Error)
	var project domain.Project
	require.NoError(t, f.db.Where("project_id = ?", f.project.ProjectID).First(&project).Error)
	var purchase domain.Purchase
	require.NoError(t, f.db.Where("purchase_id = ?", f.purchase.PurchaseID).First(&purchase).Error)
	return reg, project, purchase
}

func TestRequestOffsetPartialThenFull(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// partial retirement: 120 of 300
	r1, err := f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 120, "req-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, r1.Status)
	require.NotNil(t, r1.ProcessedAt)

	reg, project, purchase := f.reload(t)
	assert.Equal(t, uint64(180), purchase.RemainingAmount)
	assert.Equal(t, uint64(120), reg.OffsetCredits)
	assert.Equal(t, uint64(880), reg.ActiveCredits)
	assert.Equal(t, uint64(120), project.OffsetAmount)
	assert.Equal(t, reg.TotalCredits, reg.ActiveCredits+reg.OffsetCredits)

	// a replacement certificate for the remaining 180 was issued
	assert.NotEqual(t, f.purchase.CertificateMintID, purchase.CertificateMintID)
	certBal, _ := f.tokens.Balance(ctx, purchase.CertificateMintID, f.buyer)
	assert.Equal(t, uint64(1), certBal)
	oldCertBal, _ := f.tokens.Balance(ctx, f.purchase.CertificateMintID, f.buyer)
	assert.Equal(t, uint64(0), oldCertBal)

	var desc tokenledger.Descriptor
	require.NoError(t, f.db.Where("mint_id = ?", purchase.CertificateMintID).First(&desc).Error)
	assert.Equal(t, "Carbon Credits - Remaining: 180", desc.Name)

	// full retirement of the rest: no replacement certificate
	_, err = f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 180, "req-2")
	require.NoError(t, err)

	reg, project, purchase2 := f.reload(t)
	assert.Equal(t, uint64(0), purchase2.RemainingAmount)
	assert.Equal(t, uint64(300), reg.OffsetCredits)
	assert.Equal(t, uint64(700), reg.ActiveCredits)
	assert.Equal(t, uint64(300), project.OffsetAmount)

	// certificate reference unchanged, and nothing is held on it anymore
	assert.Equal(t, purchase.CertificateMintID, purchase2.CertificateMintID)
	finalCertBal, _ := f.tokens.Balance(ctx, purchase2.CertificateMintID, f.buyer)
	assert.Equal(t, uint64(0), finalCertBal)

	creditBal, _ := f.tokens.Balance(ctx, f.project.CreditMintID, f.buyer)
	assert.Equal(t, uint64(0), creditBal)
}

func TestRequestOffsetIdempotentRequestID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 50, "dup")
	require.NoError(t, err)

	_, err = f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 60, "dup")
	assert.ErrorIs(t, err, ledger.ErrOffsetRequestExists)

	// the first record is untouched and the duplicate left no side effects
	var stored domain.OffsetRequest
	require.NoError(t, f.db.Where("offset_request_id = ?", first.OffsetRequestID).First(&stored).Error)
	assert.Equal(t, uint64(50), stored.Amount)

	_, _, purchase := f.reload(t)
	assert.Equal(t, uint64(250), purchase.RemainingAmount)
}

func TestRequestOffsetValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 0, "req")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 10, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidOffsetRequest)

	long := make([]byte, domain.MaxRequestIDLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 10, string(long))
	assert.ErrorIs(t, err, ledger.ErrInvalidOffsetRequest)

	_, err = f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 301, "req")
	assert.ErrorIs(t, err, ledger.ErrInsufficientRemainingTokens)

	_, err = f.svc.RequestOffset(ctx, f.buyer, uuid.New(), 10, "req")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)

	_, err = f.svc.RequestOffset(ctx, uuid.New(), f.purchase.PurchaseID, 10, "req")
	assert.ErrorIs(t, err, ledger.ErrNotPurchaseOwner)
}

func TestRequestOffsetInsufficientFungibleTokens(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// buyer moves 250 of the 300 purchased credits away, then tries to
	// retire more than is still held
	require.NoError(t, f.tokens.Transfer(ctx, f.project.CreditMintID, f.buyer, uuid.New(), 250, f.buyer))

	_, err := f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 100, "req")
	assert.ErrorIs(t, err, ledger.ErrInsufficientFungibleTokens)

	// failed transition left every record unchanged
	reg, project, purchase := f.reload(t)
	assert.Equal(t, uint64(300), purchase.RemainingAmount)
	assert.Equal(t, uint64(0), reg.OffsetCredits)
	assert.Equal(t, uint64(0), project.OffsetAmount)
	var count int64
	f.db.Model(&domain.OffsetRequest{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRequestOffsetMissingCertificate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// certificate given away: holder no longer has the retirement token
	require.NoError(t, f.tokens.Transfer(ctx, f.purchase.CertificateMintID, f.buyer, uuid.New(), 1, f.buyer))

	_, err := f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 10, "req")
	assert.ErrorIs(t, err, ledger.ErrInvalidCertificateAccount)
}

func TestViewOffsets(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	r, err := f.svc.RequestOffset(ctx, f.buyer, f.purchase.PurchaseID, 40, "view-1")
	require.NoError(t, err)

	list, err := f.svc.ViewRequesterOffsets(ctx, f.buyer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r.OffsetRequestID, list[0].OffsetRequestID)

	got, err := f.svc.ViewOffsetRequest(ctx, r.OffsetRequestID)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), got.Amount)

	_, err = f.svc.ViewOffsetRequest(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrOffsetRequestNotFound)
}
