package tokenledger

import (
	"context"
	"encoding/json"

	"carbonpay-backend/internal/ledger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is the GORM-backed Ledger. Services bind it to their transaction so
// token mutations commit or roll back together with the record mutations.
type Store struct {
	DB *gorm.DB
}

// Bind returns a Ledger that runs against tx.
func (s *Store) Bind(tx *gorm.DB) Ledger {
	return &Store{DB: tx}
}

func (s *Store) CreateMint(ctx context.Context, authority uuid.UUID) (uuid.UUID, error) {
	m := Mint{MintID: uuid.New(), Authority: authority}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return uuid.Nil, err
	}
	return m.MintID, nil
}

func (s *Store) MintTo(ctx context.Context, token, to uuid.UUID, amount uint64, authority uuid.UUID) error {
	m, err := s.mint(ctx, token)
	if err != nil {
		return err
	}
	if m.Authority != authority {
		return ledger.ErrUnauthorized
	}
	supply, err := ledger.CheckedAdd(m.Supply, amount)
	if err != nil {
		return err
	}
	m.Supply = supply
	if err := s.DB.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	return s.credit(ctx, token, to, amount)
}

func (s *Store) Transfer(ctx context.Context, token, from, to uuid.UUID, amount uint64, authority uuid.UUID) error {
	if _, err := s.mint(ctx, token); err != nil {
		return err
	}
	// only the holder moves funds out of an account; the pooled vault is
	// held by the registry, so vault moves are registry-authorized
	if authority != from {
		return ledger.ErrUnauthorized
	}
	if err := s.debit(ctx, token, from, amount); err != nil {
		return err
	}
	return s.credit(ctx, token, to, amount)
}

func (s *Store) Burn(ctx context.Context, token, from uuid.UUID, amount uint64, authority uuid.UUID) error {
	m, err := s.mint(ctx, token)
	if err != nil {
		return err
	}
	if authority != from && authority != m.Authority {
		return ledger.ErrUnauthorized
	}
	if err := s.debit(ctx, token, from, amount); err != nil {
		return err
	}
	supply, err := ledger.CheckedSub(m.Supply, amount)
	if err != nil {
		return err
	}
	m.Supply = supply
	return s.DB.WithContext(ctx).Save(m).Error
}

func (s *Store) SetAuthority(ctx context.Context, token, newAuthority, authority uuid.UUID) error {
	m, err := s.mint(ctx, token)
	if err != nil {
		return err
	}
	if m.Authority != authority {
		return ledger.ErrUnauthorized
	}
	m.Authority = newAuthority
	return s.DB.WithContext(ctx).Save(m).Error
}

func (s *Store) IssueDescriptor(ctx context.Context, token uuid.UUID, meta Metadata) error {
	if _, err := s.mint(ctx, token); err != nil {
		return err
	}
	var data datatypes.JSON
	if meta.Data != nil {
		b, err := json.Marshal(meta.Data)
		if err != nil {
			return err
		}
		data = datatypes.JSON(b)
	}
	d := Descriptor{
		MintID: token,
		Name:   meta.Name,
		Symbol: meta.Symbol,
		URI:    meta.URI,
		Data:   data,
	}
	return s.DB.WithContext(ctx).Create(&d).Error
}

func (s *Store) Balance(ctx context.Context, token, holder uuid.UUID) (uint64, error) {
	var acct Account
	err := s.DB.WithContext(ctx).Where("mint_id = ? AND holder = ?", token, holder).First(&acct).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func (s *Store) mint(ctx context.Context, token uuid.UUID) (*Mint, error) {
	var m Mint
	err := s.DB.WithContext(ctx).Where("mint_id = ?", token).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrMintNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) credit(ctx context.Context, token, holder uuid.UUID, amount uint64) error {
	var acct Account
	err := s.DB.WithContext(ctx).Where("mint_id = ? AND holder = ?", token, holder).First(&acct).Error
	if err == gorm.ErrRecordNotFound {
		acct = Account{MintID: token, Holder: holder, Balance: amount}
		return s.DB.WithContext(ctx).Create(&acct).Error
	}
	if err != nil {
		return err
	}
	balance, err := ledger.CheckedAdd(acct.Balance, amount)
	if err != nil {
		return err
	}
	acct.Balance = balance
	return s.DB.WithContext(ctx).Save(&acct).Error
}

func (s *Store) debit(ctx context.Context, token, holder uuid.UUID, amount uint64) error {
	var acct Account
	err := s.DB.WithContext(ctx).Where("mint_id = ? AND holder = ?", token, holder).First(&acct).Error
	if err == gorm.ErrRecordNotFound {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	if acct.Balance < amount {
		return ledger.ErrInsufficientFungibleTokens
	}
	acct.Balance -= amount
	return s.DB.WithContext(ctx).Save(&acct).Error
}
