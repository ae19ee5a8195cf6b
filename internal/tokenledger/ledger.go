package tokenledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrMintNotFound    = errors.New("Mint not found")
	ErrAccountNotFound = errors.New("Token account not found")
)

// Metadata is the descriptive record attached to a mint.
type Metadata struct {
	Name   string                 `json:"name"`
	Symbol string                 `json:"symbol"`
	URI    string                 `json:"uri"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Ledger is the token capability used by the marketplace transitions:
// fungible credit units and one-of-one ownership certificates. Every
// mutation is attributable to an authority and fails without side effects
// when the authority or balance check fails.
type Ledger interface {
	CreateMint(ctx context.Context, authority uuid.UUID) (uuid.UUID, error)
	MintTo(ctx context.Context, token, to uuid.UUID, amount uint64, authority uuid.UUID) error
	Transfer(ctx context.Context, token, from, to uuid.UUID, amount uint64, authority uuid.UUID) error
	Burn(ctx context.Context, token, from uuid.UUID, amount uint64, authority uuid.UUID) error
	SetAuthority(ctx context.Context, token, newAuthority, authority uuid.UUID) error
	IssueDescriptor(ctx context.Context, token uuid.UUID, meta Metadata) error
	Balance(ctx context.Context, token, holder uuid.UUID) (uint64, error)
}

// Mint is one token kind: a project's fungible credit supply or a
// single-unit ownership certificate.
type Mint struct {
	MintID    uuid.UUID `gorm:"column:mint_id;type:uuid;primaryKey" json:"mint_id"`
	Authority uuid.UUID `gorm:"column:authority;type:uuid;not null" json:"authority"`
	Supply    uint64    `gorm:"column:supply;not null;default:0" json:"supply"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Mint) TableName() string {
	return "Mints"
}

// Account is a holder's balance for one mint.
type Account struct {
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	MintID    uuid.UUID `gorm:"column:mint_id;type:uuid;not null;uniqueIndex:idx_token_account_mint_holder" json:"mint_id"`
	Holder    uuid.UUID `gorm:"column:holder;type:uuid;not null;uniqueIndex:idx_token_account_mint_holder" json:"holder"`
	Balance   uint64    `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Account) TableName() string {
	return "TokenAccounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.AccountID == uuid.Nil {
		a.AccountID = uuid.New()
	}
	return nil
}

// Descriptor is the descriptive metadata record of a mint, at most one per
// mint.
type Descriptor struct {
	DescriptorID uuid.UUID      `gorm:"column:descriptor_id;type:uuid;primaryKey" json:"descriptor_id"`
	MintID       uuid.UUID      `gorm:"column:mint_id;type:uuid;not null;uniqueIndex" json:"mint_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Symbol       string         `gorm:"column:symbol;not null" json:"symbol"`
	URI          string         `gorm:"column:uri;not null" json:"uri"`
	Data         datatypes.JSON `gorm:"column:data;type:jsonb" json:"data"`
	CreatedAt    time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Descriptor) TableName() string {
	return "TokenDescriptors"
}

func (d *Descriptor) BeforeCreate(tx *gorm.DB) error {
	if d.DescriptorID == uuid.Nil {
		d.DescriptorID = uuid.New()
	}
	return nil
}
