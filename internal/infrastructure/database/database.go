package database

import (
	"carbonpay-backend/internal/domain"
	"carbonpay-backend/internal/tokenledger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Registry{},
		&domain.Project{},
		&domain.Purchase{},
		&domain.OffsetRequest{},
		&domain.Wallet{},
		&domain.LedgerEvent{},
		&tokenledger.Mint{},
		&tokenledger.Account{},
		&tokenledger.Descriptor{},
	)
}
