package database

import (
	"akrion-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers
// (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// Models lists every persisted entity, in dependency order, for migration
// and for test databases.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.DealerProfile{},
		&domain.ScrapCategory{},
		&domain.ScrapMaterial{},
		&domain.ReusableItemCategory{},
		&domain.DealerPrice{},
		&domain.DealerRating{},
		&domain.DealerInquiry{},
		&domain.ScrapListing{},
		&domain.ReusableItemListing{},
		&domain.ListingInquiry{},
		&domain.Transaction{},
		&domain.EcoPointsEntry{},
	}
}

// AutoMigrate runs migrations for all domain models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// LockForUpdate adds a SELECT ... FOR UPDATE clause on dialects that support
// row locks. SQLite serializes writers on its own and rejects the syntax, so
// the clause is skipped there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
