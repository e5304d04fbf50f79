package infra

import (
	"fmt"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by the integration test
// suite against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Customer{},
		&model.CashRegister{},
		&model.CashSession{},
		&model.CashSessionDenomination{},
		&model.CashMovement{},
		&model.CashSessionReopenEvent{},
		&model.AdminOverrideCode{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.SaleEvent{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that the model tags cannot express.
// The partial unique index below is the storage-level guarantee behind the
// single-open-session-per-register invariant: two racing opens both pass the
// application pre-check, but only one insert commits — the loser surfaces as
// a duplicate-key error the service reports as a state conflict.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cash_sessions_open_register') THEN
		    CREATE UNIQUE INDEX uni_cash_sessions_open_register
		        ON cash_sessions (cash_register_id)
		        WHERE closed_at IS NULL;
		  END IF;
		END $$`,
		// Unused codes are looked up by digest; this keeps the consume UPDATE
		// on an index even as used codes accumulate.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_override_codes_unused') THEN
		    CREATE INDEX idx_override_codes_unused
		        ON admin_override_codes (code_hash)
		        WHERE used_at IS NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
