package infra

import (
	"fmt"

	"github.com/firatemu/nuviabutik/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// for the full schema. gen_random_uuid() needs pgcrypto on PostgreSQL < 13,
// so the extension is created first.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// RunMigrations creates or updates all tables. Shared with the integration
// tests so a container database gets the exact production schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&model.Product{},
		&model.Color{},
		&model.Size{},
		&model.Variant{},
		&model.StockMovement{},
		&model.SequenceCounter{},
		&model.Sale{},
		&model.SaleLine{},
		&model.Tender{},
		&model.Voucher{},
		&model.VoucherUse{},
		&model.Customer{},
		&model.CustomerEntry{},
		&model.Register{},
		&model.RegisterMovement{},
	)
}
