package database

import (
	"fmt"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alphonse-K/freres-unis/domain"
)

// Open creates the database connection.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// AutoMigrate creates the auth-subsystem tables plus the casbin rule
// table. Schema evolution beyond this bootstrap is handled by external
// migration scripts.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.StaffUser{},
		&domain.POSUser{},
		&domain.Client{},
		&domain.Role{},
		&domain.RefreshToken{},
		&domain.BlacklistedToken{},
		&domain.OTPCode{},
		&domain.APIKey{},
		&domain.AuditEntry{},
	); err != nil {
		return fmt.Errorf("migrate auth tables: %w", err)
	}

	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("initialize casbin adapter: %w", err)
	}
	return nil
}
