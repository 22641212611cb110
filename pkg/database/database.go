package database

import (
	"fmt"
	"time"

	"go-inventory-api/internal/model"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the driver and its settings
type Options struct {
	Driver   string // postgres | sqlite
	DSN      string
	LogLevel logger.LogLevel
}

// Open connects with the configured driver. TranslateError makes unique
// violations surface as gorm.ErrDuplicatedKey on both drivers.
func Open(opts Options) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}

	newLogger := logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	cfg := &gorm.Config{
		Logger:         newLogger,
		PrepareStmt:    false, // Disables GORM-level prepared statements
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true, // Disables implicit prepared statements for PgBouncer transaction mode
		})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// one writer; concurrent transactions queue on the pool
		sqlDB.SetMaxOpenConns(1)
	} else {
		// Connection Pooling Setup (Penting untuk Production)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.WithField("driver", opts.Driver).Info("Database connection established")
	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Purchase{},
		&model.PurchaseItem{},
	)
}
