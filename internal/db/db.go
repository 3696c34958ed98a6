package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smsguard/internal/config"
	"smsguard/internal/model"
)

// Open connects to the configured database and applies pool settings.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var (
		gormDB *gorm.DB
		err    error
	)
	switch cfg.DBDriver {
	case config.DriverMySQL:
		gormDB, err = NewMySQL(cfg.DSN())
	case config.DriverPostgres:
		gormDB, err = NewPostgres(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	return gormDB, nil
}

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.ScanRecord{},
	}
}

// Migrate creates or updates the schema. When reset is set, tables are
// dropped first (children before parents).
func Migrate(gormDB *gorm.DB, reset bool) error {
	models := Models()
	if reset {
		for i := len(models) - 1; i >= 0; i-- {
			if err := gormDB.Migrator().DropTable(models[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
	}
	if err := gormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// gormConfig translates driver errors (duplicate keys) into gorm errors and
// skips the implicit transaction around single-statement writes.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
}
