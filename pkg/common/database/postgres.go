package database

import (
	"sync"

	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbErr  error
	dbOnce sync.Once
)

// GetPostgres opens the shared connection on first use.
func GetPostgres(cfg *config.Config) (*gorm.DB, error) {
	dbOnce.Do(func() {
		db, dbErr = gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if dbErr != nil {
			logger.Log.WithError(dbErr).Error("Failed to connect to PostgreSQL")
			return
		}

		logger.Log.WithField("host", cfg.PostgresHost).Info("Connected to PostgreSQL")
	})

	return db, dbErr
}

func ClosePostgres() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
