package infra

import (
	"errors"
	"time"

	"github.com/marketpay/stripe-mirakl-connector/infra/repository/model"
	"github.com/marketpay/stripe-mirakl-connector/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the connector database and migrates its schema.
// TranslateError is on so duplicate-key violations surface as
// gorm.ErrDuplicatedKey for the repository error mapping.
func NewDBConnection(cnf *config.DB, appEnv string) (*gorm.DB, error) {
	databaseUrl := cnf.Url
	if databaseUrl == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}

	connection, err := gorm.Open(postgres.Open(databaseUrl), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	if err = connection.AutoMigrate(&model.AccountMapping{}, &model.StripeTransfer{}); err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return connection, nil
}
