package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

// ConnectDB opens the Postgres pool used by the gorm gateway.
func ConnectDB(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	return db, nil
}

// Migrate creates or updates every table the gateways read and write.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	return db.AutoMigrate(
		&models.Salon{},
		&models.Professional{},
		&models.User{},
		&models.Client{},
		&models.Service{},
		&models.Appointment{},
		&models.MessageTemplate{},
		&models.NotificationLog{},
	)
}

// NewGateway picks the data backend from cfg. The returned close function
// releases any pool it opened.
func NewGateway(cfg *Config, log *logrus.Logger) (gateway.Gateway, func() error, error) {
	noop := func() error { return nil }

	switch backend := cfg.Backend(); backend {
	case BackendSupabase:
		gw, err := gateway.NewPostgREST(gateway.PostgRESTConfig{
			URL:     cfg.SupabaseURL,
			APIKey:  cfg.SupabaseKey,
			Timeout: cfg.GatewayTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		log.WithField("backend", backend).Info("data gateway ready")
		return gw, noop, nil

	case BackendPostgres:
		db, err := ConnectDB(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := Migrate(db); err != nil {
				return nil, nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		log.WithField("backend", backend).Info("data gateway ready")
		return gateway.NewGorm(db), sqlDB.Close, nil

	case BackendMemory:
		log.WithField("backend", backend).Warn("using in-memory data gateway, data is lost on restart")
		return gateway.NewMemory(), noop, nil
	}

	log.Warn("no data backend configured, reads return empty results and writes fail")
	return gateway.Unconfigured{}, noop, nil
}
