package database

import (
	"fmt"

	"arogyam-go/internal/config"
	logging "arogyam-go/internal/logging"
	"arogyam-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres with a zap-backed GORM logger.
func Open(dbConf config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port, dbConf.SSLMode)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established successfully.")
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	// AutoMigrate creates tables, columns and foreign keys; the composite
	// index below is handled separately.
	err := db.AutoMigrate(
		&models.Patient{},
		&models.Consultation{},
		&models.Prescription{},
		&models.AdminUser{},
		&models.AdminSession{},
		&models.PerformanceMetric{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	metricsIndex := `CREATE INDEX IF NOT EXISTS idx_performance_metrics_query ON performance_metrics (page, metric_key, created_at DESC);`
	if err := db.Exec(metricsIndex).Error; err != nil {
		return fmt.Errorf("failed to create custom index on performance metrics: %w", err)
	}
	log.Info("Custom indexes ensured successfully.")
	return nil
}
