package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/types"
	"github.com/smartbuilders/bautrack-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "bautrack", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	return Migrate(s.db)
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates all tables. Shared with the sqlite-backed tests.
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&types.Project{},
		&types.Address{},
		&types.Step{},
		&types.Material{},
		&types.StockMovement{},
		&types.MaterialDemand{},
		&types.PendingUpdate{},
		&types.Note{},
		&types.Photo{},
		&types.AuditLogEntry{},
	)
}
