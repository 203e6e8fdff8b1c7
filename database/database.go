package database

import (
	"fmt"

	"github.com/lshigami/Kadabra/config"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens the postgres connection pool. Automatic ping is disabled
// so an unreachable database at boot leaves the process up in degraded mode;
// actual reachability is surfaced through the health endpoint.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableAutomaticPing: true,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database handle")
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		if pingErr := sqlDB.Ping(); pingErr != nil {
			log.Warn().Err(pingErr).Msg("Database unreachable at startup; continuing in degraded mode")
		}
	}

	return db, nil
}
