package database

import (
	"context"
	"time"

	"github.com/lshigami/Kadabra/internal/model"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const sweepInterval = time.Minute

// StartSessionSweeper runs the passive TTL sweep: expired sessions are
// hard-deleted once ttl_expires_at has passed, mirroring a document store's
// TTL index.
func StartSessionSweeper(lc fx.Lifecycle, db *gorm.DB) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						SweepExpiredSessions(db)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}

func SweepExpiredSessions(db *gorm.DB) {
	res := db.Where("ttl_expires_at < ?", time.Now().UTC()).Delete(&model.Session{})
	if res.Error != nil {
		log.Warn().Err(res.Error).Msg("Session TTL sweep failed")
		return
	}
	if res.RowsAffected > 0 {
		log.Info().Int64("deleted", res.RowsAffected).Msg("Session TTL sweep purged expired sessions")
	}
}
