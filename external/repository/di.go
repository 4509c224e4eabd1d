package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/meetingbridge/internal/config"
	"github.com/foxseedlab/meetingbridge/internal/repository"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.Journal, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*logger.Logger](i)
		if !cfg.HasJournal() {
			log.Debug("DATABASE_URL not set; session end full text stays empty")
			return repository.NopJournal{}, nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		p, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := RunMigration(ctx, p); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to run migration: %w", err)
		}
		log.Info("transcript journal ready")
		return NewPostgresJournal(p), nil
	})
}
