// Package repository selects and opens the configured price store.
package repository

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/repository/postgres"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/adapter/repository/sqlite"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/config"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// Store is an open price store and the function releasing it
type Store struct {
	domain.PriceStore
	Close func() error
}

// Open connects to the backend named by cfg.DataBackend and brings its
// schema up to date.
func Open(cfg *config.Config, log *logrus.Logger) (*Store, error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		db, err := postgres.NewDB(cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("using postgres price store")
		return &Store{PriceStore: postgres.NewPriceRepository(db), Close: db.Close}, nil

	case config.BackendSQLite:
		repo, err := sqlite.NewPriceRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.WithField("path", cfg.SQLiteDBPath).Info("using sqlite price store")
		return &Store{PriceStore: repo, Close: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
