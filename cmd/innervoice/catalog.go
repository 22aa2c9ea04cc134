package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AaronLay10/InnerVoice/internal/config"
	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/storage/postgres"
)

// catalogStore is the subset of the Postgres client used for catalogs.
type catalogStore interface {
	LoadCatalog(ctx context.Context, name string) (*postgres.CatalogRow, error)
	SaveCatalog(ctx context.Context, name string, document []byte) error
	ListCatalogs(ctx context.Context) ([]string, error)
	Close() error
}

var openStore = func(ctx context.Context) (catalogStore, error) {
	return postgres.New(ctx)
}

// loadCatalog resolves the configured catalog source.
func loadCatalog(ctx context.Context, cfg config.Config) (*scenario.Catalog, error) {
	switch cfg.CatalogSource {
	case config.SourceFile:
		return scenario.LoadFile(cfg.CatalogFile)
	case config.SourcePostgres:
		return loadFromStore(ctx, cfg)
	default:
		return scenario.Default()
	}
}

func loadFromStore(ctx context.Context, cfg config.Config) (*scenario.Catalog, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	if cfg.SeedCatalog {
		if err := store.SaveCatalog(ctx, cfg.CatalogName, scenario.DefaultDocument()); err != nil {
			return nil, fmt.Errorf("seed catalog %q: %w", cfg.CatalogName, err)
		}
	}

	row, err := store.LoadCatalog(ctx, cfg.CatalogName)
	if errors.Is(err, postgres.ErrCatalogNotFound) {
		names, listErr := store.ListCatalogs(ctx)
		if listErr != nil {
			return nil, fmt.Errorf("%w (list catalogs: %v)", err, listErr)
		}
		available := "none; start with -seed-catalog"
		if len(names) > 0 {
			available = strings.Join(names, ", ")
		}
		return nil, fmt.Errorf("%w; available: %s", err, available)
	}
	if err != nil {
		return nil, err
	}
	return scenario.Parse([]byte(row.Document))
}
