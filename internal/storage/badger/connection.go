package badger

import (
	"fmt"
	"os"
	"path/filepath"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB wraps a badgerhold store and owns its lifecycle.
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewBadgerDB opens (or creates) the document database at the configured path.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config == nil {
		return nil, fmt.Errorf("badger config is required")
	}

	path := config.Path
	if path == "" {
		path = "./data"
	}

	if config.ResetOnStartup {
		logger.Warn().Str("path", path).Msg("Resetting document database on startup")
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to reset database at %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Options = badgerdb.DefaultOptions(path).WithLogger(nil)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("Document database opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
	}, nil
}

// Store exposes the underlying badgerhold store to the storage services.
func (db *BadgerDB) Store() *badgerhold.Store {
	return db.store
}

// Close shuts down the database.
func (db *BadgerDB) Close() error {
	if db.store == nil {
		return nil
	}
	if err := db.store.Close(); err != nil {
		return fmt.Errorf("failed to close badger database: %w", err)
	}
	db.store = nil
	return nil
}
