package datastore

import (
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/logging"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the SQLite database connection. Calling it on a live store is
// a no-op.
func (store *SQLiteStore) Open() error {
	if store.DB != nil {
		return nil
	}

	path := store.Settings.Output.SQLite.Path
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		// the database file may live in a directory that does not exist yet
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		return errors.Newf("failed to open SQLite database at %q: %w", path, err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	store.DB = db
	store.logger = logging.ForService("datastore")
	if store.Settings.Debug {
		store.logger.Debug("SQLite database connection initialized", "path", path)
	}
	return nil
}

// Close closes the SQLite database connection.
func (store *SQLiteStore) Close() error {
	return closeGorm(&store.DataStore)
}
