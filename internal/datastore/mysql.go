package datastore

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/logging"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(s *conf.MySQLSettings) error {
	if s.Host == "" || s.Port == "" || s.Database == "" || s.Username == "" {
		return errors.Newf("incomplete MySQL configuration: host, port, database and username are required").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Open sets up the MySQL database connection. Calling it on a live store is
// a no-op; dropped connections are re-established by the GORM pool.
func (store *MySQLStore) Open() error {
	if store.DB != nil {
		return nil
	}

	if err := validateMySQLConfig(&store.Settings.Output.MySQL); err != nil {
		return err
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		store.Settings.Output.MySQL.Username, store.Settings.Output.MySQL.Password,
		store.Settings.Output.MySQL.Host, store.Settings.Output.MySQL.Port,
		store.Settings.Output.MySQL.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		return errors.Newf("failed to open MySQL database: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("host", store.Settings.Output.MySQL.Host).
			Context("database", store.Settings.Output.MySQL.Database).
			Build()
	}

	store.DB = db
	store.logger = logging.ForService("datastore")
	if store.Settings.Debug {
		store.logger.Debug("MySQL database connection initialized",
			"host", store.Settings.Output.MySQL.Host,
			"database", store.Settings.Output.MySQL.Database)
	}
	return nil
}

// Close closes the MySQL database connections.
func (store *MySQLStore) Close() error {
	return closeGorm(&store.DataStore)
}

// closeGorm tears down the generic database object behind a GORM handle.
func closeGorm(ds *DataStore) error {
	if ds.DB == nil {
		return nil
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.Newf("failed to retrieve generic DB object: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	if err := sqlDB.Close(); err != nil {
		return errors.Newf("failed to close database: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	ds.DB = nil
	return nil
}

// ensureDir creates a directory for database files when missing.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Newf("failed to create database directory %q: %w", dir, err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Build()
	}
	return nil
}
