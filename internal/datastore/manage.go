// manage.go: schema bootstrap and additive migration
package datastore

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yunjun/fungid-go/internal/errors"
)

// DefaultUsername is the account provisioned at first startup.
const DefaultUsername = "admin"

// defaultPassword is only used when seeding a brand-new database. Operators
// are expected to change it.
const defaultPassword = "admin"

// EnsureSchema creates missing tables and indexes, additively migrates the
// records table and seeds the default account. It is safe to run on every
// startup against both a brand-new and a pre-existing database, and safe to
// run twice.
func (ds *DataStore) EnsureSchema() error {
	if err := ds.DB.AutoMigrate(&User{}, &AnalysisRecord{}, &DetectionStat{}); err != nil {
		if !isDuplicateCreation(err) {
			return errors.Newf("auto-migrating schema: %w", err).
				Component("datastore").
				Category(errors.CategorySchema).
				Build()
		}
		// A concurrently starting instance won the creation race.
		ds.log().Warn("schema objects already created by another instance", "error", err)
	}

	if err := ds.migrateSpeciesColumns(); err != nil {
		return err
	}

	if err := ds.seedDefaultUser(); err != nil {
		return err
	}

	ds.log().Info("schema verified")
	return nil
}

// migrateSpeciesColumns adds the mushroom_type column to databases created
// before it existed and backfills it from its detect_type predecessor.
func (ds *DataStore) migrateSpeciesColumns() error {
	migrator := ds.DB.Migrator()

	if !migrator.HasColumn(&AnalysisRecord{}, "mushroom_type") {
		if err := migrator.AddColumn(&AnalysisRecord{}, "MushroomType"); err != nil && !isDuplicateCreation(err) {
			return errors.Newf("adding mushroom_type column: %w", err).
				Component("datastore").
				Category(errors.CategorySchema).
				Build()
		}
	}

	err := ds.DB.Model(&AnalysisRecord{}).
		Where("(mushroom_type IS NULL OR mushroom_type = '') AND detect_type IS NOT NULL AND detect_type <> ''").
		Update("mushroom_type", gorm.Expr("detect_type")).Error
	if err != nil {
		return errors.Newf("backfilling mushroom_type from detect_type: %w", err).
			Component("datastore").
			Category(errors.CategorySchema).
			Build()
	}

	if !migrator.HasIndex(&AnalysisRecord{}, "idx_analysis_type") {
		if err := migrator.CreateIndex(&AnalysisRecord{}, "idx_analysis_type"); err != nil && !isDuplicateCreation(err) {
			return errors.Newf("creating species index: %w", err).
				Component("datastore").
				Category(errors.CategorySchema).
				Build()
		}
	}

	return nil
}

// seedDefaultUser provisions the default account once, iff the table is empty.
func (ds *DataStore) seedDefaultUser() error {
	var count int64
	if err := ds.DB.Model(&User{}).Count(&count).Error; err != nil {
		return errors.Newf("counting users: %w", err).
			Component("datastore").
			Category(errors.CategorySchema).
			Build()
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Newf("hashing default password: %w", err).
			Component("datastore").
			Category(errors.CategorySchema).
			Build()
	}

	user := User{Username: DefaultUsername, PasswordHash: string(hash)}
	if err := ds.DB.Create(&user).Error; err != nil {
		if isDuplicateCreation(err) {
			// Lost the seeding race to a concurrent instance.
			return nil
		}
		return errors.Newf("seeding default user: %w", err).
			Component("datastore").
			Category(errors.CategorySchema).
			Build()
	}

	ds.log().Info("default user provisioned", "username", DefaultUsername)
	return nil
}

// DefaultUserID returns the seeded account's identifier.
func (ds *DataStore) DefaultUserID() (uint, error) {
	var user User
	if err := ds.DB.Where("username = ?", DefaultUsername).First(&user).Error; err != nil {
		return 0, errors.Newf("loading default user: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return user.ID, nil
}

// isDuplicateCreation reports whether err is a duplicate table/column/index
// creation error from a concurrent bootstrap race.
func isDuplicateCreation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate")
}
