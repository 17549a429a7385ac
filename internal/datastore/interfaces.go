// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yunjun/fungid-go/internal/conf"
	"github.com/yunjun/fungid-go/internal/errors"
	"github.com/yunjun/fungid-go/internal/logging"
)

// Interface abstracts the underlying database implementation and defines the
// operations available to the rest of the application.
type Interface interface {
	Open() error
	Close() error
	EnsureSchema() error
	DefaultUserID() (uint, error)
	SaveRecord(record *AnalysisRecord) error
	GetRecord(id uint) (AnalysisRecord, error)
	SearchRecords(filter RecordFilter, limit, offset int) ([]AnalysisRecord, error)
	CountRecords(filter RecordFilter) (int64, error)
	ClassCounts(classes []string) (map[string]int64, error)
	Overview() (OverviewStats, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB     *gorm.DB
	logger *slog.Logger
}

// New creates a store instance for whichever database output is enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

func (ds *DataStore) log() *slog.Logger {
	if ds.logger == nil {
		ds.logger = logging.ForService("datastore")
	}
	return ds.logger
}

// SaveRecord stores a detection record and updates the daily stats row as a
// single transaction.
func (ds *DataStore) SaveRecord(record *AnalysisRecord) error {
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
		return upsertDetectionStat(tx, record.UserID, record.CreatedAt)
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("user_id", record.UserID).
			Build()
	}
	return nil
}

// upsertDetectionStat recomputes the per-user counters for the record's day.
// Runs inside the caller's transaction.
func upsertDetectionStat(tx *gorm.DB, userID uint, at time.Time) error {
	date := at.Format("2006-01-02")
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var daily, total int64
	if err := tx.Model(&AnalysisRecord{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, dayStart, dayEnd).
		Count(&daily).Error; err != nil {
		return fmt.Errorf("counting daily records: %w", err)
	}
	if err := tx.Model(&AnalysisRecord{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return fmt.Errorf("counting total records: %w", err)
	}

	var stat DetectionStat
	err := tx.Where("user_id = ? AND detection_date = ?", userID, date).First(&stat).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		stat = DetectionStat{
			UserID:        userID,
			DetectionDate: date,
			DailyCount:    daily,
			TotalCount:    total,
		}
		if err := tx.Create(&stat).Error; err != nil {
			return fmt.Errorf("creating stats row: %w", err)
		}
	case err != nil:
		return fmt.Errorf("loading stats row: %w", err)
	default:
		stat.DailyCount = daily
		stat.TotalCount = total
		if err := tx.Save(&stat).Error; err != nil {
			return fmt.Errorf("updating stats row: %w", err)
		}
	}
	return nil
}

// GetRecord retrieves a record by its ID.
func (ds *DataStore) GetRecord(id uint) (AnalysisRecord, error) {
	var record AnalysisRecord
	if err := ds.DB.First(&record, id).Error; err != nil {
		return AnalysisRecord{}, errors.Newf("getting record %d: %w", id, err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return record, nil
}

// SearchRecords returns the filtered records ordered newest first.
func (ds *DataStore) SearchRecords(filter RecordFilter, limit, offset int) ([]AnalysisRecord, error) {
	var records []AnalysisRecord
	err := filter.apply(ds.DB.Model(&AnalysisRecord{})).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, errors.Newf("searching records: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}

// CountRecords returns the number of records matching the filter.
func (ds *DataStore) CountRecords(filter RecordFilter) (int64, error) {
	var count int64
	err := filter.apply(ds.DB.Model(&AnalysisRecord{})).Count(&count).Error
	if err != nil {
		return 0, errors.Newf("counting records: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return count, nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
