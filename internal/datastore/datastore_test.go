// datastore_test.go: shared fixtures for datastore tests
package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with a verified schema.
func setupTestDB(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ds := &DataStore{DB: db}
	require.NoError(t, ds.EnsureSchema())
	return ds
}

func floatPtr(v float64) *float64 { return &v }

// seedRecord inserts one record directly, bypassing the stats upsert.
func seedRecord(t *testing.T, ds *DataStore, species string, createdAt time.Time) AnalysisRecord {
	t.Helper()

	record := AnalysisRecord{
		UserID:       1,
		FileType:     "image/jpeg",
		FilePath:     "static/uploads/sample.jpg",
		ResultPath:   "results_1700000000000_abcd1234.jpg",
		DetectType:   species,
		MushroomType: species,
		Confidence:   floatPtr(0.81),
		CreatedAt:    createdAt,
		DangerTip:    "提示：该菌类可食用",
	}
	require.NoError(t, ds.DB.Create(&record).Error)
	return record
}
