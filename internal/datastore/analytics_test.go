// analytics_test.go: tests for the aggregate stats queries
package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunjun/fungid-go/internal/taxonomy"
)

func TestClassCountsCoversFullTaxonomyOnEmptyStore(t *testing.T) {
	ds := setupTestDB(t)

	counts, err := ds.ClassCounts(taxonomy.Classes())
	require.NoError(t, err)

	assert.Len(t, counts, taxonomy.Size())
	for _, name := range taxonomy.Classes() {
		assert.EqualValues(t, 0, counts[name], "species %s", name)
	}
}

func TestClassCountsWithData(t *testing.T) {
	ds := setupTestDB(t)
	now := time.Now()
	seedRecord(t, ds, "松茸", now)
	seedRecord(t, ds, "松茸", now)
	seedRecord(t, ds, "见手青", now)

	counts, err := ds.ClassCounts(taxonomy.Classes())
	require.NoError(t, err)

	assert.Len(t, counts, taxonomy.Size())
	assert.EqualValues(t, 2, counts["松茸"])
	assert.EqualValues(t, 1, counts["见手青"])
	assert.EqualValues(t, 0, counts["松露"])
}

func TestClassCountsFallsBackToMushroomType(t *testing.T) {
	ds := setupTestDB(t)

	// rows where only the newer column carries data
	require.NoError(t, ds.DB.Exec(
		`INSERT INTO analysis_records (user_id, file_type, file_path, result_path, detect_type, mushroom_type)
		 VALUES (1, 'image/jpeg', 'a.jpg', 'r.jpg', '', '青头菌')`).Error)

	counts, err := ds.ClassCounts(taxonomy.Classes())
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["青头菌"])
}

func TestOverviewEmptyStore(t *testing.T) {
	ds := setupTestDB(t)

	stats, err := ds.Overview()
	require.NoError(t, err)

	assert.Zero(t, stats.TodayCount)
	assert.Zero(t, stats.TotalCount)
	assert.Nil(t, stats.LatestTime)
}

func TestOverviewWithData(t *testing.T) {
	ds := setupTestDB(t)
	now := time.Now()
	seedRecord(t, ds, "松茸", now.AddDate(0, 0, -3))
	latest := seedRecord(t, ds, "牛肝菌", now.Add(-time.Minute))

	stats, err := ds.Overview()
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.TodayCount)
	assert.EqualValues(t, 2, stats.TotalCount)
	require.NotNil(t, stats.LatestTime)
	assert.WithinDuration(t, latest.CreatedAt, *stats.LatestTime, time.Second)
}
