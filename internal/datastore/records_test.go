package datastore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRecordUpsertsDetectionStats(t *testing.T) {
	ds := setupTestDB(t)
	now := time.Now()

	first := AnalysisRecord{
		UserID:       1,
		FileType:     "image/jpeg",
		FilePath:     "static/uploads/one.jpg",
		ResultPath:   "results_one.jpg",
		DetectType:   "松茸",
		MushroomType: "松茸",
		Confidence:   floatPtr(0.81),
		CreatedAt:    now,
	}
	require.NoError(t, ds.SaveRecord(&first))
	assert.NotZero(t, first.ID)

	second := first
	second.ID = 0
	second.FilePath = "static/uploads/two.jpg"
	require.NoError(t, ds.SaveRecord(&second))

	var stat DetectionStat
	require.NoError(t, ds.DB.
		Where("user_id = ? AND detection_date = ?", 1, now.Format("2006-01-02")).
		First(&stat).Error)
	assert.EqualValues(t, 2, stat.DailyCount)
	assert.EqualValues(t, 2, stat.TotalCount)

	// exactly one stats row per user and day
	var statRows int64
	require.NoError(t, ds.DB.Model(&DetectionStat{}).Count(&statRows).Error)
	assert.EqualValues(t, 1, statRows)
}

func TestGetRecordRoundTrip(t *testing.T) {
	ds := setupTestDB(t)
	saved := seedRecord(t, ds, "松茸", time.Now())

	got, err := ds.GetRecord(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.MushroomType, got.MushroomType)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.81, *got.Confidence, 1e-9)
}

func TestSearchRecordsPagination(t *testing.T) {
	ds := setupTestDB(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 23; i++ {
		seedRecord(t, ds, "松茸", base.Add(time.Duration(i)*time.Minute))
	}

	filter := RecordFilter{}
	total, err := ds.CountRecords(filter)
	require.NoError(t, err)
	assert.EqualValues(t, 23, total)

	pageSize := 8
	pageCount := int((total + int64(pageSize) - 1) / int64(pageSize))
	assert.Equal(t, 3, pageCount)

	// concatenating all pages reproduces the unpaginated set exactly
	seen := make(map[uint]bool)
	var concatenated []AnalysisRecord
	for page := 1; page <= pageCount; page++ {
		records, err := ds.SearchRecords(filter, pageSize, (page-1)*pageSize)
		require.NoError(t, err)
		for _, r := range records {
			require.False(t, seen[r.ID], "record %d returned twice", r.ID)
			seen[r.ID] = true
		}
		concatenated = append(concatenated, records...)
	}
	require.Len(t, concatenated, 23)

	// newest first, strictly ordered across page boundaries
	for i := 1; i < len(concatenated); i++ {
		assert.False(t, concatenated[i].CreatedAt.After(concatenated[i-1].CreatedAt),
			"records out of order at %d", i)
	}
}

func TestRecordFilterDays(t *testing.T) {
	ds := setupTestDB(t)
	now := time.Now()
	seedRecord(t, ds, "松茸", now.AddDate(0, 0, -10))
	recent := seedRecord(t, ds, "牛肝菌", now.AddDate(0, 0, -2))

	filter := RecordFilter{now: func() time.Time { return now }}.WithDays(7)

	records, err := ds.SearchRecords(filter, 100, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, recent.ID, records[0].ID)

	count, err := ds.CountRecords(filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRecordFilterType(t *testing.T) {
	ds := setupTestDB(t)
	now := time.Now()
	seedRecord(t, ds, "松茸", now)
	seedRecord(t, ds, "松茸", now)
	seedRecord(t, ds, "牛肝菌", now)

	count, err := ds.CountRecords(RecordFilter{}.WithType("松茸"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// combined predicates AND together
	combined := RecordFilter{now: func() time.Time { return now }}.WithDays(1).WithType("牛肝菌")
	count, err = ds.CountRecords(combined)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSearchRecordsBoundParameters(t *testing.T) {
	ds := setupTestDB(t)
	seedRecord(t, ds, "松茸", time.Now())

	// a hostile filter value must be treated as data, not SQL
	hostile := "松茸' OR '1'='1"
	count, err := ds.CountRecords(RecordFilter{}.WithType(hostile))
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestSearchRecordsEmptyPage(t *testing.T) {
	ds := setupTestDB(t)
	seedRecord(t, ds, "松茸", time.Now())

	records, err := ds.SearchRecords(RecordFilter{}, 8, 100)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveRecordAcrossDays(t *testing.T) {
	ds := setupTestDB(t)

	for day := 0; day < 3; day++ {
		record := AnalysisRecord{
			UserID:     1,
			FileType:   "image/jpeg",
			FilePath:   fmt.Sprintf("static/uploads/day%d.jpg", day),
			ResultPath: fmt.Sprintf("results_day%d.jpg", day),
			CreatedAt:  time.Now().AddDate(0, 0, -day),
		}
		require.NoError(t, ds.SaveRecord(&record))
	}

	var statRows int64
	require.NoError(t, ds.DB.Model(&DetectionStat{}).Count(&statRows).Error)
	assert.EqualValues(t, 3, statRows)
}
