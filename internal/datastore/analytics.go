// analytics.go: aggregate queries backing the stats endpoints
package datastore

import (
	"time"

	"github.com/yunjun/fungid-go/internal/errors"
)

// ClassCounts returns the occurrence count for every class in the given
// taxonomy, defaulting to zero for species never observed. The output always
// covers the full taxonomy regardless of data sparsity.
//
// Counts group on the legacy detect_type column first and fall back to
// mushroom_type when detect_type carries no data at all.
func (ds *DataStore) ClassCounts(classes []string) (map[string]int64, error) {
	counts, err := ds.groupedCounts("detect_type")
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		if counts, err = ds.groupedCounts("mushroom_type"); err != nil {
			return nil, err
		}
	}

	out := make(map[string]int64, len(classes))
	for _, name := range classes {
		out[name] = counts[name]
	}
	return out, nil
}

// groupedCounts groups record counts by the given species column. The column
// name comes from a hardcoded caller-side vocabulary, never from user input.
func (ds *DataStore) groupedCounts(column string) (map[string]int64, error) {
	var rows []struct {
		Name  string
		Count int64
	}

	err := ds.DB.Model(&AnalysisRecord{}).
		Select(column+" as name, COUNT(*) as count").
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Newf("grouping counts by %s: %w", column, err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}

// Overview returns today's count, the all-time count and the most recent
// detection timestamp (nil when the store is empty).
func (ds *DataStore) Overview() (OverviewStats, error) {
	var stats OverviewStats

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := ds.DB.Model(&AnalysisRecord{}).
		Where("created_at >= ?", dayStart).
		Count(&stats.TodayCount).Error; err != nil {
		return stats, errors.Newf("counting today's records: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	if err := ds.DB.Model(&AnalysisRecord{}).
		Count(&stats.TotalCount).Error; err != nil {
		return stats, errors.Newf("counting all records: %w", err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	if stats.TotalCount > 0 {
		var latest AnalysisRecord
		if err := ds.DB.Order("created_at DESC").First(&latest).Error; err != nil {
			return stats, errors.Newf("loading latest record: %w", err).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Build()
		}
		stats.LatestTime = &latest.CreatedAt
	}

	return stats, nil
}
