package datastore

import (
	"time"

	"gorm.io/gorm"
)

// RecordFilter is the closed set of history predicates. Predicate presence
// is decided by which fields are set; predicate values are always bound as
// parameters, never interpolated into SQL text.
type RecordFilter struct {
	Days *int    // only records from the last N days
	Type *string // equality on the stored species label

	// now overrides the recency reference time in tests
	now func() time.Time
}

// WithDays restricts the filter to records newer than N days.
func (f RecordFilter) WithDays(days int) RecordFilter {
	f.Days = &days
	return f
}

// WithType restricts the filter to one stored species label.
func (f RecordFilter) WithType(label string) RecordFilter {
	f.Type = &label
	return f
}

// apply ANDs the active predicates onto the query.
func (f RecordFilter) apply(query *gorm.DB) *gorm.DB {
	if f.Days != nil {
		now := time.Now
		if f.now != nil {
			now = f.now
		}
		cutoff := now().AddDate(0, 0, -*f.Days)
		query = query.Where("created_at >= ?", cutoff)
	}
	if f.Type != nil {
		query = query.Where("mushroom_type = ?", *f.Type)
	}
	return query
}
