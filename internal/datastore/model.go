// model.go this code defines the data model for the application
package datastore

import "time"

// User is a minimal identity row. Passwords are stored as bcrypt hashes in
// the legacy `password` column.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password;not null"`
	CreatedAt    time.Time
}

// TableName keeps the legacy singular table name.
func (User) TableName() string { return "user" }

// AnalysisRecord is one persisted detection event.
//
// DetectType and MushroomType are near-duplicate columns inherited from the
// legacy schema. Inserts dual-write both; reads prefer MushroomType. Neither
// is dropped until every consumer of DetectType is gone.
type AnalysisRecord struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"not null;index:idx_analysis_user_time,priority:1"`
	FileType     string `gorm:"size:50;not null"`
	FilePath     string `gorm:"size:255;not null"`
	ResultPath   string `gorm:"size:255;not null"`
	DetectType   string `gorm:"size:100"`
	MushroomType string `gorm:"size:100;index:idx_analysis_type"`
	Location     string `gorm:"size:255"`
	Confidence   *float64
	CreatedAt    time.Time `gorm:"index:idx_analysis_user_time,priority:2,sort:desc"`
	DangerTip    string    `gorm:"size:255"`

	User User `gorm:"foreignKey:UserID"`
}

// TableName keeps the legacy table name.
func (AnalysisRecord) TableName() string { return "analysis_records" }

// DetectionStat accumulates per-user daily detection counts. One row per
// (user, date), upserted in the same transaction as each record insert.
type DetectionStat struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;uniqueIndex:idx_stats_user_date,priority:1"`
	DetectionDate string `gorm:"size:10;not null;uniqueIndex:idx_stats_user_date,priority:2"`
	DailyCount    int64  `gorm:"default:0"`
	TotalCount    int64  `gorm:"default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName keeps the legacy table name.
func (DetectionStat) TableName() string { return "detection_stats" }

// OverviewStats is the aggregate summary for the stats overview endpoint.
type OverviewStats struct {
	TodayCount int64
	TotalCount int64
	LatestTime *time.Time
}
