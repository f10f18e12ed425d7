package model

import "time"

// PageVisit is one beacon hit, recorded as-is.
type PageVisit struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Path      string    `json:"path" gorm:"not null;index"`
	Referrer  string    `json:"referrer"`
	UserAgent string    `json:"user_agent"`
	ClientIP  string    `json:"client_ip" gorm:"size:64"`
	Duration  int       `json:"duration"` // seconds on page, reported on tab close
	CreatedAt time.Time `json:"created_at"`
}

// PageStats is the per-path rollup kept alongside the raw visits.
type PageStats struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Path        string    `json:"path" gorm:"uniqueIndex;not null"`
	VisitCount  int64     `json:"visit_count" gorm:"default:0;not null"`
	LastVisitAt time.Time `json:"last_visit_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
