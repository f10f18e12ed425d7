package model

import (
	"encoding/json"
	"time"
)

// AppLog is an append-only record of an external-dependency failure:
// level, human message, originating service tag and JSON metadata with
// identifying fields truncated before write.
type AppLog struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	Level     string          `json:"level" gorm:"not null;size:10"`
	Message   string          `json:"message" gorm:"type:text;not null"`
	Source    string          `json:"source" gorm:"not null;index;size:50"`
	Metadata  json.RawMessage `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at"`
}
