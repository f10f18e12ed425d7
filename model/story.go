package model

import (
	"encoding/json"
	"time"
)

// Story is one piece of community content, draft or published.
type Story struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	Title        string          `json:"title" gorm:"not null"`
	Slug         string          `json:"slug" gorm:"uniqueIndex;not null"`
	Excerpt      string          `json:"excerpt" gorm:"type:text;not null"`
	Content      string          `json:"content" gorm:"type:text;not null"`
	ContentExtra string          `json:"content_extra,omitempty" gorm:"type:text"`
	Category     string          `json:"category" gorm:"not null;index;size:50"`
	Tags         json.RawMessage `json:"tags" gorm:"type:text"` // JSON array, max 10 entries
	CoverImage   *string         `json:"cover_image,omitempty"`
	Images       json.RawMessage `json:"images" gorm:"type:text"` // JSON array of URLs, max 5
	AuthorName   string          `json:"author_name" gorm:"not null"`
	AuthorRole   string          `json:"author_role"`
	Status       string          `json:"status" gorm:"not null;index;size:20;default:DRAFT"`
	Featured     bool            `json:"featured" gorm:"default:false"`
	Views        int64           `json:"views" gorm:"default:0;not null"`
	PublishedAt  *time.Time      `json:"published_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TagList decodes the stored tags array. A nil or corrupt column reads
// as no tags.
func (s *Story) TagList() []string {
	var tags []string
	if s.Tags != nil {
		if err := json.Unmarshal(s.Tags, &tags); err != nil {
			return nil
		}
	}
	return tags
}

// ImageList decodes the stored additional-image URL array.
func (s *Story) ImageList() []string {
	var images []string
	if s.Images != nil {
		if err := json.Unmarshal(s.Images, &images); err != nil {
			return nil
		}
	}
	return images
}
