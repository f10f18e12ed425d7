package dto

import "time"

type CreateStoryRequest struct {
	Title        string   `json:"title" form:"title" validate:"required,max=200"`
	Excerpt      string   `json:"excerpt" form:"excerpt" validate:"required,max=500"`
	Content      string   `json:"content" form:"content" validate:"required"`
	ContentExtra string   `json:"content_extra" form:"content_extra"`
	Category     string   `json:"category" form:"category" validate:"required,oneof=education healthcare food_relief environment community"`
	Tags         []string `json:"tags" form:"tags" validate:"omitempty,max=10,dive,max=50"`
	AuthorName   string   `json:"author_name" form:"author_name" validate:"required,max=100"`
	AuthorRole   string   `json:"author_role" form:"author_role" validate:"omitempty,max=100"`
	Status       string   `json:"status" form:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Featured     bool     `json:"featured" form:"featured"`
}

func (r CreateStoryRequest) Validate() error {
	return validate.Struct(r)
}

type UpdateStoryRequest struct {
	Title        *string  `json:"title" form:"title" validate:"omitempty,max=200"`
	Excerpt      *string  `json:"excerpt" form:"excerpt" validate:"omitempty,max=500"`
	Content      *string  `json:"content" form:"content"`
	ContentExtra *string  `json:"content_extra" form:"content_extra"`
	Category     *string  `json:"category" form:"category" validate:"omitempty,oneof=education healthcare food_relief environment community"`
	Tags         []string `json:"tags" form:"tags" validate:"omitempty,max=10,dive,max=50"`
	AuthorName   *string  `json:"author_name" form:"author_name" validate:"omitempty,max=100"`
	AuthorRole   *string  `json:"author_role" form:"author_role" validate:"omitempty,max=100"`
	Status       *string  `json:"status" form:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Featured     *bool    `json:"featured" form:"featured"`
}

func (r UpdateStoryRequest) Validate() error {
	return validate.Struct(r)
}

type StoryResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Excerpt      string     `json:"excerpt"`
	Content      string     `json:"content"`
	ContentExtra string     `json:"content_extra,omitempty"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	CoverImage   *string    `json:"cover_image,omitempty"`
	Images       []string   `json:"images"`
	AuthorName   string     `json:"author_name"`
	AuthorRole   string     `json:"author_role,omitempty"`
	Status       string     `json:"status"`
	Featured     bool       `json:"featured"`
	Views        int64      `json:"views"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type StoryListResponse struct {
	Stories []StoryResponse `json:"stories"`
	Total   int             `json:"total"`
}
