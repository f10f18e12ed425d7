package dto

import "time"

type PageVisitRequest struct {
	Path     string `json:"path" validate:"required,max=500"`
	Referrer string `json:"referrer" validate:"omitempty,max=500"`
	Duration int    `json:"duration" validate:"omitempty,min=0"`
}

func (r PageVisitRequest) Validate() error {
	return validate.Struct(r)
}

type PageStatsResponse struct {
	Path        string    `json:"path"`
	VisitCount  int64     `json:"visit_count"`
	LastVisitAt time.Time `json:"last_visit_at"`
}

type SiteStatsResponse struct {
	TotalVisits int64               `json:"total_visits"`
	Pages       []PageStatsResponse `json:"pages"`
}
