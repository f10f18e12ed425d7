package services

import (
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// AnalyticsService ingests the page-view beacon fired on tab close and
// keeps the per-path rollup the admin dashboard reads.
type AnalyticsService struct {
	context.DefaultService

	sqlSvc *PostgresService
	logSvc *LogService
}

const ANALYTICS_SVC = "analytics_svc"

func (svc AnalyticsService) Id() string {
	return ANALYTICS_SVC
}

func (svc *AnalyticsService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AnalyticsService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.logSvc = svc.Service(LOG_SVC).(*LogService)
	return nil
}

func (svc *AnalyticsService) RecordVisit(req dto.PageVisitRequest, clientIP, userAgent string) error {
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(dto.FormatValidationErrors(err))
	}

	now := time.Now()
	visit := &model.PageVisit{
		ID:        uuid.NewString(),
		Path:      req.Path,
		Referrer:  req.Referrer,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		Duration:  req.Duration,
		CreatedAt: now,
	}

	if err := svc.sqlSvc.CreatePageVisit(visit); err != nil {
		svc.logSvc.Error(ANALYTICS_SVC, "Failed to record page visit", map[string]interface{}{
			"path":  req.Path,
			"error": err.Error(),
		})
		return shared.NewInternalError(err, "Something went wrong")
	}

	// Rollup failure leaves the raw visit intact; the stats page can
	// be rebuilt from visits if it drifts.
	if err := svc.sqlSvc.UpsertPageStats(req.Path, now, uuid.NewString()); err != nil {
		svc.logSvc.Warn(ANALYTICS_SVC, "Failed to update page stats", map[string]interface{}{
			"path":  req.Path,
			"error": err.Error(),
		})
	}

	return nil
}

func (svc *AnalyticsService) SiteStats() (*dto.SiteStatsResponse, error) {
	total, err := svc.sqlSvc.TotalVisits()
	if err != nil {
		return nil, shared.NewInternalError(err, "Something went wrong")
	}

	stats, err := svc.sqlSvc.ListPageStats()
	if err != nil {
		return nil, shared.NewInternalError(err, "Something went wrong")
	}

	pages := make([]dto.PageStatsResponse, len(stats))
	for i, s := range stats {
		pages[i] = dto.PageStatsResponse{
			Path:        s.Path,
			VisitCount:  s.VisitCount,
			LastVisitAt: s.LastVisitAt,
		}
	}

	return &dto.SiteStatsResponse{TotalVisits: total, Pages: pages}, nil
}
