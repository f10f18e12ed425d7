package services

import (
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Piyush5784/maa-anapurna-trust-api/model"
)

// LogService appends structured failure records to the app_logs table
// and mirrors them to logrus. Writes are best-effort: a log-store
// failure never propagates to the operation being logged.
type LogService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const LOG_SVC = "log_svc"

// Metadata values longer than this are truncated before persisting so
// identifying fields never land in the log table whole.
const maxMetadataFieldLen = 120

func (svc LogService) Id() string {
	return LOG_SVC
}

func (svc *LogService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *LogService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *LogService) Error(source, message string, metadata map[string]interface{}) {
	svc.append("error", source, message, metadata)
}

func (svc *LogService) Warn(source, message string, metadata map[string]interface{}) {
	svc.append("warn", source, message, metadata)
}

// Recent returns the newest persisted log records, capped at limit.
func (svc *LogService) Recent(limit int) ([]model.AppLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return svc.sqlSvc.ListLogs(limit)
}

func (svc *LogService) append(level, source, message string, metadata map[string]interface{}) {
	truncated := truncateMetadata(metadata)

	entry := log.WithFields(log.Fields{"source": source})
	for k, v := range truncated {
		entry = entry.WithField(k, v)
	}
	if level == "error" {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	if svc.sqlSvc == nil {
		return
	}

	var raw []byte
	if len(truncated) > 0 {
		raw, _ = sonic.Marshal(truncated)
	}

	record := &model.AppLog{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Source:    source,
		Metadata:  raw,
		CreatedAt: time.Now(),
	}

	if err := svc.sqlSvc.AppendLog(record); err != nil {
		log.WithFields(log.Fields{
			"source": source,
			"error":  err.Error(),
		}).Warn("Failed to persist log record")
	}
}

func truncateMetadata(metadata map[string]interface{}) map[string]interface{} {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		if s, ok := v.(string); ok && len(s) > maxMetadataFieldLen {
			out[k] = s[:maxMetadataFieldLen] + "..."
			continue
		}
		out[k] = v
	}
	return out
}
