package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Piyush5784/maa-anapurna-trust-api/model"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "anapurna_trust"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			host, user, password, dbname, port, sslmode)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	err = ds.db.AutoMigrate(
		&model.Story{},
		&model.Contact{},
		&model.User{},
		&model.PageVisit{},
		&model.PageStats{},
		&model.AppLog{},
	)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
}

// ==================== STORY QUERIES ====================

func (ds *PostgresService) CreateStory(story *model.Story) error {
	return ds.db.Create(story).Error
}

func (ds *PostgresService) UpdateStory(story *model.Story) error {
	return ds.db.Save(story).Error
}

func (ds *PostgresService) DeleteStory(id string) error {
	res := ds.db.Where("id = ?", id).Delete(&model.Story{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ds *PostgresService) GetStory(id string) (*model.Story, error) {
	var story model.Story
	if err := ds.db.Where("id = ?", id).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (ds *PostgresService) GetStoryBySlug(slug string) (*model.Story, error) {
	var story model.Story
	if err := ds.db.Where("slug = ?", slug).First(&story).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// SlugExists reports whether any other story already owns the slug.
// excludeID lets an update skip its own record.
func (ds *PostgresService) SlugExists(slug, excludeID string) (bool, error) {
	var count int64
	q := ds.db.Model(&model.Story{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ds *PostgresService) ListStories(status string, limit int) ([]model.Story, error) {
	var stories []model.Story
	q := ds.db.Model(&model.Story{}).
		Order("featured DESC, created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// IncrementStoryViews bumps the counter atomically so concurrent reads
// never lose a view.
func (ds *PostgresService) IncrementStoryViews(id string) error {
	return ds.db.Model(&model.Story{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// ==================== CONTACT QUERIES ====================

func (ds *PostgresService) CreateContact(contact *model.Contact) error {
	return ds.db.Create(contact).Error
}

func (ds *PostgresService) ListContacts(page, limit int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	if err := ds.db.Model(&model.Contact{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := ds.db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

// ==================== USER QUERIES ====================

func (ds *PostgresService) GetUser(id string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *PostgresService) CreateUser(user *model.User) error {
	return ds.db.Create(user).Error
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	return ds.db.Save(user).Error
}

// ==================== ANALYTICS QUERIES ====================

func (ds *PostgresService) CreatePageVisit(visit *model.PageVisit) error {
	return ds.db.Create(visit).Error
}

func (ds *PostgresService) UpsertPageStats(path string, visitedAt time.Time, newID string) error {
	var stats model.PageStats
	err := ds.db.Where("path = ?", path).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = model.PageStats{
			ID:          newID,
			Path:        path,
			VisitCount:  1,
			LastVisitAt: visitedAt,
		}
		return ds.db.Create(&stats).Error
	}
	if err != nil {
		return err
	}

	return ds.db.Model(&model.PageStats{}).
		Where("path = ?", path).
		Updates(map[string]interface{}{
			"visit_count":   gorm.Expr("visit_count + 1"),
			"last_visit_at": visitedAt,
		}).Error
}

func (ds *PostgresService) ListPageStats() ([]model.PageStats, error) {
	var stats []model.PageStats
	if err := ds.db.Order("visit_count DESC").Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (ds *PostgresService) TotalVisits() (int64, error) {
	var total int64
	err := ds.db.Model(&model.PageVisit{}).Count(&total).Error
	return total, err
}

// ==================== LOG QUERIES ====================

func (ds *PostgresService) AppendLog(entry *model.AppLog) error {
	return ds.db.Create(entry).Error
}

func (ds *PostgresService) ListLogs(limit int) ([]model.AppLog, error) {
	var logs []model.AppLog
	if limit <= 0 {
		limit = 100
	}
	if err := ds.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ==================== ERROR MAPPING ====================

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}
