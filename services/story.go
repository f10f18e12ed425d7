package services

import (
	stdContext "context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// StoryStorage is the slice of the query layer the publisher needs.
type StoryStorage interface {
	CreateStory(story *model.Story) error
	UpdateStory(story *model.Story) error
	DeleteStory(id string) error
	GetStory(id string) (*model.Story, error)
	GetStoryBySlug(slug string) (*model.Story, error)
	SlugExists(slug, excludeID string) (bool, error)
	ListStories(status string, limit int) ([]model.Story, error)
	IncrementStoryViews(id string) error
}

// ImageStore is the external asset host contract.
type ImageStore interface {
	UploadImage(prefix string, file *multipart.FileHeader) (string, error)
	DeleteByURL(assetURL string) error
	UploadBackup(slug string, content []byte) error
	FetchBackup(slug string) ([]byte, error)
	DeleteBackup(slug string) error
}

// ListingCache serves the public/admin listings and receives
// invalidation signals after mutations.
type ListingCache interface {
	Get(ctx stdContext.Context, key string) ([]byte, error)
	Set(ctx stdContext.Context, key string, value []byte, expiration time.Duration) error
	Invalidate(ctx stdContext.Context, keys ...string)
}

// StoryService is the content publisher: it validates, persists and
// evolves stories, coordinating slug uniqueness, external image assets
// and listing-cache invalidation.
type StoryService struct {
	context.DefaultService

	storage StoryStorage
	images  ImageStore
	cache   ListingCache
	logSvc  *LogService
	monitor *MonitoringService
}

const STORY_SVC = "story_svc"

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

func (svc StoryService) Id() string {
	return STORY_SVC
}

func (svc *StoryService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *StoryService) Start() error {
	svc.storage = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.images = svc.Service(MINIO_SVC).(*MinIOService)
	svc.cache = svc.Service(REDIS_SVC).(*RedisService)
	svc.logSvc = svc.Service(LOG_SVC).(*LogService)
	svc.monitor = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ==================== CREATE ====================

func (svc *StoryService) Create(req dto.CreateStoryRequest, coverImage *multipart.FileHeader, images []*multipart.FileHeader) (*dto.StoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(dto.FormatValidationErrors(err))
	}
	if len(images) > shared.MaxStoryImages {
		return nil, shared.NewBadRequestError(nil,
			fmt.Sprintf("At most %d additional images are allowed", shared.MaxStoryImages))
	}

	status := req.Status
	if status == "" {
		status = shared.StoryStatusDraft
	}

	slug, err := svc.resolveSlug(req.Title, "")
	if err != nil {
		return nil, svc.internalFailure("create", req.Title, err)
	}

	story := &model.Story{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Slug:         slug,
		Excerpt:      req.Excerpt,
		Content:      req.Content,
		ContentExtra: req.ContentExtra,
		Category:     req.Category,
		Tags:         marshalList(req.Tags),
		AuthorName:   req.AuthorName,
		AuthorRole:   req.AuthorRole,
		Status:       status,
		Featured:     req.Featured,
	}

	if status == shared.StoryStatusPublished {
		now := time.Now()
		story.PublishedAt = &now
	}

	if coverImage != nil {
		coverURL, err := svc.images.UploadImage(story.ID+"_cover", coverImage)
		if err != nil {
			return nil, svc.internalFailure("create", req.Title, err)
		}
		story.CoverImage = &coverURL
	}

	if len(images) > 0 {
		urls, err := svc.uploadAdditionalImages(story.ID, images)
		if err != nil {
			return nil, svc.internalFailure("create", req.Title, err)
		}
		story.Images = marshalList(urls)
	}

	if err := svc.persistNewStory(story); err != nil {
		return nil, svc.internalFailure("create", req.Title, err)
	}

	svc.writeBackup(story)
	svc.invalidateListings()

	return mapStoryToResponse(story), nil
}

// persistNewStory writes the record; a unique-constraint race on the
// slug (concurrent identical-title creates) gets one retry with the
// next numeric suffix.
func (svc *StoryService) persistNewStory(story *model.Story) error {
	err := svc.storage.CreateStory(story)
	if err == nil {
		return nil
	}
	if !isDuplicateKey(err) {
		return err
	}

	retrySlug, slugErr := svc.resolveSlug(story.Title, "")
	if slugErr != nil {
		return err
	}
	story.Slug = retrySlug
	return svc.storage.CreateStory(story)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key value")
}

// ==================== UPDATE ====================

func (svc *StoryService) Update(id string, req dto.UpdateStoryRequest, coverImage *multipart.FileHeader, images []*multipart.FileHeader) (*dto.StoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(dto.FormatValidationErrors(err))
	}
	if len(images) > shared.MaxStoryImages {
		return nil, shared.NewBadRequestError(nil,
			fmt.Sprintf("At most %d additional images are allowed", shared.MaxStoryImages))
	}

	story, err := svc.storage.GetStory(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(err, "Story not found")
	}
	if err != nil {
		return nil, svc.internalFailure("update", id, err)
	}

	previousSlug := story.Slug

	if req.Title != nil && *req.Title != story.Title {
		story.Title = *req.Title
		slug, err := svc.resolveSlug(*req.Title, story.ID)
		if err != nil {
			return nil, svc.internalFailure("update", id, err)
		}
		story.Slug = slug
	}

	if req.Excerpt != nil {
		story.Excerpt = *req.Excerpt
	}
	if req.Content != nil {
		story.Content = *req.Content
	}
	if req.ContentExtra != nil {
		story.ContentExtra = *req.ContentExtra
	}
	if req.Category != nil {
		story.Category = *req.Category
	}
	if req.Tags != nil {
		story.Tags = marshalList(req.Tags)
	}
	if req.AuthorName != nil {
		story.AuthorName = *req.AuthorName
	}
	if req.AuthorRole != nil {
		story.AuthorRole = *req.AuthorRole
	}
	if req.Featured != nil {
		story.Featured = *req.Featured
	}

	if req.Status != nil && *req.Status != story.Status {
		// publishedAt is written once, on the first transition into
		// PUBLISHED, and never cleared or overwritten afterwards.
		if *req.Status == shared.StoryStatusPublished && story.PublishedAt == nil {
			now := time.Now()
			story.PublishedAt = &now
		}
		story.Status = *req.Status
	}

	if coverImage != nil {
		if story.CoverImage != nil {
			svc.deleteAssets("update", []string{*story.CoverImage})
		}
		coverURL, err := svc.images.UploadImage(story.ID+"_cover", coverImage)
		if err != nil {
			return nil, svc.internalFailure("update", id, err)
		}
		story.CoverImage = &coverURL
	}

	if len(images) > 0 {
		// The previous set is replaced whole; no per-image diffing.
		svc.deleteAssets("update", story.ImageList())
		urls, err := svc.uploadAdditionalImages(story.ID, images)
		if err != nil {
			return nil, svc.internalFailure("update", id, err)
		}
		story.Images = marshalList(urls)
	}

	if err := svc.storage.UpdateStory(story); err != nil {
		return nil, svc.internalFailure("update", id, err)
	}

	if previousSlug != story.Slug {
		if err := svc.images.DeleteBackup(previousSlug); err != nil {
			svc.logSvc.Warn(STORY_SVC, "Failed to remove stale backup", map[string]interface{}{
				"slug":  previousSlug,
				"error": err.Error(),
			})
		}
	}
	svc.writeBackup(story)
	svc.invalidateListings()

	return mapStoryToResponse(story), nil
}

// ==================== DELETE ====================

func (svc *StoryService) Delete(id string) error {
	story, err := svc.storage.GetStory(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(err, "Story not found")
	}
	if err != nil {
		return svc.internalFailure("delete", id, err)
	}

	assets := story.ImageList()
	if story.CoverImage != nil {
		assets = append(assets, *story.CoverImage)
	}
	svc.deleteAssets("delete", assets)

	if err := svc.images.DeleteBackup(story.Slug); err != nil {
		svc.logSvc.Warn(STORY_SVC, "Failed to remove backup", map[string]interface{}{
			"slug":  story.Slug,
			"error": err.Error(),
		})
	}

	if err := svc.storage.DeleteStory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "Story not found")
		}
		return svc.internalFailure("delete", id, err)
	}

	svc.invalidateListings()
	return nil
}

// ==================== READS ====================

// GetByID fetches one story, counting the fetch as a view. Every
// successful fetch counts, including admin previews and refreshes.
func (svc *StoryService) GetByID(id string) (*dto.StoryResponse, error) {
	story, err := svc.storage.GetStory(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(err, "Story not found")
	}
	if err != nil {
		return nil, svc.internalFailure("get", id, err)
	}

	svc.countView(story)
	return mapStoryToResponse(story), nil
}

func (svc *StoryService) GetBySlug(slug string) (*dto.StoryResponse, error) {
	story, err := svc.storage.GetStoryBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(err, "Story not found")
	}
	if err != nil {
		return nil, svc.internalFailure("get", slug, err)
	}

	svc.countView(story)
	return mapStoryToResponse(story), nil
}

func (svc *StoryService) countView(story *model.Story) {
	if err := svc.storage.IncrementStoryViews(story.ID); err != nil {
		svc.logSvc.Warn(STORY_SVC, "Failed to count view", map[string]interface{}{
			"story_id": story.ID,
			"error":    err.Error(),
		})
		return
	}
	story.Views++
	if svc.monitor != nil {
		svc.monitor.RecordStoryView()
	}
}

// ListAll returns stories featured-first, then newest-first, optionally
// filtered to one status and capped in count. The uncapped public and
// admin listings are served from cache between mutations.
func (svc *StoryService) ListAll(statusFilter string, limit int) (*dto.StoryListResponse, error) {
	if statusFilter != "" && !contains(shared.ValidStoryStatuses(), statusFilter) {
		return nil, shared.NewBadRequestError(nil, "Unknown status filter")
	}

	cacheKey := listingCacheKey(statusFilter, limit)
	if cacheKey != "" {
		if cached, err := svc.cache.Get(stdContext.Background(), cacheKey); err == nil {
			var resp dto.StoryListResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				return &resp, nil
			}
		}
	}

	stories, err := svc.storage.ListStories(statusFilter, limit)
	if err != nil {
		return nil, svc.internalFailure("list", statusFilter, err)
	}

	responses := make([]dto.StoryResponse, len(stories))
	for i := range stories {
		responses[i] = *mapStoryToResponse(&stories[i])
	}

	resp := &dto.StoryListResponse{Stories: responses, Total: len(responses)}

	if cacheKey != "" {
		if raw, err := json.Marshal(resp); err == nil {
			_ = svc.cache.Set(stdContext.Background(), cacheKey, raw, 10*time.Minute)
		}
	}

	return resp, nil
}

func listingCacheKey(statusFilter string, limit int) string {
	if limit > 0 {
		return ""
	}
	switch statusFilter {
	case shared.StoryStatusPublished:
		return shared.CacheKeyPublicStories
	case "":
		return shared.CacheKeyAdminStories
	}
	return ""
}

// ==================== STATUS TOGGLE ====================

// ToggleStatus flips DRAFT and PUBLISHED. ARCHIVED stories are not
// togglable; archive transitions go through Update.
func (svc *StoryService) ToggleStatus(id string) (*dto.StoryResponse, error) {
	story, err := svc.storage.GetStory(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError(err, "Story not found")
	}
	if err != nil {
		return nil, svc.internalFailure("toggle_status", id, err)
	}

	switch story.Status {
	case shared.StoryStatusDraft:
		story.Status = shared.StoryStatusPublished
		if story.PublishedAt == nil {
			now := time.Now()
			story.PublishedAt = &now
		}
	case shared.StoryStatusPublished:
		story.Status = shared.StoryStatusDraft
	default:
		return nil, shared.NewBadRequestError(nil, "Archived stories cannot be toggled")
	}

	if err := svc.storage.UpdateStory(story); err != nil {
		return nil, svc.internalFailure("toggle_status", id, err)
	}

	svc.invalidateListings()
	return mapStoryToResponse(story), nil
}

// ==================== BACKUPS ====================

// DownloadBackup streams the markdown backup for a slug.
func (svc *StoryService) DownloadBackup(slug string) ([]byte, error) {
	data, err := svc.images.FetchBackup(slug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "No backup found for this story")
	}
	return data, nil
}

// writeBackup renders and stores the markdown backup. Best-effort: a
// backup failure never blocks the mutation that triggered it.
func (svc *StoryService) writeBackup(story *model.Story) {
	if err := svc.images.UploadBackup(story.Slug, renderMarkdown(story)); err != nil {
		svc.logSvc.Warn(STORY_SVC, "Failed to write markdown backup", map[string]interface{}{
			"story_id": story.ID,
			"slug":     story.Slug,
			"error":    err.Error(),
		})
	}
}

func renderMarkdown(story *model.Story) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + story.Title + "\n")
	b.WriteString("slug: " + story.Slug + "\n")
	b.WriteString("category: " + story.Category + "\n")
	b.WriteString("author: " + story.AuthorName + "\n")
	b.WriteString("status: " + story.Status + "\n")
	if tags := story.TagList(); len(tags) > 0 {
		b.WriteString("tags: " + strings.Join(tags, ", ") + "\n")
	}
	b.WriteString("---\n\n")
	b.WriteString("# " + story.Title + "\n\n")
	if story.Excerpt != "" {
		b.WriteString("> " + story.Excerpt + "\n\n")
	}
	b.WriteString(story.Content + "\n")
	if story.ContentExtra != "" {
		b.WriteString("\n" + story.ContentExtra + "\n")
	}
	return []byte(b.String())
}

// ==================== SLUGS ====================

// Slugify lowercases the title and collapses every non-alphanumeric
// run into a single hyphen.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStripPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "story"
	}
	return slug
}

// resolveSlug finds the first free slug for a title, suffixing an
// incrementing integer on collision. excludeID lets an update keep its
// own slug. The loop is bounded only by the number of existing
// collisions.
func (svc *StoryService) resolveSlug(title, excludeID string) (string, error) {
	base := Slugify(title)

	slug := base
	for i := 1; ; i++ {
		exists, err := svc.storage.SlugExists(slug, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// ==================== HELPERS ====================

// assetDeleteOutcome records one URL's delete attempt so bulk deletes
// stay best-effort but observable.
type assetDeleteOutcome struct {
	URL string
	Err error
}

// deleteAssets removes every URL from external storage, continuing on
// error. Failures are logged; an orphaned asset is preferable to
// blocking the mutation the caller requested.
func (svc *StoryService) deleteAssets(operation string, urls []string) []assetDeleteOutcome {
	outcomes := make([]assetDeleteOutcome, 0, len(urls))
	for _, assetURL := range urls {
		err := svc.images.DeleteByURL(assetURL)
		outcomes = append(outcomes, assetDeleteOutcome{URL: assetURL, Err: err})
		if err != nil {
			svc.logSvc.Warn(STORY_SVC, "Failed to delete image asset", map[string]interface{}{
				"operation": operation,
				"url":       assetURL,
				"error":     err.Error(),
			})
		}
	}
	return outcomes
}

func (svc *StoryService) uploadAdditionalImages(storyID string, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i, file := range files {
		u, err := svc.images.UploadImage(fmt.Sprintf("%s_img%d", storyID, i), file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// internalFailure logs the unexpected error with truncated identifying
// fields and returns the generic user-facing failure.
func (svc *StoryService) internalFailure(operation, subject string, err error) error {
	svc.logSvc.Error(STORY_SVC, "Story operation failed", map[string]interface{}{
		"operation": operation,
		"subject":   subject,
		"error":     err.Error(),
	})
	return shared.NewInternalError(err, "Something went wrong")
}

func (svc *StoryService) invalidateListings() {
	svc.cache.Invalidate(stdContext.Background(),
		shared.CacheKeyPublicStories, shared.CacheKeyAdminStories)
}

func marshalList(items []string) json.RawMessage {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return raw
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func mapStoryToResponse(story *model.Story) *dto.StoryResponse {
	return &dto.StoryResponse{
		ID:           story.ID,
		Title:        story.Title,
		Slug:         story.Slug,
		Excerpt:      story.Excerpt,
		Content:      story.Content,
		ContentExtra: story.ContentExtra,
		Category:     story.Category,
		Tags:         story.TagList(),
		CoverImage:   story.CoverImage,
		Images:       story.ImageList(),
		AuthorName:   story.AuthorName,
		AuthorRole:   story.AuthorRole,
		Status:       story.Status,
		Featured:     story.Featured,
		Views:        story.Views,
		PublishedAt:  story.PublishedAt,
		CreatedAt:    story.CreatedAt,
		UpdatedAt:    story.UpdatedAt,
	}
}
