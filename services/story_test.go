package services

import (
	stdContext "context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

type fakeStoryStorage struct {
	stories map[string]*model.Story
}

func newFakeStoryStorage() *fakeStoryStorage {
	return &fakeStoryStorage{stories: make(map[string]*model.Story)}
}

func (s *fakeStoryStorage) CreateStory(story *model.Story) error {
	for _, existing := range s.stories {
		if existing.Slug == story.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *story
	s.stories[story.ID] = &cp
	return nil
}

func (s *fakeStoryStorage) UpdateStory(story *model.Story) error {
	if _, ok := s.stories[story.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *story
	s.stories[story.ID] = &cp
	return nil
}

func (s *fakeStoryStorage) DeleteStory(id string) error {
	if _, ok := s.stories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.stories, id)
	return nil
}

func (s *fakeStoryStorage) GetStory(id string) (*model.Story, error) {
	story, ok := s.stories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *story
	return &cp, nil
}

func (s *fakeStoryStorage) GetStoryBySlug(slug string) (*model.Story, error) {
	for _, story := range s.stories {
		if story.Slug == slug {
			cp := *story
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStoryStorage) SlugExists(slug, excludeID string) (bool, error) {
	for _, story := range s.stories {
		if story.Slug == slug && story.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStoryStorage) ListStories(status string, limit int) ([]model.Story, error) {
	out := make([]model.Story, 0, len(s.stories))
	for _, story := range s.stories {
		if status != "" && story.Status != status {
			continue
		}
		out = append(out, *story)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStoryStorage) IncrementStoryViews(id string) error {
	story, ok := s.stories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	story.Views++
	return nil
}

type fakeImageStore struct {
	uploaded       []string
	deleted        []string
	deletedBackups []string
	backups        map[string][]byte
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{backups: make(map[string][]byte)}
}

func (s *fakeImageStore) UploadImage(prefix string, _ *multipart.FileHeader) (string, error) {
	u := fmt.Sprintf("https://assets.test/anapurna-assets/stories/%s_%d.jpg", prefix, len(s.uploaded))
	s.uploaded = append(s.uploaded, u)
	return u, nil
}

func (s *fakeImageStore) DeleteByURL(assetURL string) error {
	s.deleted = append(s.deleted, assetURL)
	return nil
}

func (s *fakeImageStore) UploadBackup(slug string, content []byte) error {
	s.backups[slug] = content
	return nil
}

func (s *fakeImageStore) FetchBackup(slug string) ([]byte, error) {
	content, ok := s.backups[slug]
	if !ok {
		return nil, errors.New("no such backup")
	}
	return content, nil
}

func (s *fakeImageStore) DeleteBackup(slug string) error {
	s.deletedBackups = append(s.deletedBackups, slug)
	delete(s.backups, slug)
	return nil
}

type fakeListingCache struct {
	store       map[string][]byte
	invalidated []string
	gets        int
}

func newFakeListingCache() *fakeListingCache {
	return &fakeListingCache{store: make(map[string][]byte)}
}

func (c *fakeListingCache) Get(_ stdContext.Context, key string) ([]byte, error) {
	c.gets++
	v, ok := c.store[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *fakeListingCache) Set(_ stdContext.Context, key string, value []byte, _ time.Duration) error {
	c.store[key] = value
	return nil
}

func (c *fakeListingCache) Invalidate(_ stdContext.Context, keys ...string) {
	for _, key := range keys {
		delete(c.store, key)
		c.invalidated = append(c.invalidated, key)
	}
}

func newTestStoryService() (*StoryService, *fakeStoryStorage, *fakeImageStore, *fakeListingCache) {
	storage := newFakeStoryStorage()
	images := newFakeImageStore()
	cache := newFakeListingCache()
	svc := &StoryService{
		storage: storage,
		images:  images,
		cache:   cache,
		logSvc:  &LogService{},
	}
	return svc, storage, images, cache
}

func validCreateRequest(title string) dto.CreateStoryRequest {
	return dto.CreateStoryRequest{
		Title:      title,
		Excerpt:    "A short summary of the work on the ground.",
		Content:    "The long form account of what happened.",
		Category:   shared.StoryCategoryCommunity,
		AuthorName: "Field Team",
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Community Outreach Program", "community-outreach-program"},
		{"  Mid Day Meals: 2026!  ", "mid-day-meals-2026"},
		{"École & Café", "cole-caf"},
		{"!!!", "story"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestCreateResolvesSlugCollisions(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	first, err := svc.Create(validCreateRequest("Community Outreach Program"), nil, nil)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Slug != "community-outreach-program" {
		t.Errorf("first slug = %q, want the plain base", first.Slug)
	}

	second, err := svc.Create(validCreateRequest("Community Outreach Program"), nil, nil)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Slug != "community-outreach-program-1" {
		t.Errorf("second slug = %q, want the -1 suffix", second.Slug)
	}

	third, err := svc.Create(validCreateRequest("Community Outreach Program"), nil, nil)
	if err != nil {
		t.Fatalf("third create: %v", err)
	}
	if third.Slug != "community-outreach-program-2" {
		t.Errorf("third slug = %q, want the -2 suffix", third.Slug)
	}
}

func TestUpdateKeepsOwnSlug(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Community Outreach Program"), nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Re-submitting the same title must not suffix against the story's
	// own row.
	title := "Community Outreach Program"
	updated, err := svc.Update(created.ID, dto.UpdateStoryRequest{Title: &title}, nil, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "community-outreach-program" {
		t.Errorf("slug = %q, want the original slug kept", updated.Slug)
	}
}

func TestPublishedAtSetOnceAcrossToggles(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Community Outreach Program"), nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != shared.StoryStatusDraft {
		t.Fatalf("status = %q, want DRAFT default", created.Status)
	}
	if created.PublishedAt != nil {
		t.Fatal("a draft should have no publish timestamp")
	}

	published, err := svc.ToggleStatus(created.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if published.Status != shared.StoryStatusPublished {
		t.Fatalf("status = %q, want PUBLISHED", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatal("publishing should set the publish timestamp")
	}
	firstPublish := *published.PublishedAt

	unpublished, err := svc.ToggleStatus(created.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if unpublished.Status != shared.StoryStatusDraft {
		t.Fatalf("status = %q, want DRAFT after toggle back", unpublished.Status)
	}
	if unpublished.PublishedAt == nil || !unpublished.PublishedAt.Equal(firstPublish) {
		t.Error("unpublishing must not clear the original publish timestamp")
	}

	republished, err := svc.ToggleStatus(created.ID)
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if !republished.PublishedAt.Equal(firstPublish) {
		t.Error("republishing must keep the first publish timestamp")
	}
}

func TestToggleStatusRejectsArchived(t *testing.T) {
	svc, storage, _, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Old Annual Report"), nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	storage.stories[created.ID].Status = shared.StoryStatusArchived

	if _, err := svc.ToggleStatus(created.ID); err == nil {
		t.Fatal("toggling an archived story should fail")
	} else if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != 400 {
		t.Errorf("error = %v, want a 400 app error", err)
	}
}

func TestViewsCountEveryFetch(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Free Health Camp"), nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var last *dto.StoryResponse
	for i := 0; i < 5; i++ {
		last, err = svc.GetBySlug(created.Slug)
		if err != nil {
			t.Fatalf("fetch %d: %v", i+1, err)
		}
	}

	if last.Views != 5 {
		t.Errorf("views = %d after 5 fetches, want 5", last.Views)
	}

	// Fetch by ID counts too, including admin previews.
	byID, err := svc.GetByID(created.ID)
	if err != nil {
		t.Fatalf("fetch by id: %v", err)
	}
	if byID.Views != 6 {
		t.Errorf("views = %d after a sixth fetch, want 6", byID.Views)
	}
}

func TestUpdateReplacesImageSetWhole(t *testing.T) {
	svc, _, images, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Evening Classes Open"), nil,
		[]*multipart.FileHeader{{Filename: "a.jpg"}, {Filename: "b.jpg"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(created.Images))
	}
	oldImages := created.Images

	updated, err := svc.Update(created.ID, dto.UpdateStoryRequest{},
		nil, []*multipart.FileHeader{{Filename: "c.jpg"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Images) != 1 {
		t.Fatalf("images = %d after replacement, want 1", len(updated.Images))
	}
	for _, old := range oldImages {
		if updated.Images[0] == old {
			t.Error("replacement should not keep any member of the old set")
		}
	}

	deleted := make(map[string]int)
	for _, u := range images.deleted {
		deleted[u]++
	}
	for _, old := range oldImages {
		if deleted[old] != 1 {
			t.Errorf("old image %q deleted %d times, want exactly once", old, deleted[old])
		}
	}
}

func TestCreateRejectsTooManyImages(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	files := make([]*multipart.FileHeader, shared.MaxStoryImages+1)
	for i := range files {
		files[i] = &multipart.FileHeader{Filename: fmt.Sprintf("img-%d.jpg", i)}
	}

	if _, err := svc.Create(validCreateRequest("Gallery Heavy Story"), nil, files); err == nil {
		t.Fatal("create with too many images should fail")
	}
}

func TestDeleteRemovesAssetsAndBackup(t *testing.T) {
	svc, storage, images, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Mid Day Meal Drive"),
		&multipart.FileHeader{Filename: "cover.jpg"},
		[]*multipart.FileHeader{{Filename: "a.jpg"}, {Filename: "b.jpg"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := storage.stories[created.ID]; ok {
		t.Error("record should be gone after delete")
	}
	if len(images.deleted) != 3 {
		t.Errorf("deleted %d assets, want 3 (cover plus two images)", len(images.deleted))
	}

	found := false
	for _, slug := range images.deletedBackups {
		if slug == created.Slug {
			found = true
		}
	}
	if !found {
		t.Error("delete should remove the markdown backup")
	}
}

func TestBackupWrittenAndDownloadable(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Mid Day Meal Drive"), nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	content, err := svc.DownloadBackup(created.Slug)
	if err != nil {
		t.Fatalf("download backup: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("backup should not be empty")
	}
	if want := "title: Mid Day Meal Drive"; !strings.Contains(string(content), want) {
		t.Errorf("backup missing front matter line %q", want)
	}
}

func TestListAllServedFromCacheUntilInvalidated(t *testing.T) {
	svc, storage, _, cache := newTestStoryService()

	created, err := svc.Create(validCreateRequest("Free Health Camp"), nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ToggleStatus(created.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	first, err := svc.ListAll(shared.StoryStatusPublished, 0)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if first.Total != 1 {
		t.Fatalf("total = %d, want 1", first.Total)
	}

	// Mutate storage behind the cache: a cached listing must not see it.
	storage.stories[created.ID].Title = "Renamed Behind The Cache"

	second, err := svc.ListAll(shared.StoryStatusPublished, 0)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if second.Stories[0].Title != "Free Health Camp" {
		t.Error("second list should be served from cache")
	}

	cache.Invalidate(stdContext.Background(), shared.CacheKeyPublicStories)

	third, err := svc.ListAll(shared.StoryStatusPublished, 0)
	if err != nil {
		t.Fatalf("third list: %v", err)
	}
	if third.Stories[0].Title != "Renamed Behind The Cache" {
		t.Error("after invalidation the list should come from storage")
	}
}

func TestListAllRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestStoryService()

	if _, err := svc.ListAll("published", 0); err == nil {
		t.Fatal("lowercase status should be rejected, statuses are uppercase")
	}
}
