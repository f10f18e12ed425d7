package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

func newTestRateLimiter() *RateLimitService {
	svc := &RateLimitService{}
	svc.SetStore(NewMemoryCounterStore(0))
	svc.initDefaultConfigs()
	return svc
}

func TestCheckAndConsumeExhaustsQuota(t *testing.T) {
	svc := newTestRateLimiter()
	key := BucketKey("203.0.113.7", shared.RouteClassAdminMutation, "/api/v1/admin/stories")

	for i := 1; i <= 3; i++ {
		allowed, info, err := svc.CheckAndConsume(key, shared.RouteClassAdminMutation)
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d should be admitted", i)
		}
		if want := 3 - i; info.Remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i, info.Remaining, want)
		}
	}

	allowed, info, err := svc.CheckAndConsume(key, shared.RouteClassAdminMutation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("request over quota should be rejected")
	}
	if info.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", info.Remaining)
	}
	if info.ResetTime == nil {
		t.Fatal("rejection should carry a reset time")
	}
	if until := time.Until(*info.ResetTime); until <= 0 || until > time.Minute {
		t.Errorf("reset time %v away, want within the one minute window", until)
	}
}

func TestCheckAndConsumeWindowReset(t *testing.T) {
	svc := newTestRateLimiter()
	key := BucketKey("203.0.113.7", shared.RouteClassAuth, "/api/v1/auth/login")

	// Simulate an exhausted bucket whose window has already elapsed.
	stale := &Counter{
		RequestCount: 10,
		WindowStart:  time.Now().Add(-16 * time.Minute),
	}
	if err := svc.store.Put(key, stale); err != nil {
		t.Fatalf("seeding counter: %v", err)
	}

	allowed, info, err := svc.CheckAndConsume(key, shared.RouteClassAuth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("request after window reset should be admitted")
	}
	if info.Remaining != 9 {
		t.Errorf("remaining = %d, want 9 in the fresh window", info.Remaining)
	}
}

func TestBucketsIndependentAcrossClassAndPath(t *testing.T) {
	svc := newTestRateLimiter()

	mutationKey := BucketKey("203.0.113.7", shared.RouteClassAdminMutation, "/api/v1/admin/stories")
	for i := 0; i < 3; i++ {
		if allowed, _, _ := svc.CheckAndConsume(mutationKey, shared.RouteClassAdminMutation); !allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if allowed, _, _ := svc.CheckAndConsume(mutationKey, shared.RouteClassAdminMutation); allowed {
		t.Fatal("mutation bucket should be exhausted")
	}

	// Same client, same class, different path: fresh bucket.
	otherPath := BucketKey("203.0.113.7", shared.RouteClassAdminMutation, "/api/v1/admin/stories/abc")
	if allowed, _, _ := svc.CheckAndConsume(otherPath, shared.RouteClassAdminMutation); !allowed {
		t.Error("a different path should not share the exhausted bucket")
	}

	// Same client, same path, different class: fresh bucket.
	generalKey := BucketKey("203.0.113.7", shared.RouteClassGeneral, "/api/v1/admin/stories")
	if allowed, _, _ := svc.CheckAndConsume(generalKey, shared.RouteClassGeneral); !allowed {
		t.Error("a different route class should not share the exhausted bucket")
	}
}

func TestUnknownRouteClassAdmitted(t *testing.T) {
	svc := newTestRateLimiter()

	allowed, info, err := svc.CheckAndConsume("k", "no_such_class")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("unknown route class should pass through")
	}
	if info.Remaining != -1 {
		t.Errorf("remaining = %d, want -1 for an untracked class", info.Remaining)
	}
}

type failingCounterStore struct{}

func (failingCounterStore) Get(string) (*Counter, error)  { return nil, errors.New("store down") }
func (failingCounterStore) Put(string, *Counter) error    { return errors.New("store down") }
func (failingCounterStore) Clear() error                  { return errors.New("store down") }
func (failingCounterStore) Size() int                     { return 0 }

func TestLimitFailsOpenOnStoreError(t *testing.T) {
	svc := &RateLimitService{}
	svc.SetStore(failingCounterStore{})
	svc.initDefaultConfigs()

	app := fiber.New()
	app.Get("/api/v1/stories", svc.Limit(shared.RouteClassGeneral), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/stories", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d when the store is unavailable", resp.StatusCode, http.StatusOK)
	}
}

func TestLimitRejectsWithRetryAfter(t *testing.T) {
	svc := newTestRateLimiter()

	app := fiber.New()
	app.Post("/api/v1/admin/stories", svc.Limit(shared.RouteClassAdminMutation), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	var resp *http.Response
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/stories", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		var err error
		resp, err = app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
	}

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("rejection should carry a Retry-After header")
	}
}

func TestClientKeyPrecedence(t *testing.T) {
	cases := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "forwarded first hop wins",
			headers:  map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.1", "X-Real-IP": "192.0.2.4"},
			expected: "198.51.100.9",
		},
		{
			name:     "real ip fallback",
			headers:  map[string]string{"X-Real-IP": "192.0.2.4"},
			expected: "192.0.2.4",
		},
		{
			name:     "no proxy headers",
			headers:  nil,
			expected: "unknown",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = ClientKey(c)
				return c.SendString("ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatalf("app.Test: %v", err)
			}

			if got != tc.expected {
				t.Errorf("client key = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestMemoryStoreClearsWholesaleAtCapacity(t *testing.T) {
	store := NewMemoryCounterStore(3)

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := store.Put(key, &Counter{RequestCount: 1, WindowStart: time.Now()}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	if store.Size() != 3 {
		t.Fatalf("size = %d, want 3", store.Size())
	}

	// A new key at capacity clears the whole table first.
	if err := store.Put("key-3", &Counter{RequestCount: 1, WindowStart: time.Now()}); err != nil {
		t.Fatalf("put key-3: %v", err)
	}
	if store.Size() != 1 {
		t.Errorf("size = %d after wholesale clear, want 1", store.Size())
	}

	c, err := store.Get("key-0")
	if err != nil {
		t.Fatalf("get key-0: %v", err)
	}
	if c != nil {
		t.Error("old keys should be gone after the wholesale clear")
	}
}

func TestMemoryStoreUpdateAtCapacityKeepsTable(t *testing.T) {
	store := NewMemoryCounterStore(2)

	_ = store.Put("a", &Counter{RequestCount: 1, WindowStart: time.Now()})
	_ = store.Put("b", &Counter{RequestCount: 1, WindowStart: time.Now()})

	// Updating an existing key at capacity must not clear anything.
	if err := store.Put("a", &Counter{RequestCount: 2, WindowStart: time.Now()}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if store.Size() != 2 {
		t.Errorf("size = %d, want 2", store.Size())
	}

	c, err := store.Get("a")
	if err != nil || c == nil {
		t.Fatalf("get a: counter=%v err=%v", c, err)
	}
	if c.RequestCount != 2 {
		t.Errorf("request count = %d, want 2", c.RequestCount)
	}
}
