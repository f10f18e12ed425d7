package services

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/Piyush5784/maa-anapurna-trust-api/dto"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// RouteQuota is one route class's budget.
type RouteQuota struct {
	RouteClass  string        `json:"route_class"`
	MaxRequests int           `json:"max_requests"`
	WindowSize  time.Duration `json:"window_size"`
	Description string        `json:"description"`
}

// Counter is the per-key window state. It lives only in the store;
// nothing else mutates it.
type Counter struct {
	RequestCount int
	WindowStart  time.Time
}

// CounterStore abstracts the counter table so the in-process map can be
// swapped for a shared store without touching call sites. A nil counter
// from Get means the key is fresh.
type CounterStore interface {
	Get(key string) (*Counter, error)
	Put(key string, c *Counter) error
	Clear() error
	Size() int
}

// MemoryCounterStore holds counters in one process. When the table
// grows past maxEntries it is cleared wholesale rather than evicted
// per key; long-idle keys may transiently regain quota, which the
// fail-open policy accepts.
type MemoryCounterStore struct {
	mu         sync.Mutex
	counters   map[string]*Counter
	maxEntries int
}

const DefaultMaxCounterEntries = 10000

func NewMemoryCounterStore(maxEntries int) *MemoryCounterStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCounterEntries
	}
	return &MemoryCounterStore{
		counters:   make(map[string]*Counter),
		maxEntries: maxEntries,
	}
}

func (s *MemoryCounterStore) Get(key string) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryCounterStore) Put(key string, c *Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.counters[key]; !exists && len(s.counters) >= s.maxEntries {
		s.counters = make(map[string]*Counter)
	}

	cp := *c
	s.counters[key] = &cp
	return nil
}

func (s *MemoryCounterStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]*Counter)
	return nil
}

func (s *MemoryCounterStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// RateLimitService is the request gatekeeper: per-route-class quotas
// keyed by client and path, enforced before business logic runs.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RouteQuota
	mutex   sync.RWMutex

	store   CounterStore
	monitor *MonitoringService
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc *RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RouteQuota)
	if svc.store == nil {
		svc.store = NewMemoryCounterStore(DefaultMaxCounterEntries)
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.initDefaultConfigs()
	svc.monitor = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// SetStore injects a counter backend. Used by tests and available for a
// shared-store deployment.
func (svc *RateLimitService) SetStore(store CounterStore) {
	svc.store = store
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RouteQuota{
		shared.RouteClassAuth: {
			RouteClass:  shared.RouteClassAuth,
			MaxRequests: 10,
			WindowSize:  15 * time.Minute,
			Description: "Sign-in and OAuth callback rate limit",
		},
		shared.RouteClassAdminMutation: {
			RouteClass:  shared.RouteClassAdminMutation,
			MaxRequests: 3,
			WindowSize:  time.Minute,
			Description: "Upload and admin mutation rate limit",
		},
		shared.RouteClassGeneral: {
			RouteClass:  shared.RouteClassGeneral,
			MaxRequests: 100,
			WindowSize:  15 * time.Minute,
			Description: "General API rate limit per IP",
		},
	}
}

// BucketKey combines the client with the route class AND the concrete
// path, so two admin-sensitive endpoints never share one bucket.
func BucketKey(clientKey, routeClass, path string) string {
	return fmt.Sprintf("%s:%s:%s", clientKey, routeClass, path)
}

// CheckAndConsume admits or rejects one request against the key's
// bucket. Unknown route classes are allowed through.
func (svc *RateLimitService) CheckAndConsume(key, routeClass string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[routeClass]
	svc.mutex.RUnlock()

	if !exists {
		return true, &dto.RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	now := time.Now()

	counter, err := svc.store.Get(key)
	if err != nil {
		return false, nil, err
	}

	// Fresh key, or the window has elapsed: start a new window with
	// this request already counted.
	if counter == nil || now.Sub(counter.WindowStart) >= config.WindowSize {
		counter = &Counter{RequestCount: 1, WindowStart: now}
		if err := svc.store.Put(key, counter); err != nil {
			return false, nil, err
		}

		resetTime := now.Add(config.WindowSize)
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: config.MaxRequests - 1,
			ResetTime: &resetTime,
		}, nil
	}

	resetTime := counter.WindowStart.Add(config.WindowSize)

	if counter.RequestCount >= config.MaxRequests {
		return false, &dto.RateLimitInfo{
			Allowed:   false,
			Remaining: 0,
			ResetTime: &resetTime,
		}, nil
	}

	counter.RequestCount++
	if err := svc.store.Put(key, counter); err != nil {
		return false, nil, err
	}

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - counter.RequestCount,
		ResetTime: &resetTime,
	}, nil
}

// Limit wraps a route class as fiber middleware. Store failures fail
// open: availability beats strict quota enforcement.
func (svc *RateLimitService) Limit(routeClass string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := BucketKey(ClientKey(c), routeClass, c.Path())

		allowed, info, err := svc.CheckAndConsume(key, routeClass)
		if err != nil {
			log.WithFields(log.Fields{
				"route_class": routeClass,
				"path":        c.Path(),
				"error":       err.Error(),
			}).Warn("Rate limit check failed, allowing request")
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, routeClass, info)
		}

		return c.Next()
	}
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, routeClass string, info *dto.RateLimitInfo) error {
	if svc.monitor != nil {
		svc.monitor.RecordRateLimitRejection(routeClass)
	}

	message := rateLimitMessage(routeClass)

	response := map[string]interface{}{
		"error":   "Rate limit exceeded",
		"message": message,
	}

	if info.ResetTime != nil {
		retryAfter := int(time.Until(*info.ResetTime).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}
		c.Set("Retry-After", strconv.Itoa(retryAfter))
		response["retry_after"] = retryAfter
	}

	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, response)
}

func rateLimitMessage(routeClass string) string {
	switch routeClass {
	case shared.RouteClassAuth:
		return "Too many sign-in attempts. Please try again later."
	case shared.RouteClassAdminMutation:
		return "Too many changes in a short time. Please slow down."
	default:
		return "Too many requests. Please try again later."
	}
}

// ClientKey derives the quota identity for a request: the first hop of
// X-Forwarded-For, then X-Real-IP, then the literal "unknown" sentinel
// when neither proxy header is present.
func ClientKey(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return "unknown"
}

// ==================== ADMIN FUNCTIONS ====================

func (svc *RateLimitService) Stats() map[string]interface{} {
	svc.mutex.RLock()
	configs := make(map[string]*RouteQuota, len(svc.configs))
	for k, v := range svc.configs {
		configs[k] = v
	}
	svc.mutex.RUnlock()

	return map[string]interface{}{
		"configs":       configs,
		"tracked_keys":  svc.store.Size(),
		"generated_at":  time.Now(),
		"store_backend": fmt.Sprintf("%T", svc.store),
	}
}

func (svc *RateLimitService) Reset() error {
	return svc.store.Clear()
}
