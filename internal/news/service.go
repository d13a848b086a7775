package news

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"signal-fusion-ranker/internal/interfaces"
	"signal-fusion-ranker/internal/logger"
	"signal-fusion-ranker/internal/types"
)

// Service wraps a NewsProvider with a TTL cache and an on/off switch.
type Service struct {
	provider interfaces.NewsProvider
	cache    *headlineCache
	cfg      ServiceConfig
}

// ServiceConfig configures the news service
type ServiceConfig struct {
	CacheDuration time.Duration // How long to keep fetched headlines
	Enabled       bool          // When false, every lookup returns no headlines
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CacheDuration: 1 * time.Hour,
		Enabled:       true,
	}
}

// headlineCache stores fetched headlines temporarily
type headlineCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

type cacheEntry struct {
	headlines []types.Headline
	timestamp time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	cache := &headlineCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		stop: make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

func (c *headlineCache) get(key string) ([]types.Headline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.headlines, true
}

func (c *headlineCache) set(key string, headlines []types.Headline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		headlines: headlines,
		timestamp: time.Now(),
	}
}

// cleanupLoop periodically removes expired entries
func (c *headlineCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *headlineCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}
}

func (c *headlineCache) close() {
	c.once.Do(func() { close(c.stop) })
}

func NewService(provider interfaces.NewsProvider, cfg ServiceConfig) *Service {
	return &Service{
		provider: provider,
		cache:    newHeadlineCache(cfg.CacheDuration),
		cfg:      cfg,
	}
}

func cacheKey(company, symbol string, lookbackDays, maxItems int) string {
	return fmt.Sprintf("%s|%s|%d|%d", symbol, company, lookbackDays, maxItems)
}

// Headlines serves from cache when possible. Provider errors are returned
// to the caller and never cached.
func (s *Service) Headlines(ctx context.Context, company, symbol string, lookbackDays, maxItems int) ([]types.Headline, error) {
	if !s.cfg.Enabled {
		return []types.Headline{}, nil
	}

	key := cacheKey(company, symbol, lookbackDays, maxItems)
	if cached, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "Using cached headlines", "symbol", symbol, "count", len(cached))
		return cached, nil
	}

	headlines, err := s.provider.Headlines(ctx, company, symbol, lookbackDays, maxItems)
	if err != nil {
		return nil, err
	}
	if len(headlines) > maxItems {
		headlines = headlines[:maxItems]
	}
	s.cache.set(key, headlines)
	return headlines, nil
}

// ClearCache removes all cached headlines
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// CachedSymbols returns the symbols with a cache entry.
func (s *Service) CachedSymbols() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.cache.data))
	symbols := make([]string, 0, len(s.cache.data))
	for key := range s.cache.data {
		sym, _, _ := strings.Cut(key, "|")
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
	}
	return symbols
}

// Close stops the cache janitor.
func (s *Service) Close() {
	s.cache.close()
}
