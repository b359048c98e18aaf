package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/pkg/idx"
)

// ErrConfigNotFound is returned when a key exists in neither the cache nor
// the backing store.
var ErrConfigNotFound = errors.New("config: not found")

const (
	// DefaultConfigTTL bounds how stale an accessed entry may be before the
	// next access triggers a reload.
	DefaultConfigTTL = time.Minute

	// DefaultConfigRefreshInterval is the background full-reload period, so
	// even keys nobody reads do not go arbitrarily stale.
	DefaultConfigRefreshInterval = 5 * time.Minute
)

// ConfigService is a TTL-based read-through cache over the config table.
// Reads are served from an in-memory snapshot that a background ticker and
// on-access staleness checks keep fresh; writes go to the store and the
// cache in the same call so a just-written key never reads stale.
type ConfigService struct {
	Store           store.Store
	Logger          *slog.Logger
	TTL             time.Duration
	RefreshInterval time.Duration

	mu       sync.RWMutex
	entries  map[string]domain.ConfigEntry // replaced wholesale on refresh
	lastLoad time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewConfigService creates the cache in the Cold state; the first access or
// Start() warms it.
func NewConfigService(st store.Store, logger *slog.Logger, ttl, refreshInterval time.Duration) *ConfigService {
	if ttl <= 0 {
		ttl = DefaultConfigTTL
	}
	if refreshInterval <= 0 {
		refreshInterval = DefaultConfigRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigService{
		Store:           st,
		Logger:          logger,
		TTL:             ttl,
		RefreshInterval: refreshInterval,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start begins the background refresher. Call Stop() on shutdown; the
// ticker must not outlive the process's store handle.
func (s *ConfigService) Start() {
	go s.run()
	s.Logger.Info("config cache refresher started", "interval", s.RefreshInterval)
}

// Stop shuts down the background refresher and blocks until it exits.
func (s *ConfigService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("config cache refresher stopped")
}

func (s *ConfigService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.RefreshInterval)
	defer ticker.Stop()

	// Warm the cache immediately rather than waiting a full interval.
	s.refreshLogged(context.Background())

	for {
		select {
		case <-ticker.C:
			s.refreshLogged(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

func (s *ConfigService) refreshLogged(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		// Prior cache contents stay in place: stale-but-serving beats
		// empty-and-failing.
		s.Logger.Error("config cache refresh failed", "error", err)
	}
}

// Refresh reloads the entire key space and swaps it in atomically. A failed
// load leaves the previous snapshot untouched.
func (s *ConfigService) Refresh(ctx context.Context) error {
	list, err := s.Store.Config().ListConfigEntries(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[string]domain.ConfigEntry, len(list))
	for _, e := range list {
		fresh[e.Key] = e
	}

	s.mu.Lock()
	s.entries = fresh
	s.lastLoad = time.Now()
	s.mu.Unlock()
	return nil
}

// Get returns the cached value for key, reloading first when the snapshot
// is stale. A missing key fails with ErrConfigNotFound without consulting
// the store; use Lookup when a point read should fall through.
func (s *ConfigService) Get(ctx context.Context, key string) (string, error) {
	s.maybeReload(ctx)

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", ErrConfigNotFound
	}
	return entry.Value, nil
}

// Lookup returns the value for key, falling through to a single point read
// against the store on a cache miss (not mere staleness) and caching the
// result. A key absent from both fails with ErrConfigNotFound.
func (s *ConfigService) Lookup(ctx context.Context, key string) (string, error) {
	s.maybeReload(ctx)

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return entry.Value, nil
	}

	stored, err := s.Store.Config().GetConfigEntry(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrConfigNotFound
	}
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.entries == nil {
		s.entries = make(map[string]domain.ConfigEntry)
	}
	s.entries[key] = stored
	s.mu.Unlock()

	return stored.Value, nil
}

// GetOrDefault is Lookup with a caller-supplied fallback for missing keys.
// Store failures still surface as errors.
func (s *ConfigService) GetOrDefault(ctx context.Context, key, def string) (string, error) {
	value, err := s.Lookup(ctx, key)
	if errors.Is(err, ErrConfigNotFound) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetEntry returns the full cached entry for key.
func (s *ConfigService) GetEntry(ctx context.Context, key string) (domain.ConfigEntry, error) {
	s.maybeReload(ctx)

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return domain.ConfigEntry{}, ErrConfigNotFound
	}
	return entry, nil
}

// ListEntries returns cached entries, optionally filtered by category,
// ordered by key.
func (s *ConfigService) ListEntries(ctx context.Context, category string) []domain.ConfigEntry {
	s.maybeReload(ctx)

	s.mu.RLock()
	out := make([]domain.ConfigEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Set upserts by unique key and updates the cache entry in the same call,
// so the write is visible to the very next read. This is the only path that
// advances the persisted updated_at.
func (s *ConfigService) Set(ctx context.Context, key, value, description, category string, isSecret bool) error {
	if category == "" {
		category = "general"
	}

	entry := domain.ConfigEntry{
		ID:          idx.New().String(),
		Key:         key,
		Value:       value,
		Description: description,
		Category:    category,
		IsSecret:    isSecret,
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.Store.Config().UpsertConfigEntry(ctx, entry); err != nil {
		return err
	}

	s.mu.Lock()
	if s.entries == nil {
		s.entries = make(map[string]domain.ConfigEntry)
	}
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes an entry from the store and the cache.
func (s *ConfigService) Delete(ctx context.Context, key string) error {
	if err := s.Store.Config().DeleteConfigEntry(ctx, key); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// maybeReload refreshes when the snapshot is cold or older than TTL. A
// failed reload is logged and the stale snapshot keeps serving.
func (s *ConfigService) maybeReload(ctx context.Context) {
	s.mu.RLock()
	stale := s.lastLoad.IsZero() || time.Since(s.lastLoad) >= s.TTL
	s.mu.RUnlock()

	if stale {
		s.refreshLogged(ctx)
	}
}
