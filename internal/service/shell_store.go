package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"trident-dashboards/pkg/cache"
	"trident-dashboards/pkg/logger"
	"trident-dashboards/pkg/navigation"
)

const defaultShellStateTTL = 24 * time.Hour

type memoryShellEntry struct {
	state    navigation.State
	lastSeen time.Time
}

// MemoryShellStore keeps shell state in process. Entries not read or toggled
// for longer than the TTL are swept by a background loop.
type MemoryShellStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*memoryShellEntry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMemoryShellStore(ctx context.Context, ttl time.Duration) *MemoryShellStore {
	if ttl <= 0 {
		ttl = defaultShellStateTTL
	}

	storeCtx, cancel := context.WithCancel(ctx)
	s := &MemoryShellStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*memoryShellEntry),
		ctx:     storeCtx,
		cancel:  cancel,
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryShellStore) Load(_ context.Context, sessionID string) (navigation.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok || s.expired(entry) {
		return navigation.State{}, nil
	}
	entry.lastSeen = s.now()
	return entry.state, nil
}

func (s *MemoryShellStore) Toggle(_ context.Context, sessionID string) (navigation.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok || s.expired(entry) {
		entry = &memoryShellEntry{}
		s.entries[sessionID] = entry
	}
	entry.state = entry.state.Toggle()
	entry.lastSeen = s.now()
	return entry.state, nil
}

func (s *MemoryShellStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryShellStore) expired(entry *memoryShellEntry) bool {
	return s.now().Sub(entry.lastSeen) > s.ttl
}

func (s *MemoryShellStore) cleanupLoop() {
	defer s.wg.Done()

	interval := s.ttl / 4
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryShellStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, id)
		}
	}
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (s *MemoryShellStore) Shutdown() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

type shellCounter interface {
	IncrementWithExpiry(ctx context.Context, key string, expiration time.Duration) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// CacheShellStore keeps shell state in Redis as a per-session toggle counter:
// an odd count means collapsed. INCR makes concurrent toggles serialize.
type CacheShellStore struct {
	counter shellCounter
	ttl     time.Duration
}

func NewCacheShellStore(c *cache.Cache, ttl time.Duration) *CacheShellStore {
	return newCacheShellStore(c, ttl)
}

func newCacheShellStore(counter shellCounter, ttl time.Duration) *CacheShellStore {
	if ttl <= 0 {
		ttl = defaultShellStateTTL
	}
	return &CacheShellStore{counter: counter, ttl: ttl}
}

// Load reads the toggle counter and extends its TTL, so a session that keeps
// browsing keeps its layout.
func (s *CacheShellStore) Load(ctx context.Context, sessionID string) (navigation.State, error) {
	key := cache.ShellStateKey(sessionID)
	count, err := s.counter.GetInt(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return navigation.State{}, nil
	}
	if err != nil {
		return navigation.State{}, err
	}
	if err := s.counter.Expire(ctx, key, s.ttl); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Failed to extend shell state")
	}
	return navigation.State{Collapsed: count%2 != 0}, nil
}

func (s *CacheShellStore) Toggle(ctx context.Context, sessionID string) (navigation.State, error) {
	count, err := s.counter.IncrementWithExpiry(ctx, cache.ShellStateKey(sessionID), s.ttl)
	if err != nil {
		return navigation.State{}, err
	}
	return navigation.State{Collapsed: count%2 != 0}, nil
}
