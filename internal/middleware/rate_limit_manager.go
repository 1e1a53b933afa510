package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorIdleTimeout = 3 * time.Minute
	actionIdleTimeout  = 10 * time.Minute
)

// RateLimitManager manages rate limiters with lifecycle control
type RateLimitManager struct {
	visitors         map[string]*visitor
	visitorsMu       sync.RWMutex
	actionLimiters   map[string]*visitor
	actionLimitersMu sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// NewRateLimitManager creates a new rate limit manager with context-based lifecycle
func NewRateLimitManager(ctx context.Context) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		visitors:       make(map[string]*visitor),
		actionLimiters: make(map[string]*visitor),
		ctx:            managerCtx,
		cancel:         cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// GetVisitor retrieves or creates the general rate limiter for the given IP
func (m *RateLimitManager) GetVisitor(ip string, requestsPerWindow int, windowSeconds int, burst int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	if burst < requestsPerWindow {
		burst = requestsPerWindow
	}

	m.visitorsMu.Lock()
	defer m.visitorsMu.Unlock()

	return getOrCreateLimiter(m.visitors, ip, requestsPerWindow, windowSeconds, burst)
}

// GetActionLimiter retrieves or creates the limiter for state-changing shell
// and dashboard actions of the given IP
func (m *RateLimitManager) GetActionLimiter(ip string, requestsPerWindow int, windowSeconds int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	m.actionLimitersMu.Lock()
	defer m.actionLimitersMu.Unlock()

	return getOrCreateLimiter(m.actionLimiters, ip, requestsPerWindow, windowSeconds, requestsPerWindow)
}

func getOrCreateLimiter(visitors map[string]*visitor, ip string, requestsPerWindow, windowSeconds, burst int) *rate.Limiter {
	v, exists := visitors[ip]
	if exists {
		v.lastSeen = time.Now()
		return v.limiter
	}

	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	limitPerSecond := float64(requestsPerWindow) / float64(windowSeconds)
	limit := rate.Limit(limitPerSecond)
	if limitPerSecond <= 0 {
		limit = rate.Inf
	}

	limiter := rate.NewLimiter(limit, burst)
	visitors[ip] = &visitor{limiter, time.Now()}
	return limiter
}

// cleanupLoop periodically removes inactive rate limiters
func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	m.visitorsMu.Lock()
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(m.visitors, ip)
		}
	}
	m.visitorsMu.Unlock()

	m.actionLimitersMu.Lock()
	for ip, v := range m.actionLimiters {
		if now.Sub(v.lastSeen) > actionIdleTimeout {
			delete(m.actionLimiters, ip)
		}
	}
	m.actionLimitersMu.Unlock()
}

// Shutdown stops the cleanup goroutine and waits for it to finish
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
