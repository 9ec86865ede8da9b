package alerting

import (
	"sync"
	"time"
)

// cleanupThreshold — после скольких ключей чистить просроченные записи.
const cleanupThreshold = 100

// RateLimiter пропускает не больше одного алерта с одним ключом за окно.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	sent   map[string]time.Time
	now    func() time.Time
}

// NewRateLimiter создаёт RateLimiter с окном window.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		window: window,
		sent:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow сообщает, можно ли отправить алерт с ключом key, и запоминает отправку.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.sent) > cleanupThreshold {
		for k, at := range r.sent {
			if now.Sub(at) >= r.window {
				delete(r.sent, k)
			}
		}
	}

	if last, ok := r.sent[key]; ok && now.Sub(last) < r.window {
		return false
	}
	r.sent[key] = now
	return true
}

// Reset забывает отправку по ключу, например после успешного прогона.
func (r *RateLimiter) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sent, key)
}

// SetNowFunc подменяет источник времени в тестах.
func (r *RateLimiter) SetNowFunc(fn func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = fn
}
