// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit keeps one token bucket per key.

The development backend uses it twice: per client IP in the HTTP middleware,
and per mobile number for the code and login plans.
*/
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/safar/internal/platform/constants"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed holds a token bucket per key. It is safe for concurrent use.
type Keyed struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

// NewKeyed creates a limiter and starts its cleanup loop, which stops when
// context is cancelled.
func NewKeyed(context context.Context, limit rate.Limit, burst int) *Keyed {
	limiter := &Keyed{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
	}
	go limiter.cleanup(context)
	return limiter
}

// PerMinute allows n events per minute with a burst of n.
func PerMinute(context context.Context, n int) *Keyed {
	return NewKeyed(context, rate.Every(time.Minute/time.Duration(n)), n)
}

// Allow reports whether an event for key may happen now.
func (limiter *Keyed) Allow(key string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	entry, found := limiter.buckets[key]
	if !found {
		entry = &bucket{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.buckets[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// Reset forgets key, restoring a full bucket.
func (limiter *Keyed) Reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.buckets, key)
}

func (limiter *Keyed) cleanup(context context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.mu.Lock()
			for key, entry := range limiter.buckets {
				if time.Since(entry.lastSeen) > constants.RateLimitClientTTL {
					delete(limiter.buckets, key)
				}
			}
			limiter.mu.Unlock()
		case <-context.Done():
			return
		}
	}
}
