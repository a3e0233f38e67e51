// Package ratelimit implements a fixed-window request counter on top of the
// cache store. Windows are one UTC minute; bursts across a window boundary
// are an accepted tradeoff for the single-counter design.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"homeworth/server/internal/cache"
)

// ErrLimited is returned when an identity exhausts its per-minute budget.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter counts requests per (credential, client address, minute) key.
type Limiter struct {
	store  cache.Store
	rpm    int64
	logger *logrus.Logger
}

// New creates a limiter allowing rpm requests per identity per minute.
func New(store cache.Store, rpm int, logger *logrus.Logger) *Limiter {
	if rpm < 1 {
		rpm = 1
	}
	return &Limiter{store: store, rpm: int64(rpm), logger: logger}
}

// Allow records one request for the identity at now and returns ErrLimited
// once the running count for the current window exceeds the budget. Counter
// updates are atomic when the backing store offers atomic increment-and-expire
// (Redis) and best-effort otherwise.
func (l *Limiter) Allow(ctx context.Context, apiKey, clientIP string, now time.Time) error {
	if apiKey == "" {
		apiKey = "anon"
	}
	bucket := now.UTC().Format("200601021504")
	key := fmt.Sprintf("rate:%s:%s:%s", apiKey, clientIP, bucket)

	count, err := l.store.Incr(ctx, key, time.Minute)
	if err != nil {
		// A broken counter backend must not take the service down.
		l.logger.WithError(err).Warn("Rate counter unavailable, allowing request")
		return nil
	}
	if count > l.rpm {
		l.logger.WithFields(logrus.Fields{
			"identity": apiKey,
			"client":   clientIP,
			"count":    count,
		}).Warn("Rate limit exceeded")
		return ErrLimited
	}
	return nil
}
