package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"horse.fit/shloka/internal/globaltime"
	"horse.fit/shloka/internal/translation"
)

// clientRateLimiter keeps one token bucket per client IP.
type clientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*limitedClient
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

type limitedClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientRateLimiter(requests int, window time.Duration) *clientRateLimiter {
	return &clientRateLimiter{
		clients: make(map[string]*limitedClient),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		now:     globaltime.Now,
	}
}

func (l *clientRateLimiter) allow(key string) bool {
	l.mu.Lock()
	client, exists := l.clients[key]
	if !exists {
		client = &limitedClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	now := l.now()
	client.lastSeen = now
	l.mu.Unlock()

	return client.limiter.AllowN(now, 1)
}

// sweep drops clients idle for longer than maxIdle until ctx is done.
func (l *clientRateLimiter) sweep(ctx context.Context, every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle(maxIdle)
		}
	}
}

func (l *clientRateLimiter) evictIdle(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	evicted := 0
	for key, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			evicted++
		}
	}
	return evicted
}

func (l *clientRateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return proxyFailure(c, translation.NewError(translation.KindRateLimit, translation.MsgRateExceeded, nil))
			}
			return next(c)
		}
	}
}
