// Package rate implementa rate limiting de ventana fija para endpoints
// sensibles (hoy: /auth/login, por IP). Backend memoria o Redis.
package rate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result es el veredicto del limiter para un hit.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

// Limiter decide si un hit identificado por key pasa o no.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// =================================================================================
// MEMORY (ventana fija in-process)
// =================================================================================

type memWindow struct {
	start time.Time
	hits  int64
}

// MemoryLimiter: ventana fija en memoria. Suficiente para un solo nodo.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int64
	window  time.Duration
	windows map[string]*memWindow
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     int64(max),
		window:  window,
		windows: make(map[string]*memWindow),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &memWindow{start: now}
		l.windows[key] = w
	}
	w.hits++

	allowed := w.hits <= l.max
	remaining := l.max - w.hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: w.hits,
	}
	if !allowed {
		res.RetryAfter = l.window - now.Sub(w.start)
	}

	// Poda oportunista de ventanas viejas para no crecer sin límite.
	if len(l.windows) > 4096 {
		for k, win := range l.windows {
			if now.Sub(win.start) >= l.window {
				delete(l.windows, k)
			}
		}
	}
	return res, nil
}

// =================================================================================
// REDIS (ventana fija con INCR + EXPIRE)
// =================================================================================

type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// set expiry en el primer hit
	if incr.Val() == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
		ttl = l.Client.TTL(ctx, redisKey)
	}

	hits := incr.Val()
	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			res.RetryAfter = l.Window
		}
	}
	return res, nil
}
