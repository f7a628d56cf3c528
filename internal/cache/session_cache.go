package cache

import (
	"context"
	"time"
)

const sessionKeyPrefix = "session:"

func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// SessionCache stores resumable session state so another instance can pick a
// session up. T is the checkpoint type owned by the caller.
type SessionCache[T any] struct {
	cache CacheService
	ttl   time.Duration
}

func NewSessionCache[T any](cache CacheService, ttl time.Duration) *SessionCache[T] {
	return &SessionCache[T]{cache: cache, ttl: ttl}
}

func (c *SessionCache[T]) Save(ctx context.Context, id string, value T) error {
	return c.cache.Set(ctx, SessionKey(id), value, c.ttl)
}

// Load returns ErrCacheMiss when nothing is stored for id.
func (c *SessionCache[T]) Load(ctx context.Context, id string) (T, error) {
	var value T
	err := c.cache.Get(ctx, SessionKey(id), &value)
	return value, err
}

func (c *SessionCache[T]) Delete(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, SessionKey(id))
}

// Clear drops every cached session.
func (c *SessionCache[T]) Clear(ctx context.Context) error {
	return c.cache.DeletePattern(ctx, sessionKeyPrefix+"*")
}
