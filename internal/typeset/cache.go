package typeset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yiling-J/theine-go"
)

// DefaultCacheSize bounds the number of cached typeset results.
const DefaultCacheSize = 5000

// ErrInvalidCacheSize indicates a non-positive cache capacity.
var ErrInvalidCacheSize = errors.New("invalid cache size")

// keySep separates mode and expression in cache keys. Mode names never
// contain NUL, so the first NUL is always the separator.
const keySep = "\x00"

// Cached memoizes a wrapped Engine.
// Failed expressions are not cached; every attempt reaches the wrapped engine.
type Cached struct {
	next  Engine
	cache *theine.LoadingCache[string, string]
}

// Compile-time interface check.
var _ Engine = (*Cached)(nil)

// NewCached wraps next with a cache holding at most size results.
func NewCached(next Engine, size int64) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCacheSize, size)
	}

	cache, err := theine.NewBuilder[string, string](size).BuildWithLoader(
		func(ctx context.Context, key string) (theine.Loaded[string], error) {
			mode, expr := splitKey(key)
			markup, err := next.Typeset(expr, mode)
			if err != nil {
				return theine.Loaded[string]{}, err
			}
			return theine.Loaded[string]{Value: markup, Cost: 1, TTL: 0}, nil
		})
	if err != nil {
		return nil, fmt.Errorf("building typeset cache: %w", err)
	}

	return &Cached{next: next, cache: cache}, nil
}

// Typeset returns the cached markup for (expr, mode), typesetting on a miss.
func (c *Cached) Typeset(expr string, mode Mode) (string, error) {
	return c.cache.Get(context.Background(), cacheKey(expr, mode))
}

func cacheKey(expr string, mode Mode) string {
	return mode.String() + keySep + expr
}

func splitKey(key string) (Mode, string) {
	prefix, expr, _ := strings.Cut(key, keySep)
	if prefix == Display.String() {
		return Display, expr
	}
	return Inline, expr
}
