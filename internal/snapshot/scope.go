package snapshot

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type scopeKey struct{}

type sharedResult struct {
	value any
	err   error
}

// callScope holds the fetches shared by the readers of one Assemble call. It
// lives in that call's context and dies with it.
type callScope struct {
	group singleflight.Group

	mu      sync.Mutex
	results map[string]sharedResult
}

func withScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &callScope{results: map[string]sharedResult{}})
}

func (s *callScope) lookup(key string) (sharedResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[key]
	return r, ok
}

// Shared runs fetch at most once per key within the Assemble call ctx belongs
// to, and hands its outcome, failure included, to every reader of that call.
// Separate calls never share a fetch. Outside an Assemble call fetch runs on
// every invocation.
func Shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	scope, ok := ctx.Value(scopeKey{}).(*callScope)
	if !ok {
		return fetch(ctx)
	}
	if r, ok := scope.lookup(key); ok {
		return r.value, r.err
	}
	v, err, _ := scope.group.Do(key, func() (any, error) {
		if r, ok := scope.lookup(key); ok {
			return r.value, r.err
		}
		v, err := fetch(ctx)
		scope.mu.Lock()
		scope.results[key] = sharedResult{value: v, err: err}
		scope.mu.Unlock()
		return v, err
	})
	return v, err
}
