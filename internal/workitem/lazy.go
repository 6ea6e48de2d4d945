package workitem

import (
	"context"
	"sync"
)

// lazy is a cache slot filled at most once. Concurrent first reads are
// serialized on the slot's mutex; a failed load leaves the slot empty.
type lazy[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
}

func (l *lazy[T]) get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.val, nil
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.val, l.done = v, true
	return v, nil
}
