package pipeline

import (
	"context"
	"sync"
)

// Pool bounds the number of files a step processes concurrently.
type Pool struct {
	limit int
}

func NewPool(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{limit: limit}
}

// Each runs fn for every path, at most limit at a time. The first error
// cancels the remaining work and is returned; already-running calls finish.
// Results recorded by fn must be synchronized by the caller.
func (p *Pool) Each(ctx context.Context, paths []string, fn func(ctx context.Context, path string) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, p.limit)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for _, path := range paths {
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := fn(ctx, path); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}(path)
		}
		if ctx.Err() != nil {
			break
		}
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
