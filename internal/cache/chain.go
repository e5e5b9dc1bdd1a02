package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoStrategy is returned by an empty Chain.
var ErrNoStrategy = errors.New("no fetch strategy configured")

// Strategy is one way of obtaining a value.
type Strategy[T any] struct {
	Name  string
	Fetch Fetcher[T]
}

// Chain tries its strategies in order until one succeeds.
type Chain[T any] struct {
	Source     string
	Strategies []Strategy[T]
	// OnFallback, if set, is called every time a strategy fails and the next one is about to be tried.
	OnFallback func(source, strategy string, err error)
}

// Fetch implements Fetcher.
func (c Chain[T]) Fetch(ctx context.Context) (T, error) {
	var zero T
	if len(c.Strategies) == 0 {
		return zero, ErrNoStrategy
	}

	var errs []error
	for i, s := range c.Strategies {
		v, err := s.Fetch(ctx)
		if err == nil {
			return v, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		if i < len(c.Strategies)-1 && c.OnFallback != nil {
			c.OnFallback(c.Source, s.Name, err)
		}
	}
	return zero, errors.Join(errs...)
}
