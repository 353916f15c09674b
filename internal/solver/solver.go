package solver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eugenenazirov/maxweight/internal/food"
	"github.com/eugenenazirov/maxweight/internal/metrics"
)

// DefaultMaxItems is the exhaustive size guard used when none is configured.
const DefaultMaxItems = 24

// Strategies lists the supported strategies in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyGreedy, StrategyExhaustive}
}

// ParseStrategy resolves a case-insensitive strategy name.
func ParseStrategy(name string) (Strategy, error) {
	candidate := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range Strategies() {
		if candidate == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Option configures solvers built by New.
type Option func(*options)

type options struct {
	maxItems int
	workers  int
}

// WithMaxItems sets the largest catalog exhaustive search will accept.
// Values outside 1..MaxEnumerableItems are clamped.
func WithMaxItems(n int) Option {
	return func(o *options) {
		o.maxItems = min(max(n, 1), MaxEnumerableItems)
	}
}

// WithWorkers sets the number of goroutines used for exhaustive enumeration.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// New is a factory that creates a Solver for the given strategy.
func New(strategy Strategy, opts ...Option) (Solver, error) {
	o := options{maxItems: DefaultMaxItems, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	switch strategy {
	case StrategyGreedy:
		return greedySolver{}, nil
	case StrategyExhaustive:
		return exhaustiveSolver{maxItems: o.maxItems, workers: o.workers}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// Run solves with s, measures it, and aggregates the selection.
func Run(ctx context.Context, s Solver, strategy Strategy, foods food.Catalog, calorieBudget float64) (Result, error) {
	start := time.Now()
	items, err := s.Solve(ctx, foods, calorieBudget)
	elapsed := time.Since(start)
	metrics.ObserveSolve(string(strategy), len(foods), elapsed, err)
	if err != nil {
		return Result{}, err
	}

	calories, weight := items.Totals()
	return Result{
		Strategy:      strategy,
		Items:         items,
		TotalCalories: calories,
		TotalWeight:   weight,
		Elapsed:       elapsed,
	}, nil
}
