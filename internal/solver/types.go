package solver

import (
	"context"
	"time"

	"github.com/eugenenazirov/maxweight/internal/food"
)

// Strategy names a selection algorithm.
type Strategy string

const (
	StrategyGreedy     Strategy = "greedy"
	StrategyExhaustive Strategy = "exhaustive"
)

// Solver describes the behaviour required from a selection algorithm.
type Solver interface {
	Solve(ctx context.Context, foods food.Catalog, calorieBudget float64) (food.Catalog, error)
}

// Result summarises one solver run.
type Result struct {
	Strategy      Strategy
	Items         food.Catalog
	TotalCalories float64
	TotalWeight   float64
	Elapsed       time.Duration
}
