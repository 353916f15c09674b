package solver

import (
	"context"

	"github.com/eugenenazirov/maxweight/internal/food"
)

// Greedy selects items by weight-per-calorie ratio. Each step rescans every
// unselected item and takes the best ratio among those that still fit, so an
// item too expensive early on never blocks cheaper ones later. Ties go to the
// earliest catalog position.
func Greedy(foods food.Catalog, calorieBudget float64) food.Catalog {
	result := food.Catalog{}
	taken := make([]bool, len(foods))
	spent := 0.0

	for {
		best := -1
		bestRatio := 0.0
		for i, item := range foods {
			if taken[i] {
				continue
			}
			if fits := spent+item.Calories() <= calorieBudget; !fits {
				continue
			}
			ratio := item.WeightPerCalorie()
			if best < 0 || ratio > bestRatio {
				best = i
				bestRatio = ratio
			}
		}
		if best < 0 {
			return result
		}
		taken[best] = true
		spent += foods[best].Calories()
		result = append(result, foods[best])
	}
}

type greedySolver struct{}

func (greedySolver) Solve(_ context.Context, foods food.Catalog, calorieBudget float64) (food.Catalog, error) {
	return Greedy(foods, calorieBudget), nil
}
