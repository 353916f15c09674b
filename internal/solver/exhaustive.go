package solver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/maxweight/internal/food"
)

// MaxEnumerableItems is the largest catalog the uint64 subset counter can
// enumerate.
const MaxEnumerableItems = 63

// pollInterval is how many masks are evaluated between context checks.
const pollInterval = 1 << 12

// subset is the best mask found over some range of the enumeration.
type subset struct {
	mask   uint64
	weight float64
}

// Exhaustive returns the heaviest subset of foods whose calorie total fits the
// budget. Masks are visited in order 0..2^n-1 with bit j selecting foods[j];
// a mask replaces the incumbent only when strictly heavier, so the earliest
// optimal mask wins. The result lists items in catalog order.
//
// Exhaustive panics if len(foods) exceeds MaxEnumerableItems.
func Exhaustive(foods food.Catalog, calorieBudget float64) food.Catalog {
	checkEnumerable(len(foods))
	best, _ := scanMasks(context.Background(), foods, calorieBudget, 0, uint64(1)<<len(foods))
	return expand(foods, best.mask)
}

// ExhaustiveParallel splits the enumeration into contiguous mask ranges
// evaluated concurrently. Ranges are reduced in ascending order with the same
// strict comparison, so the result is identical to Exhaustive.
func ExhaustiveParallel(ctx context.Context, foods food.Catalog, calorieBudget float64, workers int) (food.Catalog, error) {
	checkEnumerable(len(foods))
	total := uint64(1) << len(foods)
	if workers < 1 {
		workers = 1
	}
	if uint64(workers) > total {
		workers = int(total)
	}

	chunk := total / uint64(workers)
	bests := make([]subset, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		hi := lo + chunk
		if w == workers-1 {
			hi = total
		}
		g.Go(func() error {
			best, err := scanMasks(gctx, foods, calorieBudget, lo, hi)
			if err != nil {
				return err
			}
			bests[w] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best subset
	for _, candidate := range bests {
		if candidate.weight > best.weight {
			best = candidate
		}
	}
	return expand(foods, best.mask), nil
}

// scanMasks evaluates masks in [lo, hi). The incumbent starts as the empty
// subset with weight zero.
func scanMasks(ctx context.Context, foods food.Catalog, calorieBudget float64, lo, hi uint64) (subset, error) {
	var best subset
	for mask := lo; mask < hi; mask++ {
		if (mask-lo)%pollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return subset{}, err
			}
		}

		calories, weight := 0.0, 0.0
		for j := range foods {
			if mask&(uint64(1)<<j) != 0 {
				calories += foods[j].Calories()
				weight += foods[j].Weight()
			}
		}

		if calories <= calorieBudget && weight > best.weight {
			best = subset{mask: mask, weight: weight}
		}
	}
	return best, nil
}

func expand(foods food.Catalog, mask uint64) food.Catalog {
	result := food.Catalog{}
	for j := range foods {
		if mask&(uint64(1)<<j) != 0 {
			result = append(result, foods[j])
		}
	}
	return result
}

func checkEnumerable(n int) {
	if n > MaxEnumerableItems {
		panic(fmt.Sprintf("solver: exhaustive search over %d items overflows the subset counter (max %d)", n, MaxEnumerableItems))
	}
}

type exhaustiveSolver struct {
	maxItems int
	workers  int
}

func (s exhaustiveSolver) Solve(ctx context.Context, foods food.Catalog, calorieBudget float64) (food.Catalog, error) {
	if len(foods) > s.maxItems {
		return nil, fmt.Errorf("%w: %d items, limit is %d", ErrTooManyItems, len(foods), s.maxItems)
	}
	if s.workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best, err := scanMasks(ctx, foods, calorieBudget, 0, uint64(1)<<len(foods))
		if err != nil {
			return nil, err
		}
		return expand(foods, best.mask), nil
	}
	return ExhaustiveParallel(ctx, foods, calorieBudget, s.workers)
}
