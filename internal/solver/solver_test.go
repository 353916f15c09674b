package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/maxweight/internal/food"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func randomCatalog(rng *rand.Rand, n int) food.Catalog {
	foods := make(food.Catalog, n)
	for i := range foods {
		calories := float64(1+rng.IntN(400)) + rng.Float64()
		weight := float64(rng.IntN(300)) + rng.Float64()
		foods[i] = food.MustItem(fmt.Sprintf("item-%d", i), calories, weight)
	}
	return foods
}

// bestWeight computes the optimum by include/exclude recursion, independent
// of the bitmask enumeration. Sums accumulate in catalog order so budget
// comparisons round the same way the enumeration does.
func bestWeight(foods food.Catalog, budget, spent, carried float64) float64 {
	if len(foods) == 0 {
		return carried
	}
	head, rest := foods[0], foods[1:]
	best := bestWeight(rest, budget, spent, carried)
	if spent+head.Calories() <= budget {
		best = max(best, bestWeight(rest, budget, spent+head.Calories(), carried+head.Weight()))
	}
	return best
}

func TestSolutionProperties(t *testing.T) {
	t.Parallel()

	rng := newRand(42)
	for round := 0; round < 60; round++ {
		foods := randomCatalog(rng, rng.IntN(11))
		budget := float64(rng.IntN(1200)) - 100

		greedy := Greedy(foods, budget)
		exhaustive := Exhaustive(foods, budget)

		greedyCalories, greedyWeight := greedy.Totals()
		exhaustiveCalories, exhaustiveWeight := exhaustive.Totals()

		assert.LessOrEqual(t, len(greedy), len(foods))
		if len(greedy) > 0 {
			assert.LessOrEqual(t, greedyCalories, budget, "greedy over budget in round %d", round)
		}
		if len(exhaustive) > 0 {
			assert.LessOrEqual(t, exhaustiveCalories, budget, "exhaustive over budget in round %d", round)
		}
		assert.GreaterOrEqual(t, exhaustiveWeight, greedyWeight, "greedy beat exhaustive in round %d", round)
		assert.InDelta(t, bestWeight(foods, budget, 0, 0), exhaustiveWeight, 1e-6, "not optimal in round %d", round)
		assertNoRepeatedPositions(t, foods, greedy)
		assertNoRepeatedPositions(t, foods, exhaustive)
	}
}

// assertNoRepeatedPositions checks selection is a sub-multiset of the catalog.
func assertNoRepeatedPositions(t *testing.T, foods, selection food.Catalog) {
	t.Helper()

	available := make(map[food.Item]int, len(foods))
	for _, item := range foods {
		available[item]++
	}
	for _, item := range selection {
		available[item]--
		require.GreaterOrEqual(t, available[item], 0, "item %v selected more often than present", item)
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	got, err := ParseStrategy(" Exhaustive ")
	require.NoError(t, err)
	assert.Equal(t, StrategyExhaustive, got)

	got, err = ParseStrategy("greedy")
	require.NoError(t, err)
	assert.Equal(t, StrategyGreedy, got)

	_, err = ParseStrategy("dynamic")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestNewUnknownStrategy(t *testing.T) {
	t.Parallel()

	if _, err := New(Strategy("simulated-annealing")); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestExhaustiveSolverGuardsSize(t *testing.T) {
	t.Parallel()

	s, err := New(StrategyExhaustive, WithMaxItems(3))
	require.NoError(t, err)

	_, err = s.Solve(context.Background(), randomCatalog(newRand(1), 4), 100)
	assert.ErrorIs(t, err, ErrTooManyItems)

	got, err := s.Solve(context.Background(), trivialFoods(), 150)
	require.NoError(t, err)
	assert.Equal(t, []string{"test whole corn", "test pasta"}, got.Descriptions())
}

func TestWithMaxItemsClamps(t *testing.T) {
	t.Parallel()

	o := options{}
	WithMaxItems(1000)(&o)
	assert.Equal(t, MaxEnumerableItems, o.maxItems)
	WithMaxItems(-4)(&o)
	assert.Equal(t, 1, o.maxItems)
	WithWorkers(0)(&o)
	assert.Equal(t, 1, o.workers)
}

func TestExhaustiveSolverSequentialHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(StrategyExhaustive)
	require.NoError(t, err)
	_, err = s.Solve(ctx, trivialFoods(), 150)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAggregatesResult(t *testing.T) {
	t.Parallel()

	for _, strategy := range Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			s, err := New(strategy, WithWorkers(2))
			require.NoError(t, err)

			result, err := Run(context.Background(), s, strategy, trivialFoods(), 150)
			require.NoError(t, err)
			assert.Equal(t, strategy, result.Strategy)
			assert.Equal(t, 140.0, result.TotalCalories)
			assert.Equal(t, 25.0, result.TotalWeight)
			assert.Len(t, result.Items, 2)
		})
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	t.Parallel()

	s, err := New(StrategyExhaustive, WithMaxItems(1))
	require.NoError(t, err)

	_, err = Run(context.Background(), s, StrategyExhaustive, trivialFoods(), 150)
	assert.ErrorIs(t, err, ErrTooManyItems)
}
