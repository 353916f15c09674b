// Package solver picks the subset of a food catalog that carries the most
// weight within a calorie budget.
//
// Two strategies are available:
//
//   - greedy: repeatedly takes the remaining item with the best
//     weight-per-calorie ratio that still fits. Fast, not optimal.
//   - exhaustive: enumerates every subset with a bitmask counter and keeps the
//     heaviest one within budget. Optimal, O(2^n * n).
//
// Exhaustive search must only see small catalogs; callers bound the input with
// food.Catalog.Filter and the registry refuses catalogs above its size guard.
package solver
