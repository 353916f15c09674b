// Package food defines the catalog data model shared by the solvers: immutable
// food items, ordered catalogs, the weight-window filter that keeps exhaustive
// search tractable, and calorie/weight aggregation.
package food
