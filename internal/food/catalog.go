package food

// Catalog is an ordered sequence of items. Solver results use the same type.
type Catalog []Item

// Filter returns the first limit items, in source order, whose weight lies
// in [minWeight, maxWeight]. A limit of zero or less yields an empty catalog.
// The receiver is never modified.
func (c Catalog) Filter(minWeight, maxWeight float64, limit int) Catalog {
	result := Catalog{}
	if limit <= 0 {
		return result
	}
	for _, item := range c {
		if item.weight < minWeight || item.weight > maxWeight {
			continue
		}
		result = append(result, item)
		if len(result) == limit {
			break
		}
	}
	return result
}

// Totals sums calories and weight across the catalog.
func (c Catalog) Totals() (totalCalories, totalWeight float64) {
	for _, item := range c {
		totalCalories += item.calories
		totalWeight += item.weight
	}
	return totalCalories, totalWeight
}

// Clone returns a copy backed by a new array.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}

// Descriptions lists item descriptions in order.
func (c Catalog) Descriptions() []string {
	out := make([]string, len(c))
	for i, item := range c {
		out[i] = item.description
	}
	return out
}
