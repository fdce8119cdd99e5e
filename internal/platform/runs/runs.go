// Package runs splits ordered sequences into maximal runs of adjacent items.
package runs

// Group partitions items into maximal runs where every consecutive pair
// satisfies adjacent(prev, curr). Boundaries fall exactly where adjacent
// reports false. An empty input yields no runs; no run is ever empty.
func Group[T any](items []T, adjacent func(prev, curr T) bool) [][]T {
	if len(items) == 0 {
		return nil
	}
	var out [][]T
	current := []T{items[0]}
	for i := 1; i < len(items); i++ {
		if adjacent(items[i-1], items[i]) {
			current = append(current, items[i])
			continue
		}
		out = append(out, current)
		current = []T{items[i]}
	}
	return append(out, current)
}
