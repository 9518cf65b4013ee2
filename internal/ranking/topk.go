package ranking

import (
	"sort"

	"fundrace/internal/dataset"
)

// DefaultK is how many funds every frame shows.
const DefaultK = 10

// TopK ranks entities by their largest value over all dates and returns the
// first k names, largest first. Equal maxima keep the order in which the
// entities first appear in obs. The result is the fixed row order of every frame.
func TopK(obs []dataset.Observation, k int) []string {
	if k <= 0 {
		return []string{}
	}

	var order []string
	max := make(map[string]float64)
	for _, o := range obs {
		cur, ok := max[o.Entity]
		if !ok {
			order = append(order, o.Entity)
			max[o.Entity] = o.Value
			continue
		}
		if o.Value > cur {
			max[o.Entity] = o.Value
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return max[order[i]] > max[order[j]]
	})

	if len(order) > k {
		order = order[:k]
	}
	return order
}
