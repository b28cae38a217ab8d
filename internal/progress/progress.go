// Package progress computes completion ratios over the in-memory
// entity graph. Everything here is stateless and recomputed on demand.
package progress

import (
	"math"

	"visionpath/api/internal/store"
)

// ScopeAll averages over every item regardless of vertical.
const ScopeAll = "all"

// ItemCompletion returns an item's completion as 0-100. Items with sub
// features complete proportionally to the checked count; items without
// are binary on status.
func ItemCompletion(item store.RoadmapItem) int {
	total := len(item.SubFeatures)
	if total > 0 {
		completed := 0
		for _, sf := range item.SubFeatures {
			if sf.IsCompleted {
				completed++
			}
		}
		return int(math.Round(float64(completed) / float64(total) * 100))
	}
	if item.Status == store.StatusCompleted {
		return 100
	}
	return 0
}

// QuarterCompletion averages item completion across the items whose
// quarter matches. A quarter with no items is 0, never NaN.
func QuarterCompletion(items []store.RoadmapItem, quarter string) int {
	matched := make([]store.RoadmapItem, 0, len(items))
	for _, item := range items {
		if item.Quarter == quarter {
			matched = append(matched, item)
		}
	}
	return average(matched)
}

// VerticalCompletion averages item completion across the items whose
// effective vertical matches. The product's family takes precedence
// over the item's own vertical reference. ScopeAll covers every item.
func VerticalCompletion(items []store.RoadmapItem, products []store.Product, verticalID string) int {
	if verticalID == ScopeAll {
		return average(items)
	}
	matched := make([]store.RoadmapItem, 0, len(items))
	for _, item := range items {
		if store.EffectiveVerticalID(item, products) == verticalID {
			matched = append(matched, item)
		}
	}
	return average(matched)
}

func average(items []store.RoadmapItem) int {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		subTotal := len(item.SubFeatures)
		if subTotal > 0 {
			completed := 0
			for _, sf := range item.SubFeatures {
				if sf.IsCompleted {
					completed++
				}
			}
			total += float64(completed) / float64(subTotal)
		} else if item.Status == store.StatusCompleted {
			total++
		}
	}
	return int(math.Round(total / float64(len(items)) * 100))
}
