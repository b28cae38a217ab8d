package progress

import (
	"testing"

	"visionpath/api/internal/store"
)

func itemWithSubFeatures(quarter string, completed, total int) store.RoadmapItem {
	subFeatures := make([]store.SubFeature, 0, total)
	for i := 0; i < total; i++ {
		subFeatures = append(subFeatures, store.SubFeature{
			ID:          "sf",
			Title:       "step",
			IsCompleted: i < completed,
		})
	}
	return store.RoadmapItem{
		ID:          "i",
		Quarter:     quarter,
		Status:      store.StatusInDevelopment,
		SubFeatures: subFeatures,
	}
}

func TestItemCompletionWithoutSubFeatures(t *testing.T) {
	item := store.RoadmapItem{Status: store.StatusCompleted}
	if got := ItemCompletion(item); got != 100 {
		t.Fatalf("completed item without sub features must be 100, got %d", got)
	}

	for _, status := range []string{store.StatusBacklog, store.StatusPlanning, store.StatusInDevelopment} {
		item.Status = status
		if got := ItemCompletion(item); got != 0 {
			t.Fatalf("status %q without sub features must be 0, got %d", status, got)
		}
	}
}

func TestItemCompletionWithSubFeatures(t *testing.T) {
	cases := []struct {
		completed int
		total     int
		want      int
	}{
		{0, 4, 0},
		{1, 4, 25},
		{2, 3, 67},
		{1, 3, 33},
		{4, 4, 100},
	}
	for _, tc := range cases {
		item := itemWithSubFeatures("Q1 2024", tc.completed, tc.total)
		if got := ItemCompletion(item); got != tc.want {
			t.Fatalf("%d/%d sub features: expected %d, got %d", tc.completed, tc.total, tc.want, got)
		}
	}
}

func TestItemCompletionIgnoresStatusWhenSubFeaturesExist(t *testing.T) {
	item := itemWithSubFeatures("Q1 2024", 0, 2)
	item.Status = store.StatusCompleted
	if got := ItemCompletion(item); got != 0 {
		t.Fatalf("sub features must drive completion when present, got %d", got)
	}
}

func TestQuarterCompletion(t *testing.T) {
	items := []store.RoadmapItem{
		itemWithSubFeatures("Q1 2024", 1, 2), // 50%
		{ID: "done", Quarter: "Q1 2024", Status: store.StatusCompleted}, // 100%
		{ID: "other", Quarter: "Q3 2024", Status: store.StatusCompleted},
	}
	if got := QuarterCompletion(items, "Q1 2024"); got != 75 {
		t.Fatalf("expected Q1 2024 completion 75, got %d", got)
	}
	if got := QuarterCompletion(items, "Q3 2024"); got != 100 {
		t.Fatalf("expected Q3 2024 completion 100, got %d", got)
	}
}

func TestQuarterCompletionEmptyQuarterIsZero(t *testing.T) {
	if got := QuarterCompletion(nil, "Q2 2024"); got != 0 {
		t.Fatalf("empty dataset must yield 0, got %d", got)
	}
	items := []store.RoadmapItem{{ID: "i", Quarter: "Q1 2024", Status: store.StatusCompleted}}
	if got := QuarterCompletion(items, "Q4 2024"); got != 0 {
		t.Fatalf("quarter with no items must yield 0, got %d", got)
	}
}

func TestVerticalCompletionUsesProductFamilyPrecedence(t *testing.T) {
	products := []store.Product{
		{ID: "p1", FamilyID: "family-a"},
	}
	items := []store.RoadmapItem{
		// Stale verticalId pointing elsewhere; product family wins.
		{ID: "i1", ProductID: "p1", VerticalID: "family-b", Status: store.StatusCompleted},
		{ID: "i2", VerticalID: "family-b", Status: store.StatusBacklog},
	}

	if got := VerticalCompletion(items, products, "family-a"); got != 100 {
		t.Fatalf("expected family-a completion 100 via product precedence, got %d", got)
	}
	if got := VerticalCompletion(items, products, "family-b"); got != 0 {
		t.Fatalf("expected family-b completion 0, got %d", got)
	}
}

func TestVerticalCompletionAllScope(t *testing.T) {
	items := []store.RoadmapItem{
		{ID: "i1", VerticalID: "a", Status: store.StatusCompleted},
		{ID: "i2", VerticalID: "b", Status: store.StatusBacklog},
	}
	if got := VerticalCompletion(items, nil, ScopeAll); got != 50 {
		t.Fatalf("expected all-scope completion 50, got %d", got)
	}
}

func TestVerticalCompletionUnknownVerticalIsZero(t *testing.T) {
	items := []store.RoadmapItem{{ID: "i1", VerticalID: "a", Status: store.StatusCompleted}}
	if got := VerticalCompletion(items, nil, "missing"); got != 0 {
		t.Fatalf("unknown vertical must yield 0, got %d", got)
	}
}
