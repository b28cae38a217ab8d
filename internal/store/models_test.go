package store

import "testing"

func TestQuarterForMonth(t *testing.T) {
	cases := []struct {
		month int
		want  string
	}{
		{0, "Q1 2024"},
		{2, "Q1 2024"},
		{3, "Q2 2024"},
		{5, "Q2 2024"},
		{6, "Q3 2024"},
		{8, "Q3 2024"},
		{9, "Q4 2024"},
		{11, "Q4 2024"},
	}
	for _, tc := range cases {
		if got := QuarterForMonth(tc.month); got != tc.want {
			t.Fatalf("month %d: expected %q, got %q", tc.month, tc.want, got)
		}
	}
}

func TestEffectiveVerticalIDPrefersProductFamily(t *testing.T) {
	products := []Product{
		{ID: "p1", FamilyID: "family-a"},
		{ID: "p2"},
	}

	item := RoadmapItem{ProductID: "p1", VerticalID: "stale-family"}
	if got := EffectiveVerticalID(item, products); got != "family-a" {
		t.Fatalf("product family must override the item vertical, got %q", got)
	}

	// Product without a family falls back to the item's own reference.
	item = RoadmapItem{ProductID: "p2", VerticalID: "family-b"}
	if got := EffectiveVerticalID(item, products); got != "family-b" {
		t.Fatalf("expected fallback to item vertical, got %q", got)
	}

	// Dangling product reference resolves through the item, not an error.
	item = RoadmapItem{ProductID: "gone", VerticalID: "family-c"}
	if got := EffectiveVerticalID(item, products); got != "family-c" {
		t.Fatalf("expected item vertical for dangling product, got %q", got)
	}
}

func TestVisibleSpanClampsToYearEnd(t *testing.T) {
	item := RoadmapItem{StartMonth: 0, SpanMonths: 20}
	if got := VisibleSpan(item); got != 12 {
		t.Fatalf("expected visible span 12, got %d", got)
	}
	if item.SpanMonths != 20 {
		t.Fatalf("stored span must never be truncated, got %d", item.SpanMonths)
	}

	item = RoadmapItem{StartMonth: 10, SpanMonths: 5}
	if got := VisibleSpan(item); got != 2 {
		t.Fatalf("expected visible span 2, got %d", got)
	}

	item = RoadmapItem{StartMonth: 3, SpanMonths: 4}
	if got := VisibleSpan(item); got != 4 {
		t.Fatalf("span within the year must pass through, got %d", got)
	}
}

func TestStatusAndPriorityValidation(t *testing.T) {
	for _, status := range []string{StatusBacklog, StatusPlanning, StatusInDevelopment, StatusCompleted} {
		if !ValidStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if ValidStatus("Done") {
		t.Fatal("unknown status accepted")
	}

	for _, priority := range []string{PriorityHigh, PriorityMedium, PriorityLow} {
		if !ValidPriority(priority) {
			t.Fatalf("expected %q to be valid", priority)
		}
	}
	if ValidPriority("Critical") {
		t.Fatal("unknown priority accepted")
	}
}
