package cache

import (
	"context"
	"testing"

	"visionpath/api/internal/store"

	"github.com/alicebob/miniredis/v2"
)

func setupTestStore(t *testing.T) (*SnapshotStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	snapshotStore, err := NewSnapshotStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create snapshot store: %v", err)
	}
	return snapshotStore, s
}

func TestNewSnapshotStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	snapshotStore, err := NewSnapshotStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	defer snapshotStore.Close()

	if err := snapshotStore.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestLoadBeforeFirstSave(t *testing.T) {
	snapshotStore, s := setupTestStore(t)
	defer snapshotStore.Close()
	defer s.Close()

	snapshot, found, err := snapshotStore.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Fatal("first run must report no snapshot, not an error")
	}
	if len(snapshot.Items) != 0 || len(snapshot.Products) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	snapshotStore, s := setupTestStore(t)
	defer snapshotStore.Close()
	defer s.Close()

	ctx := context.Background()
	snapshot := store.Snapshot{
		Items: []store.RoadmapItem{{
			ID:         "i1",
			Title:      "Billing revamp",
			Status:     store.StatusInDevelopment,
			Priority:   store.PriorityHigh,
			StartMonth: 4,
			SpanMonths: 3,
			Effort:     2,
			Value:      5,
			Tags:       []string{"billing"},
			SubFeatures: []store.SubFeature{
				{ID: "sf1", Title: "Invoices", IsCompleted: true},
			},
			Quarter: "Q2 2024",
		}},
		Products:   []store.Product{{ID: "p1", Name: "Wallet", FamilyID: "f1", Synced: false}},
		Milestones: []store.Milestone{{ID: "m1", ProductID: "p1", Title: "Beta", Month: 6}},
		Verticals:  []store.Vertical{{ID: "f1", Name: "Fintech", ColorTag: "bg-blue-500", Synced: true}},
	}

	if err := snapshotStore.Save(ctx, snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, found, err := snapshotStore.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Fatal("expected a persisted snapshot")
	}
	if len(loaded.Items) != 1 || loaded.Items[0].Quarter != "Q2 2024" {
		t.Fatalf("items did not round-trip: %+v", loaded.Items)
	}
	if len(loaded.Items[0].SubFeatures) != 1 || !loaded.Items[0].SubFeatures[0].IsCompleted {
		t.Fatalf("sub features did not round-trip: %+v", loaded.Items[0].SubFeatures)
	}
	if loaded.Products[0].Synced {
		t.Fatal("unsynced flag did not round-trip")
	}
	if !loaded.Verticals[0].Synced {
		t.Fatal("synced flag did not round-trip")
	}
}

func TestSaveOverwritesPriorSnapshot(t *testing.T) {
	snapshotStore, s := setupTestStore(t)
	defer snapshotStore.Close()
	defer s.Close()

	ctx := context.Background()
	first := store.Snapshot{Products: []store.Product{{ID: "p1", Name: "First"}}}
	second := store.Snapshot{Products: []store.Product{{ID: "p2", Name: "Second"}}}

	if err := snapshotStore.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := snapshotStore.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, err := snapshotStore.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Products) != 1 || loaded.Products[0].ID != "p2" {
		t.Fatalf("save must overwrite, got %+v", loaded.Products)
	}
}
