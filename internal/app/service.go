package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"visionpath/api/internal/config"
	"visionpath/api/internal/metrics"
	"visionpath/api/internal/progress"
	"visionpath/api/internal/store"
	"visionpath/api/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SyncStatus summarizes remote reachability and the last operation
// outcome, read-only from the presentation layer's perspective.
type SyncStatus string

const (
	StatusOffline SyncStatus = "offline"
	StatusSyncing SyncStatus = "syncing"
	StatusSynced  SyncStatus = "synced"
	StatusError   SyncStatus = "error"
)

type remoteStore interface {
	ListVerticals(context.Context) ([]store.Vertical, error)
	ListProducts(context.Context) ([]store.Product, error)
	ListItems(context.Context) ([]store.RoadmapItem, error)
	ListMilestones(context.Context) ([]store.Milestone, error)
	UpsertVertical(context.Context, store.Vertical) error
	DeleteVertical(context.Context, string) error
	UpsertProduct(context.Context, store.Product) error
	DeleteProduct(context.Context, string) error
	UpsertItem(context.Context, store.RoadmapItem) error
	DeleteItem(context.Context, string) error
	UpsertMilestone(context.Context, store.Milestone) error
	DeleteMilestone(context.Context, string) error
	Ping(ctx context.Context) error
}

type snapshotCache interface {
	Save(context.Context, store.Snapshot) error
	Load(context.Context) (store.Snapshot, bool, error)
	Ping(ctx context.Context) error
}

// Service owns the in-memory dataset and the sync status. The remote
// gateway may be nil, which means the deployment is unconfigured and
// the service runs offline against the cache alone.
type Service struct {
	cfg    config.Config
	remote remoteStore
	cache  snapshotCache
	logger *zap.Logger

	mu     sync.Mutex
	state  store.Snapshot
	status SyncStatus
}

func New(cfg config.Config, remote remoteStore, cache snapshotCache, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		remote: remote,
		cache:  cache,
		logger: logger,
		status: StatusOffline,
	}
}

func (s *Service) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) setStatus(status SyncStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// SnapshotCopy returns the current dataset for read-only use.
func (s *Service) SnapshotCopy() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Snapshot{
		Items:      append([]store.RoadmapItem(nil), s.state.Items...),
		Products:   append([]store.Product(nil), s.state.Products...),
		Milestones: append([]store.Milestone(nil), s.state.Milestones...),
		Verticals:  append([]store.Vertical(nil), s.state.Verticals...),
	}
}

// LoadCache populates in-memory state from the last persisted snapshot.
// A missing snapshot (first run) is not an error; a failing cache read
// is reported but leaves the service usable with empty state.
func (s *Service) LoadCache(ctx context.Context) error {
	snapshot, found, err := s.cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local snapshot: %w", err)
	}
	if !found {
		return nil
	}
	s.mu.Lock()
	s.state = snapshot
	s.mu.Unlock()
	return nil
}

// Reconcile pulls all four collections from the remote store and makes
// the result the new source of truth. The four reads run concurrently
// and apply all-or-nothing: any failure discards the whole pass and
// leaves prior state untouched. Local entities that were never pushed
// (Synced == false) and are absent from the remote result are
// preserved rather than discarded, so an offline edit survives the
// next successful pull.
func (s *Service) Reconcile(ctx context.Context) error {
	if s.remote == nil {
		s.setStatus(StatusOffline)
		metrics.ReconcileTotal.WithLabelValues("offline").Inc()
		return nil
	}

	s.setStatus(StatusSyncing)

	var (
		verticals  []store.Vertical
		products   []store.Product
		items      []store.RoadmapItem
		milestones []store.Milestone
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		started := time.Now()
		result, err := s.remote.ListVerticals(gctx)
		if err != nil {
			s.logger.Error("remote read failed", zap.String("collection", "teams"), zap.Error(err))
			return fmt.Errorf("teams: %w", err)
		}
		metrics.ObserveRemoteRead("teams", time.Since(started))
		verticals = result
		return nil
	})
	g.Go(func() error {
		started := time.Now()
		result, err := s.remote.ListProducts(gctx)
		if err != nil {
			s.logger.Error("remote read failed", zap.String("collection", "products"), zap.Error(err))
			return fmt.Errorf("products: %w", err)
		}
		metrics.ObserveRemoteRead("products", time.Since(started))
		products = result
		return nil
	})
	g.Go(func() error {
		started := time.Now()
		result, err := s.remote.ListItems(gctx)
		if err != nil {
			s.logger.Error("remote read failed", zap.String("collection", "roadmap_items"), zap.Error(err))
			return fmt.Errorf("roadmap_items: %w", err)
		}
		metrics.ObserveRemoteRead("roadmap_items", time.Since(started))
		items = result
		return nil
	})
	g.Go(func() error {
		started := time.Now()
		result, err := s.remote.ListMilestones(gctx)
		if err != nil {
			s.logger.Error("remote read failed", zap.String("collection", "milestones"), zap.Error(err))
			return fmt.Errorf("milestones: %w", err)
		}
		metrics.ObserveRemoteRead("milestones", time.Since(started))
		milestones = result
		return nil
	})

	if err := g.Wait(); err != nil {
		s.setStatus(StatusError)
		metrics.ReconcileTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("reconcile: %w", err)
	}

	s.mu.Lock()
	merged := store.Snapshot{
		Items:      preserveUnsynced(items, s.state.Items, func(e store.RoadmapItem) string { return e.ID }, func(e store.RoadmapItem) bool { return e.Synced }),
		Products:   preserveUnsynced(products, s.state.Products, func(e store.Product) string { return e.ID }, func(e store.Product) bool { return e.Synced }),
		Milestones: preserveUnsynced(milestones, s.state.Milestones, func(e store.Milestone) string { return e.ID }, func(e store.Milestone) bool { return e.Synced }),
		Verticals:  preserveUnsynced(verticals, s.state.Verticals, func(e store.Vertical) string { return e.ID }, func(e store.Vertical) bool { return e.Synced }),
	}
	s.state = merged
	s.mu.Unlock()

	s.persistSnapshot(ctx, merged)
	s.setStatus(StatusSynced)
	metrics.ReconcileTotal.WithLabelValues("synced").Inc()
	return nil
}

// preserveUnsynced makes the remote collection authoritative while
// retaining local entries that were never pushed: an unsynced local
// entity whose id the remote does not know is appended after the
// remote entries, still marked unsynced.
func preserveUnsynced[T any](remote, local []T, id func(T) string, synced func(T) bool) []T {
	known := make(map[string]struct{}, len(remote))
	for _, entity := range remote {
		known[id(entity)] = struct{}{}
	}
	merged := append([]T(nil), remote...)
	for _, entity := range local {
		if synced(entity) {
			continue
		}
		if _, ok := known[id(entity)]; ok {
			continue
		}
		merged = append(merged, entity)
	}
	return merged
}

// RunResyncLoop re-pulls remote state on a fixed interval until the
// context is cancelled. A zero interval disables the loop.
func (s *Service) RunResyncLoop(ctx context.Context) {
	if s.cfg.ResyncInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.ResyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reconcile(ctx); err != nil {
				s.logger.Warn("periodic reconcile failed", zap.Error(err))
			}
		}
	}
}

// persistSnapshot writes the full dataset to the local cache. Failures
// are logged and counted, never surfaced: in-memory state stays
// authoritative for the session.
func (s *Service) persistSnapshot(ctx context.Context, snapshot store.Snapshot) {
	if err := s.cache.Save(ctx, snapshot); err != nil {
		metrics.CacheWriteFailures.Inc()
		s.logger.Error("local snapshot write failed", zap.Error(err))
	}
}

// push runs one remote write and translates its outcome into the sync
// status. A nil gateway records "offline" and leaves status alone; an
// error never propagates to the caller of a mutation.
func (s *Service) push(ctx context.Context, entity, op string, call func(context.Context) error) bool {
	if s.remote == nil {
		metrics.MutationTotal.WithLabelValues(entity, op, "offline").Inc()
		return false
	}
	s.setStatus(StatusSyncing)
	if err := call(ctx); err != nil {
		s.logger.Error("remote write failed",
			zap.String("entity", entity),
			zap.String("op", op),
			zap.Error(err),
		)
		s.setStatus(StatusError)
		metrics.MutationTotal.WithLabelValues(entity, op, "error").Inc()
		return false
	}
	s.setStatus(StatusSynced)
	metrics.MutationTotal.WithLabelValues(entity, op, "synced").Inc()
	return true
}

// SaveItem upserts a roadmap item: replace in place when the id exists,
// append otherwise. The quarter is always recomputed from StartMonth;
// whatever the caller supplied is ignored.
func (s *Service) SaveItem(ctx context.Context, item store.RoadmapItem) (store.RoadmapItem, error) {
	if err := validateItem(item); err != nil {
		return store.RoadmapItem{}, err
	}
	if item.ID == "" {
		item.ID = util.NewID("itm")
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	item.Quarter = store.QuarterForMonth(item.StartMonth)

	// Phase one: the edit lands in memory before any remote attempt.
	item.Synced = false
	s.applyItem(item)

	if s.push(ctx, "item", "upsert", func(ctx context.Context) error {
		return s.remote.UpsertItem(ctx, item)
	}) {
		item.Synced = true
		s.applyItem(item)
	}

	s.persistSnapshot(ctx, s.currentSnapshot())
	return item, nil
}

func (s *Service) applyItem(item store.RoadmapItem) {
	s.mu.Lock()
	s.state.Items = upsertByID(s.state.Items, item, func(e store.RoadmapItem) string { return e.ID })
	s.mu.Unlock()
}

func (s *Service) currentSnapshot() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	s.state.Items = deleteByID(s.state.Items, id, func(e store.RoadmapItem) string { return e.ID })
	snapshot := s.state
	s.mu.Unlock()

	s.push(ctx, "item", "delete", func(ctx context.Context) error {
		return s.remote.DeleteItem(ctx, id)
	})

	s.persistSnapshot(ctx, snapshot)
	return nil
}

func (s *Service) SaveProduct(ctx context.Context, product store.Product) (store.Product, error) {
	if product.Name == "" {
		return store.Product{}, validationError("product name is required")
	}
	if product.ID == "" {
		product.ID = util.NewID("prd")
	}

	product.Synced = false
	s.applyProduct(product)

	if s.push(ctx, "product", "upsert", func(ctx context.Context) error {
		return s.remote.UpsertProduct(ctx, product)
	}) {
		product.Synced = true
		s.applyProduct(product)
	}

	s.persistSnapshot(ctx, s.currentSnapshot())
	return product, nil
}

func (s *Service) applyProduct(product store.Product) {
	s.mu.Lock()
	s.state.Products = upsertByID(s.state.Products, product, func(e store.Product) string { return e.ID })
	s.mu.Unlock()
}

// DeleteProduct removes the product only. Items referencing it keep
// their ProductID and resolve as unlinked; the remote layer's cascade
// behavior, if any, is deliberately not relied on.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	s.state.Products = deleteByID(s.state.Products, id, func(e store.Product) string { return e.ID })
	snapshot := s.state
	s.mu.Unlock()

	s.push(ctx, "product", "delete", func(ctx context.Context) error {
		return s.remote.DeleteProduct(ctx, id)
	})

	s.persistSnapshot(ctx, snapshot)
	return nil
}

func (s *Service) SaveMilestone(ctx context.Context, milestone store.Milestone) (store.Milestone, error) {
	if milestone.Title == "" {
		return store.Milestone{}, validationError("milestone title is required")
	}
	if milestone.ID == "" {
		milestone.ID = util.NewID("mst")
	}

	milestone.Synced = false
	s.applyMilestone(milestone)

	if s.push(ctx, "milestone", "upsert", func(ctx context.Context) error {
		return s.remote.UpsertMilestone(ctx, milestone)
	}) {
		milestone.Synced = true
		s.applyMilestone(milestone)
	}

	s.persistSnapshot(ctx, s.currentSnapshot())
	return milestone, nil
}

func (s *Service) applyMilestone(milestone store.Milestone) {
	s.mu.Lock()
	s.state.Milestones = upsertByID(s.state.Milestones, milestone, func(e store.Milestone) string { return e.ID })
	s.mu.Unlock()
}

func (s *Service) DeleteMilestone(ctx context.Context, id string) error {
	s.mu.Lock()
	s.state.Milestones = deleteByID(s.state.Milestones, id, func(e store.Milestone) string { return e.ID })
	snapshot := s.state
	s.mu.Unlock()

	s.push(ctx, "milestone", "delete", func(ctx context.Context) error {
		return s.remote.DeleteMilestone(ctx, id)
	})

	s.persistSnapshot(ctx, snapshot)
	return nil
}

func (s *Service) SaveVertical(ctx context.Context, vertical store.Vertical) (store.Vertical, error) {
	if vertical.Name == "" {
		return store.Vertical{}, validationError("vertical name is required")
	}
	if vertical.ID == "" {
		vertical.ID = util.NewID("ver")
	}

	vertical.Synced = false
	s.applyVertical(vertical)

	if s.push(ctx, "vertical", "upsert", func(ctx context.Context) error {
		return s.remote.UpsertVertical(ctx, vertical)
	}) {
		vertical.Synced = true
		s.applyVertical(vertical)
	}

	s.persistSnapshot(ctx, s.currentSnapshot())
	return vertical, nil
}

func (s *Service) applyVertical(vertical store.Vertical) {
	s.mu.Lock()
	s.state.Verticals = upsertByID(s.state.Verticals, vertical, func(e store.Vertical) string { return e.ID })
	s.mu.Unlock()
}

// DeleteVertical removes the family only. Products keep their FamilyID
// and items their VerticalID; both resolve as unlinked from then on.
func (s *Service) DeleteVertical(ctx context.Context, id string) error {
	s.mu.Lock()
	s.state.Verticals = deleteByID(s.state.Verticals, id, func(e store.Vertical) string { return e.ID })
	snapshot := s.state
	s.mu.Unlock()

	s.push(ctx, "vertical", "delete", func(ctx context.Context) error {
		return s.remote.DeleteVertical(ctx, id)
	})

	s.persistSnapshot(ctx, snapshot)
	return nil
}

// QuarterProgress returns the completion percentage for one quarter.
func (s *Service) QuarterProgress(quarter string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.QuarterCompletion(s.state.Items, quarter)
}

// VerticalProgress returns the completion percentage for one vertical,
// or for every item when given progress.ScopeAll.
func (s *Service) VerticalProgress(verticalID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.VerticalCompletion(s.state.Items, s.state.Products, verticalID)
}

// Ping checks the backing stores for the readiness probe. A nil remote
// gateway is healthy by definition.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if s.remote != nil {
		if err := s.remote.Ping(ctx); err != nil {
			return fmt.Errorf("remote: %w", err)
		}
	}
	return nil
}

func upsertByID[T any](entities []T, entity T, id func(T) string) []T {
	for i := range entities {
		if id(entities[i]) == id(entity) {
			next := append([]T(nil), entities...)
			next[i] = entity
			return next
		}
	}
	return append(append([]T(nil), entities...), entity)
}

func deleteByID[T any](entities []T, target string, id func(T) string) []T {
	next := make([]T, 0, len(entities))
	for _, entity := range entities {
		if id(entity) != target {
			next = append(next, entity)
		}
	}
	return next
}

func validateItem(item store.RoadmapItem) error {
	if item.Title == "" {
		return validationError("item title is required")
	}
	if !store.ValidStatus(item.Status) {
		return validationError(fmt.Sprintf("unknown status %q", item.Status))
	}
	if !store.ValidPriority(item.Priority) {
		return validationError(fmt.Sprintf("unknown priority %q", item.Priority))
	}
	if item.StartMonth < 0 || item.StartMonth > 11 {
		return validationError("startMonth must be between 0 and 11")
	}
	if item.SpanMonths < 1 {
		return validationError("spanMonths must be at least 1")
	}
	if item.Effort < 1 || item.Effort > 5 {
		return validationError("effort must be between 1 and 5")
	}
	if item.Value < 1 || item.Value > 5 {
		return validationError("value must be between 1 and 5")
	}
	return nil
}
