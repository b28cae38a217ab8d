package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore is the remote gateway over the four cloud collections.
// Column names follow the remote snake_case convention; translation to
// the in-memory shape happens here and nowhere else.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) ListVerticals(ctx context.Context) ([]Vertical, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(color, '')
		FROM teams
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	items := make([]Vertical, 0)
	for rows.Next() {
		var item Vertical
		if err := rows.Scan(&item.ID, &item.Name, &item.ColorTag); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		item.Synced = true
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpsertVertical(ctx context.Context, vertical Vertical) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, color=EXCLUDED.color
	`, vertical.ID, vertical.Name, vertical.ColorTag)
	if err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteVertical(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(color, ''), COALESCE(family_id, '')
		FROM products
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	items := make([]Product, 0)
	for rows.Next() {
		var item Product
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.ColorTag, &item.FamilyID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		item.Synced = true
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpsertProduct(ctx context.Context, product Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, color, family_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			description=EXCLUDED.description,
			color=EXCLUDED.color,
			family_id=EXCLUDED.family_id
	`, product.ID, product.Name, product.Description, product.ColorTag, product.FamilyID)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListItems(ctx context.Context) ([]RoadmapItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(product_id, ''), COALESCE(team_id, ''), COALESCE(milestone_id, ''),
			title, COALESCE(description, ''), status, priority,
			start_month, span_months, effort, value,
			COALESCE(tags, '[]'), COALESCE(dependencies, '[]'), COALESCE(sub_features, '[]'),
			COALESCE(created_at, 0), COALESCE(quarter, '')
		FROM roadmap_items
	`)
	if err != nil {
		return nil, fmt.Errorf("list roadmap items: %w", err)
	}
	defer rows.Close()

	items := make([]RoadmapItem, 0)
	for rows.Next() {
		var item RoadmapItem
		var tagsRaw, depsRaw, subFeaturesRaw []byte
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.VerticalID,
			&item.MilestoneID,
			&item.Title,
			&item.Description,
			&item.Status,
			&item.Priority,
			&item.StartMonth,
			&item.SpanMonths,
			&item.Effort,
			&item.Value,
			&tagsRaw,
			&depsRaw,
			&subFeaturesRaw,
			&item.CreatedAt,
			&item.Quarter,
		); err != nil {
			return nil, fmt.Errorf("scan roadmap item: %w", err)
		}
		if err := json.Unmarshal(tagsRaw, &item.Tags); err != nil {
			return nil, fmt.Errorf("decode item tags: %w", err)
		}
		if err := json.Unmarshal(depsRaw, &item.Dependencies); err != nil {
			return nil, fmt.Errorf("decode item dependencies: %w", err)
		}
		if err := json.Unmarshal(subFeaturesRaw, &item.SubFeatures); err != nil {
			return nil, fmt.Errorf("decode item sub features: %w", err)
		}
		item.Synced = true
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roadmap items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpsertItem(ctx context.Context, item RoadmapItem) error {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	deps := item.Dependencies
	if deps == nil {
		deps = []Dependency{}
	}
	subFeatures := item.SubFeatures
	if subFeatures == nil {
		subFeatures = []SubFeature{}
	}
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal item tags: %w", err)
	}
	encodedDeps, err := json.Marshal(deps)
	if err != nil {
		return fmt.Errorf("marshal item dependencies: %w", err)
	}
	encodedSubFeatures, err := json.Marshal(subFeatures)
	if err != nil {
		return fmt.Errorf("marshal item sub features: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roadmap_items (id, product_id, team_id, milestone_id, title, description, status, priority,
			start_month, span_months, effort, value, tags, dependencies, sub_features, created_at, quarter)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8,
			$9, $10, $11, $12, $13::jsonb, $14::jsonb, $15::jsonb, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			product_id=EXCLUDED.product_id,
			team_id=EXCLUDED.team_id,
			milestone_id=EXCLUDED.milestone_id,
			title=EXCLUDED.title,
			description=EXCLUDED.description,
			status=EXCLUDED.status,
			priority=EXCLUDED.priority,
			start_month=EXCLUDED.start_month,
			span_months=EXCLUDED.span_months,
			effort=EXCLUDED.effort,
			value=EXCLUDED.value,
			tags=EXCLUDED.tags,
			dependencies=EXCLUDED.dependencies,
			sub_features=EXCLUDED.sub_features,
			created_at=EXCLUDED.created_at,
			quarter=EXCLUDED.quarter
	`, item.ID, item.ProductID, item.VerticalID, item.MilestoneID, item.Title, item.Description,
		item.Status, item.Priority, item.StartMonth, item.SpanMonths, item.Effort, item.Value,
		string(encodedTags), string(encodedDeps), string(encodedSubFeatures), item.CreatedAt, item.Quarter)
	if err != nil {
		return fmt.Errorf("upsert roadmap item: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM roadmap_items WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete roadmap item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMilestones(ctx context.Context) ([]Milestone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(product_id, ''), title, COALESCE(month, 0), COALESCE(description, '')
		FROM milestones
	`)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	items := make([]Milestone, 0)
	for rows.Next() {
		var item Milestone
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Title, &item.Month, &item.Description); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		item.Synced = true
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpsertMilestone(ctx context.Context, milestone Milestone) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO milestones (id, product_id, title, month, description)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			product_id=EXCLUDED.product_id,
			title=EXCLUDED.title,
			month=EXCLUDED.month,
			description=EXCLUDED.description
	`, milestone.ID, milestone.ProductID, milestone.Title, milestone.Month, milestone.Description)
	if err != nil {
		return fmt.Errorf("upsert milestone: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteMilestone(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	return nil
}

// Ping verifies the remote connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
