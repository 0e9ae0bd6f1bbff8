package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/jackc/pgx/v5"
)

// List returns summaries of all stored dashboards.
func (p *PostgresClient) List(ctx context.Context) ([]types.DashboardSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT name, is_published, jsonb_array_length(widgets), updated_at
		FROM dashboards
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboards: %w", err)
	}
	defer rows.Close()

	summaries := make([]types.DashboardSummary, 0)
	for rows.Next() {
		var s types.DashboardSummary
		if err := rows.Scan(&s.Name, &s.IsPublished, &s.WidgetCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dashboard: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// Load returns the full widget+layout snapshot for a named dashboard.
func (p *PostgresClient) Load(ctx context.Context, name string) (*types.Dashboard, error) {
	var d types.Dashboard
	var widgetsJSON []byte

	err := p.pool.QueryRow(ctx, `
		SELECT name, widgets, is_published, updated_at
		FROM dashboards
		WHERE name = $1
	`, name).Scan(&d.Name, &widgetsJSON, &d.IsPublished, &d.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dashboard not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	if err := json.Unmarshal(widgetsJSON, &d.Widgets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal widgets: %w", err)
	}

	return &d, nil
}

// Active returns the one published dashboard, or nil when none is
// published.
func (p *PostgresClient) Active(ctx context.Context) (*types.Dashboard, error) {
	var name string
	err := p.pool.QueryRow(ctx, `
		SELECT name FROM dashboards WHERE is_published LIMIT 1
	`).Scan(&name)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active dashboard: %w", err)
	}

	return p.Load(ctx, name)
}

// Create stores a new dashboard document. A claimed name is refused with
// StateConflictError; nothing is overwritten.
func (p *PostgresClient) Create(ctx context.Context, d *types.Dashboard) error {
	widgetsJSON, err := json.Marshal(d.Widgets)
	if err != nil {
		return fmt.Errorf("failed to marshal widgets: %w", err)
	}

	result, err := p.pool.Exec(ctx, `
		INSERT INTO dashboards (name, widgets, is_published)
		VALUES ($1, $2, false)
		ON CONFLICT (name) DO NOTHING
	`, d.Name, widgetsJSON)

	if err != nil {
		return fmt.Errorf("failed to insert dashboard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &types.StateConflictError{
			Message: fmt.Sprintf("dashboard name already taken: %s", d.Name),
		}
	}

	return nil
}

// Update overwrites the widget collection of an existing dashboard.
func (p *PostgresClient) Update(ctx context.Context, name string, widgets []types.Widget) error {
	widgetsJSON, err := json.Marshal(widgets)
	if err != nil {
		return fmt.Errorf("failed to marshal widgets: %w", err)
	}

	result, err := p.pool.Exec(ctx, `
		UPDATE dashboards
		SET widgets = $2, updated_at = NOW()
		WHERE name = $1
	`, name, widgetsJSON)

	if err != nil {
		return fmt.Errorf("failed to update dashboard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("dashboard not found: %s", name)
	}

	return nil
}

// Publish flags one dashboard as the viewer's active one. At most one
// dashboard is published at a time, so the flag is cleared everywhere
// else in the same transaction.
func (p *PostgresClient) Publish(ctx context.Context, name string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE dashboards SET is_published = false WHERE is_published
	`); err != nil {
		return fmt.Errorf("failed to clear published flags: %w", err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE dashboards
		SET is_published = true, updated_at = NOW()
		WHERE name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("failed to publish dashboard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("dashboard not found: %s", name)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a dashboard. Deleting the published one leaves no
// active dashboard; nothing is auto-promoted.
func (p *PostgresClient) Delete(ctx context.Context, name string) error {
	result, err := p.pool.Exec(ctx, `
		DELETE FROM dashboards WHERE name = $1
	`, name)

	if err != nil {
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// AddWidget appends one widget to a stored dashboard, mirroring an
// in-memory session add.
func (p *PostgresClient) AddWidget(ctx context.Context, name string, w types.Widget) error {
	return p.mutateWidgets(ctx, name, func(widgets []types.Widget) ([]types.Widget, error) {
		for _, existing := range widgets {
			if existing.ID == w.ID {
				return nil, fmt.Errorf("widget already exists: %s", w.ID)
			}
		}
		return append(widgets, w), nil
	})
}

// RemoveWidget deletes one widget from a stored dashboard.
func (p *PostgresClient) RemoveWidget(ctx context.Context, name, widgetID string) error {
	return p.mutateWidgets(ctx, name, func(widgets []types.Widget) ([]types.Widget, error) {
		for i := range widgets {
			if widgets[i].ID == widgetID {
				return append(widgets[:i], widgets[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("widget not found: %s", widgetID)
	})
}

func (p *PostgresClient) mutateWidgets(ctx context.Context, name string, mutate func([]types.Widget) ([]types.Widget, error)) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var widgetsJSON []byte
	err = tx.QueryRow(ctx, `
		SELECT widgets FROM dashboards WHERE name = $1 FOR UPDATE
	`, name).Scan(&widgetsJSON)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("dashboard not found: %s", name)
	}
	if err != nil {
		return fmt.Errorf("failed to lock dashboard: %w", err)
	}

	var widgets []types.Widget
	if err := json.Unmarshal(widgetsJSON, &widgets); err != nil {
		return fmt.Errorf("failed to unmarshal widgets: %w", err)
	}

	next, err := mutate(widgets)
	if err != nil {
		return err
	}

	nextJSON, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal widgets: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE dashboards SET widgets = $2, updated_at = NOW() WHERE name = $1
	`, name, nextJSON); err != nil {
		return fmt.Errorf("failed to write widgets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
