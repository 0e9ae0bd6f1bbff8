package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KevinKickass/OpenPanelCore/internal/types"
	"github.com/jackc/pgx/v5"
)

// TemplateStore is the database-backed settings template repository.
// Names are unique case-insensitively via the lowercased key column.
type TemplateStore struct {
	client *PostgresClient
}

func NewTemplateStore(client *PostgresClient) *TemplateStore {
	return &TemplateStore{client: client}
}

func (s *TemplateStore) Save(ctx context.Context, tpl types.Template) error {
	if tpl.Name == "" {
		verr := &types.ValidationError{}
		verr.Add("name", "template name is required")
		return verr
	}

	settingsJSON, err := json.Marshal(tpl.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	result, err := s.client.pool.Exec(ctx, `
		INSERT INTO setting_templates (name_key, name, settings)
		VALUES ($1, $2, $3)
		ON CONFLICT (name_key) DO NOTHING
	`, strings.ToLower(tpl.Name), tpl.Name, settingsJSON)

	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	if result.RowsAffected() == 0 {
		verr := &types.ValidationError{}
		verr.Add("name", fmt.Sprintf("template %q already exists", tpl.Name))
		return verr
	}

	return nil
}

func (s *TemplateStore) Get(ctx context.Context, name string) (*types.Template, error) {
	var tpl types.Template
	var settingsJSON []byte

	err := s.client.pool.QueryRow(ctx, `
		SELECT name, settings FROM setting_templates WHERE name_key = $1
	`, strings.ToLower(name)).Scan(&tpl.Name, &settingsJSON)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	if err := json.Unmarshal(settingsJSON, &tpl.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &tpl, nil
}

func (s *TemplateStore) List(ctx context.Context) ([]types.Template, error) {
	rows, err := s.client.pool.Query(ctx, `
		SELECT name, settings FROM setting_templates ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	templates := make([]types.Template, 0)
	for rows.Next() {
		var tpl types.Template
		var settingsJSON []byte
		if err := rows.Scan(&tpl.Name, &settingsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		if err := json.Unmarshal(settingsJSON, &tpl.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}

func (s *TemplateStore) Delete(ctx context.Context, name string) error {
	result, err := s.client.pool.Exec(ctx, `
		DELETE FROM setting_templates WHERE name_key = $1
	`, strings.ToLower(name))

	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("template not found: %s", name)
	}

	return nil
}
