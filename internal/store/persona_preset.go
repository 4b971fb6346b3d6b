package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"basegraph.app/arena/core/db/sqlc"
	"basegraph.app/arena/internal/model"
)

type personaPresetStore struct {
	queries *sqlc.Queries
}

func NewPersonaPresetStore(queries *sqlc.Queries) PersonaPresetStore {
	return &personaPresetStore{queries: queries}
}

func (s *personaPresetStore) List(ctx context.Context) ([]model.PersonaPreset, error) {
	rows, err := s.queries.ListPersonaPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing persona presets: %w", err)
	}

	presets := make([]model.PersonaPreset, 0, len(rows))
	for _, row := range rows {
		presets = append(presets, *toPersonaPresetModel(row))
	}
	return presets, nil
}

func (s *personaPresetStore) Get(ctx context.Context, id string) (*model.PersonaPreset, error) {
	row, err := s.queries.GetPersonaPreset(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting persona preset %s: %w", id, err)
	}
	return toPersonaPresetModel(row), nil
}

// Upsert writes preset and re-enables it if it was disabled.
func (s *personaPresetStore) Upsert(ctx context.Context, preset *model.PersonaPreset) error {
	if preset.ID == "" || preset.Prompt == "" {
		return fmt.Errorf("persona preset requires id and prompt")
	}

	row, err := s.queries.UpsertPersonaPreset(ctx, sqlc.UpsertPersonaPresetParams{
		ID:          preset.ID,
		Label:       preset.Label,
		Description: preset.Description,
		Prompt:      preset.Prompt,
		Position:    int32(preset.Position),
	})
	if err != nil {
		return fmt.Errorf("upserting persona preset %s: %w", preset.ID, err)
	}
	*preset = *toPersonaPresetModel(row)
	return nil
}

func (s *personaPresetStore) Disable(ctx context.Context, id string) error {
	n, err := s.queries.DisablePersonaPreset(ctx, id)
	if err != nil {
		return fmt.Errorf("disabling persona preset %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toPersonaPresetModel(row sqlc.PersonaPreset) *model.PersonaPreset {
	updatedAt := row.UpdatedAt
	return &model.PersonaPreset{
		ID:          row.ID,
		Label:       row.Label,
		Description: row.Description,
		Prompt:      row.Prompt,
		Position:    int(row.Position),
		UpdatedAt:   &updatedAt,
	}
}
