package store

import (
	"context"
	"errors"

	"basegraph.app/arena/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// PersonaPresetStore defines the contract for persona presets kept in Postgres.
// They are overlaid on the catalogue presets at startup.
type PersonaPresetStore interface {
	List(ctx context.Context) ([]model.PersonaPreset, error)
	Get(ctx context.Context, id string) (*model.PersonaPreset, error)
	Upsert(ctx context.Context, preset *model.PersonaPreset) error
	Disable(ctx context.Context, id string) error
}
