package store_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/arena/core/db/sqlc"
	"basegraph.app/arena/internal/model"
	"basegraph.app/arena/internal/store"
)

// fakeRow scans a fixed tuple into typed destinations.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int32:
			*p = r.values[i].(int32)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].Scan(dest...)
}

// mockDB stands in for the pool behind the generated queries.
type mockDB struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}

// presetRow is an enabled persona_presets row in column order.
func presetRow(id, label, description, prompt string, position int32, at time.Time) []any {
	return []any{id, label, description, prompt, position, false, at, at}
}

var _ = Describe("PersonaPresetStore", func() {
	var (
		ctx context.Context
		q   *mockDB
		s   store.PersonaPresetStore
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		q = &mockDB{}
		s = store.NewPersonaPresetStore(sqlc.New(q))
		now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	Describe("List", func() {
		It("returns enabled presets in order", func() {
			q.queryFn = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				Expect(sql).To(ContainSubstring("NOT disabled"))
				return &fakeRows{rows: []fakeRow{
					{values: presetRow("stoic", "Stoic", "Unmoved", "Speak like Marcus Aurelius.", 1, now)},
					{values: presetRow("pirate", "Pirate", "Arr", "Speak like a pirate.", 2, now)},
				}}, nil
			}

			presets, err := s.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(presets).To(HaveLen(2))
			Expect(presets[0].ID).To(Equal("stoic"))
			Expect(presets[1].Prompt).To(Equal("Speak like a pirate."))
			Expect(presets[1].Position).To(Equal(2))
			Expect(*presets[1].UpdatedAt).To(Equal(now))
		})

		It("wraps query failures", func() {
			q.queryFn = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return nil, errors.New("connection refused")
			}
			_, err := s.List(ctx)
			Expect(err).To(MatchError(ContainSubstring("listing persona presets")))
		})

		It("surfaces iteration errors", func() {
			q.queryFn = func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &fakeRows{err: errors.New("conn reset")}, nil
			}
			_, err := s.List(ctx)
			Expect(err).To(MatchError(ContainSubstring("conn reset")))
		})
	})

	Describe("Get", func() {
		It("maps missing rows to ErrNotFound", func() {
			q.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
				Expect(args).To(Equal([]any{"ghost"}))
				return fakeRow{err: pgx.ErrNoRows}
			}
			_, err := s.Get(ctx, "ghost")
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("returns the preset", func() {
			q.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
				return fakeRow{values: presetRow("stoic", "Stoic", "", "p", 0, now)}
			}
			p, err := s.Get(ctx, "stoic")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Label).To(Equal("Stoic"))
		})
	})

	Describe("Upsert", func() {
		It("writes the preset and records the update time", func() {
			q.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
				Expect(sql).To(ContainSubstring("ON CONFLICT (id) DO UPDATE"))
				Expect(args).To(Equal([]any{"stoic", "Stoic", "d", "p", int32(3)}))
				return fakeRow{values: presetRow("stoic", "Stoic", "d", "p", 3, now)}
			}

			preset := &model.PersonaPreset{ID: "stoic", Label: "Stoic", Description: "d", Prompt: "p", Position: 3}
			Expect(s.Upsert(ctx, preset)).To(Succeed())
			Expect(*preset.UpdatedAt).To(Equal(now))
		})

		It("wraps write failures", func() {
			q.queryRowFn = func(ctx context.Context, sql string, args ...any) pgx.Row {
				return fakeRow{err: errors.New("connection refused")}
			}
			err := s.Upsert(ctx, &model.PersonaPreset{ID: "stoic", Prompt: "p"})
			Expect(err).To(MatchError(ContainSubstring("upserting persona preset stoic")))
		})

		It("requires an id and a prompt", func() {
			Expect(s.Upsert(ctx, &model.PersonaPreset{ID: "x"})).NotTo(Succeed())
		})
	})

	Describe("Disable", func() {
		It("reports unknown presets", func() {
			q.execFn = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				return pgconn.NewCommandTag("UPDATE 0"), nil
			}
			Expect(s.Disable(ctx, "ghost")).To(MatchError(store.ErrNotFound))
		})

		It("disables known presets", func() {
			q.execFn = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				Expect(sql).To(ContainSubstring("SET disabled = TRUE"))
				Expect(args).To(Equal([]any{"stoic"}))
				return pgconn.NewCommandTag("UPDATE 1"), nil
			}
			Expect(s.Disable(ctx, "stoic")).To(Succeed())
		})
	})
})
