package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/sqlinline"
)

type call struct {
	query string
	args  []any
}

type stubExecutor struct {
	row      []any
	rows     [][]any
	err      error
	affected int64
	calls    []call
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	if s.err != nil {
		return pgconn.CommandTag{}, s.err
	}
	return pgconn.NewCommandTag("UPDATE " + strconv.FormatInt(s.affected, 10)), nil
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, call{query: query, args: args})
	return stubRow{values: s.row, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, call{query: query, args: args})
	if s.err != nil {
		return nil, s.err
	}
	return &stubRows{values: s.rows, idx: -1}, nil
}

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type stubRows struct {
	values [][]any
	idx    int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return r.values[r.idx], nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	r.idx++
	return r.idx < len(r.values)
}

func (r *stubRows) Scan(dest ...any) error {
	return assign(r.values[r.idx], dest)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *[]byte:
			*d = v.([]byte)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported dest")
		}
	}
	return nil
}

func profileRow(id string, role, status string, credits int) []any {
	return []any{id, "Ada", "", "ada@example.com", role, "id", status, credits, "", time.Unix(1700000000, 0)}
}

func TestProfileGetByID(t *testing.T) {
	exec := &stubExecutor{row: profileRow("u-1", "user", "free", 1)}
	repo := NewProfileRepository(exec)

	p, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if p.ID != "u-1" || p.Role != domain.UserRoleUser || p.SubscriptionStatus != domain.SubscriptionFree {
		t.Fatalf("unexpected profile %#v", p)
	}
	if p.LanguagePreference != domain.LanguageIndonesian || p.CreditsRemaining != 1 {
		t.Fatalf("unexpected profile %#v", p)
	}
	if exec.calls[0].query != sqlinline.QSelectProfileByID {
		t.Fatalf("unexpected query")
	}
}

func TestProfileGetByIDNotFound(t *testing.T) {
	repo := NewProfileRepository(&stubExecutor{err: pgx.ErrNoRows})
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileCreatePassesDefaults(t *testing.T) {
	exec := &stubExecutor{row: profileRow("u-2", "user", "free", 1)}
	repo := NewProfileRepository(exec)

	if _, err := repo.Create(context.Background(), domain.NewProfile("u-2", "ada@example.com", "")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	args := exec.calls[0].args
	want := []any{"u-2", domain.DefaultFullName, "", "ada@example.com", "user", "en", "free", domain.DefaultFreeCredits}
	if len(args) != len(want) {
		t.Fatalf("unexpected args %#v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: got %#v want %#v", i, args[i], want[i])
		}
	}
}

func TestProfileList(t *testing.T) {
	exec := &stubExecutor{rows: [][]any{
		profileRow("u-1", "admin", "free", 0),
		profileRow("u-2", "user", "pro", 9999),
	}}
	repo := NewProfileRepository(exec)

	profiles, err := repo.List(context.Background(), "  ada ")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(profiles) != 2 || !profiles[0].IsAdmin() || !profiles[1].Unlimited() {
		t.Fatalf("unexpected profiles %#v", profiles)
	}
	if exec.calls[0].args[0] != "ada" {
		t.Fatalf("search not trimmed: %#v", exec.calls[0].args)
	}
}

func TestProfileConsumeCredit(t *testing.T) {
	exec := &stubExecutor{affected: 1}
	repo := NewProfileRepository(exec)

	changed, err := repo.ConsumeCredit(context.Background(), "u-1")
	if err != nil || !changed {
		t.Fatalf("expected change, got %v %v", changed, err)
	}
	if !strings.Contains(exec.calls[0].query, "credits_remaining > 0") {
		t.Fatalf("decrement must be guarded: %q", exec.calls[0].query)
	}

	exec.affected = 0
	changed, err = repo.ConsumeCredit(context.Background(), "u-1")
	if err != nil || changed {
		t.Fatalf("expected no change, got %v %v", changed, err)
	}
}

func TestProfileConsumeCreditError(t *testing.T) {
	boom := errors.New("boom")
	repo := NewProfileRepository(&stubExecutor{err: boom})
	if _, err := repo.ConsumeCredit(context.Background(), "u-1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestProfileStats(t *testing.T) {
	repo := NewProfileRepository(&stubExecutor{row: []any{10, 3, 1}})
	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.TotalUsers != 10 || stats.ProUsers != 3 || stats.AdminUsers != 1 {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestHistoryInsertAndList(t *testing.T) {
	exec := &stubExecutor{rows: [][]any{
		{"h-1", "u-1", "creative", []byte(`{"topic":"batik"}`), []byte(`{"text":"ok"}`), time.Unix(1700000000, 0)},
	}}
	repo := NewHistoryRepository(exec)

	err := repo.Insert(context.Background(), domain.HistoryItem{
		UserID:     "u-1",
		ModuleType: domain.ModuleCreative,
		InputData:  []byte(`{"topic":"batik"}`),
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	args := exec.calls[0].args
	if args[1] != "creative" || args[2] != `{"topic":"batik"}` || args[3] != nil {
		t.Fatalf("unexpected insert args %#v", args)
	}

	items, err := repo.ListRecent(context.Background(), "u-1", 5)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(items) != 1 || items[0].ModuleType != domain.ModuleCreative || string(items[0].OutputData) != `{"text":"ok"}` {
		t.Fatalf("unexpected items %#v", items)
	}
}
