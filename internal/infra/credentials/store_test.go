package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/danadoen/nusaai/internal/sqlinline"
)

type stubExecutor struct {
	token string
	err   error
	query struct {
		query string
		args  []any
	}
	exec struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.query.query = query
	s.query.args = args
	return stubRow{token: s.token, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestPersonalKey(t *testing.T) {
	exec := &stubExecutor{token: " abc123 "}
	store := NewStore(exec)
	key, err := store.PersonalKey(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("PersonalKey error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}
	if exec.query.query != sqlinline.QSelectUserAPIKey {
		t.Fatalf("unexpected query %q", exec.query.query)
	}
	if len(exec.query.args) != 1 || exec.query.args[0] != "user-1" {
		t.Fatalf("unexpected args %#v", exec.query.args)
	}
}

func TestPersonalKeyRequiresUser(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if _, err := store.PersonalKey(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestMasterKeyNoRows(t *testing.T) {
	exec := &stubExecutor{err: pgx.ErrNoRows}
	store := NewStore(exec)
	key, err := store.MasterKey(context.Background())
	if err != nil {
		t.Fatalf("MasterKey error: %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key, got %q", key)
	}
	if len(exec.query.args) != 1 || exec.query.args[0] != MasterKeyName {
		t.Fatalf("unexpected args %#v", exec.query.args)
	}
}

func TestMasterKeyPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	store := NewStore(&stubExecutor{err: boom})
	if _, err := store.MasterKey(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestSetMasterKey(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.SetMasterKey(context.Background(), "  secret "); err != nil {
		t.Fatalf("SetMasterKey error: %v", err)
	}
	if exec.exec.query != sqlinline.QUpsertSystemConfig {
		t.Fatalf("unexpected query %q", exec.exec.query)
	}
	if len(exec.exec.args) != 2 || exec.exec.args[0] != MasterKeyName || exec.exec.args[1] != "secret" {
		t.Fatalf("unexpected args: %#v", exec.exec.args)
	}
}

func TestSetPersonalKeyEmptyClears(t *testing.T) {
	exec := &stubExecutor{}
	store := NewStore(exec)
	if err := store.SetPersonalKey(context.Background(), "user-1", "   "); err != nil {
		t.Fatalf("SetPersonalKey error: %v", err)
	}
	if len(exec.exec.args) != 2 || exec.exec.args[1] != "" {
		t.Fatalf("unexpected args: %#v", exec.exec.args)
	}
}

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"short":                "*****",
		"AIzaSyA1234567890xyz": "AIza************0xyz",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
