package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/solidarity-overthrow/relay/internal/core"
	"github.com/solidarity-overthrow/relay/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := domain.Identity{Username: "alice", UserID: "u1", IsAdmin: true}
	token, err := store.CreateSession(ctx, want)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	got, err := store.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != want {
		t.Fatalf("lookup = %+v, want %+v", got, want)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Lookup(context.Background(), "bogus")
	if !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestDeleteSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	token, err := store.CreateSession(ctx, domain.Identity{Username: "alice", UserID: "u1"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := store.DeleteSession(ctx, token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.Lookup(ctx, token); !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("err after delete = %v, want ErrSessionNotFound", err)
	}
}

func TestCreateSessionRejectsEmptyUsername(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateSession(context.Background(), domain.Identity{UserID: "u1"})
	if !errors.Is(err, domain.ErrUsernameEmpty) {
		t.Fatalf("err = %v, want ErrUsernameEmpty", err)
	}
}

func TestMutedSlotAbsentIsEmpty(t *testing.T) {
	store := newTestStore(t)
	ids, err := store.LoadMuted(context.Background(), "global")
	if err != nil {
		t.Fatalf("load muted: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want empty", ids)
	}
}

func TestMutedSlotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveMuted(ctx, "global", []domain.UserID{"u1", "u2"}); err != nil {
		t.Fatalf("save muted: %v", err)
	}
	ids, err := store.LoadMuted(ctx, "global")
	if err != nil {
		t.Fatalf("load muted: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Fatalf("ids = %v, want [u1 u2]", ids)
	}

	// Overwrite, including down to empty.
	if err := store.SaveMuted(ctx, "global", nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	ids, err = store.LoadMuted(ctx, "global")
	if err != nil {
		t.Fatalf("reload muted: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want empty after overwrite", ids)
	}
}

func TestMutedSlotsAreScopedPerRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveMuted(ctx, "global", []domain.UserID{"u1"}); err != nil {
		t.Fatalf("save muted: %v", err)
	}
	ids, err := store.LoadMuted(ctx, "other")
	if err != nil {
		t.Fatalf("load muted: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want empty for other room", ids)
	}
}
