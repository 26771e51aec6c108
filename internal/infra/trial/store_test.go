package trial

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagStore interface {
	TrialUsed(ctx context.Context, key string) (bool, error)
	MarkTrialUsed(ctx context.Context, key string) error
}

func exerciseStore(t *testing.T, store flagStore) {
	t.Helper()
	ctx := context.Background()

	used, err := store.TrialUsed(ctx, "nusai_guest_trial_used:device-a")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, store.MarkTrialUsed(ctx, "nusai_guest_trial_used:device-a"))

	used, err = store.TrialUsed(ctx, "nusai_guest_trial_used:device-a")
	require.NoError(t, err)
	assert.True(t, used)

	used, err = store.TrialUsed(ctx, "nusai_guest_trial_used:device-b")
	require.NoError(t, err)
	assert.False(t, used, "flags are per device")

	require.NoError(t, store.MarkTrialUsed(ctx, "nusai_guest_trial_used:device-a"), "marking twice is harmless")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)

	val, err := srv.Get("nusai_guest_trial_used:device-a")
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}

func TestRedisStoreIgnoresOtherValues(t *testing.T) {
	srv := miniredis.RunT(t)
	require.NoError(t, srv.Set("nusai_guest_trial_used:x", "false"))
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	used, err := store.TrialUsed(context.Background(), "nusai_guest_trial_used:x")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestNewRedisStoreFromURL(t *testing.T) {
	srv := miniredis.RunT(t)
	store, err := NewRedisStoreFromURL(context.Background(), "redis://"+srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = NewRedisStoreFromURL(context.Background(), "::not a url")
	require.Error(t, err)
}

func TestRedisStoreReportsConnectionErrors(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1}))
	t.Cleanup(func() { _ = store.Close() })
	srv.Close()

	_, err = store.TrialUsed(context.Background(), "k")
	require.Error(t, err)
}
