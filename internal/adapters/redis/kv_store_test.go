package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertautec/alertautec/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestKeyValueStore_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKeyValueStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alertautec_token", "tok"))

	val, ok, err := store.Get(ctx, "alertautec_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", val)

	raw, err := client.Get(ctx, DefaultKeyPrefix+"alertautec_token").Result()
	require.NoError(t, err)
	assert.Equal(t, "tok", raw)

	ttl, err := client.TTL(ctx, DefaultKeyPrefix+"alertautec_token").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "session keys must not expire")
}

func TestKeyValueStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKeyValueStore(client)

	val, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)

	_, ok, err = store.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyValueStore_DeleteMany(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKeyValueStoreWithPrefix(client, "test:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a_user", `{"id":"u1"}`))
	require.NoError(t, store.Set(ctx, "a_token", "tok"))

	require.NoError(t, store.Delete(ctx, "a_user", "a_token", ""))

	for _, k := range []string{"a_user", "a_token"} {
		_, ok, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}

	require.NoError(t, store.Delete(ctx, "a_user"), "deleting absent keys is not an error")
	require.NoError(t, store.Delete(ctx))
}

func TestKeyValueStore_SetEmptyKey(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKeyValueStore(client)
	assert.Error(t, store.Set(context.Background(), "", "x"))
}

// recordingHook answers every command locally and keeps its arguments.
type recordingHook struct {
	cmds [][]any
}

func (h *recordingHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *recordingHook) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.cmds = append(h.cmds, cmd.Args())
		return nil
	}
}

func (h *recordingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestKeyValueStore_DeleteIssuesOneCommandPerKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	hook := &recordingHook{}
	client.AddHook(hook)

	store := NewKeyValueStore(client)
	require.NoError(t, store.Delete(context.Background(), "alertautec_user", "", "alertautec_token"))

	assert.Equal(t, [][]any{
		{"del", DefaultKeyPrefix + "alertautec_user"},
		{"del", DefaultKeyPrefix + "alertautec_token"},
	}, hook.cmds)
}
