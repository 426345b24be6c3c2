package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/alertautec/alertautec/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKeyValueStore_SetGetDelete(t *testing.T) {
	store := NewMemoryKeyValueStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, store.Delete(ctx, "k", "missing"))
	assert.Equal(t, 0, store.Len())
}

func TestRecordingRequester(t *testing.T) {
	boom := errors.New("boom")
	r := &RecordingRequester{
		RequestFunc: func(_ context.Context, req ports.APIRequest) (any, error) {
			if req.Path == "/fail" {
				return nil, boom
			}
			return map[string]any{"ok": true}, nil
		},
	}

	out, err := r.Request(context.Background(), ports.APIRequest{Method: "GET", Path: "/ok"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, out)

	_, err = r.Request(context.Background(), ports.APIRequest{Method: "GET", Path: "/fail"})
	require.ErrorIs(t, err, boom)

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/ok", calls[0].Path)
}

func TestStaticTokenSource(t *testing.T) {
	tok, err := StaticTokenSource("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}
