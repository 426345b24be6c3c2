package auth

// Package auth contains simple hand-written test doubles for session and API ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	"github.com/alertautec/alertautec/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.KeyValueStore = (*MemoryKeyValueStore)(nil)
	_ ports.TokenSource   = StaticTokenSource("")
	_ ports.Requester     = (*RecordingRequester)(nil)
)

// MemoryKeyValueStore is an in-memory key-value store for unit tests.
type MemoryKeyValueStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKeyValueStore creates a new in-memory store.
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{values: make(map[string]string)}
}

func (m *MemoryKeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKeyValueStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKeyValueStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryKeyValueStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// StaticTokenSource always yields the same token.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) { return string(s), nil }

// RecordingRequester records API requests and answers them with RequestFunc.
// When RequestFunc is nil every call returns Response.
type RecordingRequester struct {
	RequestFunc func(ctx context.Context, req ports.APIRequest) (any, error)
	Response    any

	mu    sync.Mutex
	calls []ports.APIRequest
}

func (r *RecordingRequester) Request(ctx context.Context, req ports.APIRequest) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, req)
	r.mu.Unlock()

	if r.RequestFunc != nil {
		return r.RequestFunc(ctx, req)
	}
	return r.Response, nil
}

// Calls returns a copy of the recorded requests.
func (r *RecordingRequester) Calls() []ports.APIRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.APIRequest, len(r.calls))
	copy(out, r.calls)
	return out
}
