// Package mocks provides generated mock implementations of the ports used by the services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for port interfaces.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	kv := mocks.NewMockKeyValueStore(ctrl)
//	kv.EXPECT().Get(gomock.Any(), "alertautec_user").Return("", false, nil)
package mocks

// Generate mock for KeyValueStore interface from internal/ports package.
// This creates MockKeyValueStore with methods Get, Set, Delete.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=key_value_store_mock.go github.com/alertautec/alertautec/internal/ports KeyValueStore
