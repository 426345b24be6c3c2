package ports

import "context"

// APIRequest describes one call against the remote API.
// Body is JSON-encoded when non-nil. Headers override the defaults.
type APIRequest struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// Requester performs API calls and returns the decoded body:
// a JSON value, the raw text when the body is not JSON, or nil when empty.
type Requester interface {
	Request(ctx context.Context, req APIRequest) (any, error)
}
