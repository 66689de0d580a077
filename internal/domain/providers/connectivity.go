package providers

import "context"

// Connectivity reports whether outbound network calls are currently possible
type Connectivity interface {
	Online(ctx context.Context) bool
}
