// Package delivery defines the contract every transport entry point implements.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, worker) started by the
// application runner. Serve blocks until the context is cancelled or the
// transport fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
