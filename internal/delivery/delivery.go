// Package delivery holds the process entry points (HTTP API, mail worker) run by cmd.
package delivery

import "context"

// Delivery is a long-running server started once the fx graph is built.
type Delivery interface {
	Serve(ctx context.Context) error
}
