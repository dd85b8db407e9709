// Package lifecycle holds timeouts shared by fx start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup pings and graceful shutdown.
const DefaultTimeout = 10 * time.Second
