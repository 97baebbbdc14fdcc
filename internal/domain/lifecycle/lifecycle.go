// Package lifecycle holds shared lifecycle constants for startup and shutdown hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup pings and graceful shutdown.
const DefaultTimeout = 10 * time.Second
