// Package delivery defines the contract every transport-level server implements.
package delivery

import "context"

// Delivery is a serving surface (HTTP today) managed by the application lifecycle.
type Delivery interface {
	// Serve blocks until the server stops or fails.
	Serve(ctx context.Context) error
}
