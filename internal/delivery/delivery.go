// Package delivery groups the inbound adapters that fx starts as servers.
package delivery

import "context"

// Delivery is a long-running inbound adapter such as the HTTP API.
type Delivery interface {
	Serve(ctx context.Context) error
}
