package endpoint

import "context"

// Lister yields the foreign endpoints of the host's active connections as
// address:port strings
type Lister interface {
	List(ctx context.Context) ([]string, error)
}
