package ports

import "context"

// Explorer is the balance oracle consumed by the application layer: given
// an address it returns its confirmed balance in satoshis, or fails.
// Implementations must be safe for concurrent calls and should honor the
// context for cancellation, since callers abandon in-flight queries when a
// refresh is cancelled.
type Explorer interface {
	GetAddressBalance(ctx context.Context, address string) (uint64, error)
}
