package common

import "context"

// Detach keeps ctx's values, including the authenticated user and chi's
// request id, but drops its deadline and cancellation. Use it for writes
// that must finish after the client has gone.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
