// Package ctxutil carries request-scoped values shared by adapters and services.
// It imports nothing from this module.
package ctxutil

import "context"

// Actors name the surface that drove an operation.
const (
	ActorCLI  = "cli"
	ActorHTTP = "http"
)

type actorKey struct{}

// WithActorID tags ctx with the surface driving the operation.
func WithActorID(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the tagged surface, or "" when untagged.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
