package grpc

import (
	"context"

	"rental-backoffice/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type actorKey struct{}

// WithActor stores the authenticated actor for downstream handlers.
func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext extracts the actor placed by the auth interceptor.
func ActorFromContext(ctx context.Context) (domain.Actor, error) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	if !ok {
		return domain.Actor{}, status.Error(codes.Unauthenticated, "actor is not provided in context")
	}
	return a, nil
}
