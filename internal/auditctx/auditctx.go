package auditctx

import "context"

// Actor describes who issued the current request. Handlers store it on the
// request context so services can attribute audit entries without taking
// transport details as parameters.
type Actor struct {
	UserID    string
	Username  string
	IPAddress string
	UserAgent string
}

type actorContextKey struct{}

// WithActor returns a derived context carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// FromContext extracts previously stored actor metadata from the context.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// WithUser returns ctx with the actor's user fields set, keeping any request
// metadata already present.
func WithUser(ctx context.Context, userID, username string) context.Context {
	actor, _ := FromContext(ctx)
	actor.UserID = userID
	actor.Username = username
	return WithActor(ctx, actor)
}
