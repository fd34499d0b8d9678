package auditctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActorRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := WithActor(context.Background(), Actor{IPAddress: "10.0.0.1", UserAgent: "curl"})
	ctx = WithUser(ctx, "user-1", "alice")

	actor, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, Actor{UserID: "user-1", Username: "alice", IPAddress: "10.0.0.1", UserAgent: "curl"}, actor)
}

func TestWithActorNilContext(t *testing.T) {
	ctx := WithActor(nil, Actor{UserID: "user-1"})
	actor, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "user-1", actor.UserID)
}
