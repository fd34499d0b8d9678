package projects

import (
	"context"
	"strings"
)

type bearerTokenKey struct{}

// WithBearerToken returns a context that forwards token to the Project service.
func WithBearerToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerTokenKey{}, token)
}

// BearerTokenFrom returns the caller token stored by WithBearerToken.
func BearerTokenFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(bearerTokenKey{}).(string)
	return token
}
