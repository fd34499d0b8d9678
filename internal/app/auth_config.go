package app

import (
	"github.com/heavenboards/user-service/internal/auth"
	"github.com/heavenboards/user-service/pkg/crypto"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// PasswordHasher builds the hasher for new and existing passwords.
func (c AuthConfig) PasswordHasher() *crypto.BcryptHasher {
	return crypto.NewBcryptHasher(c.Password.BcryptCost)
}
