package services

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Faisal-Sha/eco-product-task/internal/config"
	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// JWTIdentityResolver resolves bearer tokens opportunistically. Unlike
// the HTTP auth middleware, it never fails a connection: a missing,
// malformed, expired or badly signed token resolves to Anonymous so
// anonymous browsing over the real-time channel stays possible.
type JWTIdentityResolver struct {
	conf config.JWTConfig
	log  logger.Logger
}

func NewJWTIdentityResolver(conf config.JWTConfig, log logger.Logger) *JWTIdentityResolver {
	return &JWTIdentityResolver{conf: conf, log: log}
}

func (r *JWTIdentityResolver) Resolve(token string) domain.Identity {
	if token == "" {
		return domain.Anonymous
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(r.conf.Secret), nil
	})
	if err != nil || !parsed.Valid {
		r.log.Debug("Credential rejected, continuing as anonymous", "error", err)
		return domain.Anonymous
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return domain.Anonymous
	}

	identity := domain.Identity{UserID: userID}
	if role, ok := claims["role"].(string); ok {
		identity.Role = domain.Role(role)
	}
	return identity
}
