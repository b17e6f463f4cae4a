package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"collabcore/internal/core/domain"
)

// ParticipantClaims is the JWT payload issued by the platform's identity
// service. The core only verifies the signature and lifts the identity
// into the request context.
type ParticipantClaims struct {
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name,omitempty"`
	Role          domain.PeerRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

const (
	ContextParticipantID = "participant_id"
	ContextDisplayName   = "display_name"
	ContextRole          = "role"
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware lifts the identity when a valid token is present
// and lets anonymous requests pass.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := bearerClaims(c, secret); err == nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*ParticipantClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	claims := &ParticipantClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.ParticipantID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *ParticipantClaims) {
	c.Set(ContextParticipantID, domain.ParticipantID(claims.ParticipantID))
	c.Set(ContextDisplayName, claims.DisplayName)
	c.Set(ContextRole, claims.Role)
}
