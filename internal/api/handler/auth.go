package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hrdesk/backend/internal/complaint"
	"hrdesk/backend/internal/config"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

// Claims is the payload of an actor token. The subject is the user id.
type Claims struct {
	EmployeeID *uint    `json:"employee_id,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the actor.
func IssueToken(cfg config.AuthConfig, actor complaint.Actor, now time.Time) (string, error) {
	if actor.UserID == "" {
		return "", errors.New("token subject is required")
	}
	claims := Claims{
		EmployeeID: actor.EmployeeID,
		Roles:      actor.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actor.UserID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.GetTokenTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a token and returns the actor it names.
func ParseToken(cfg config.AuthConfig, raw string) (complaint.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return complaint.Actor{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return complaint.Actor{}, errors.New("token has no subject")
	}

	return complaint.Actor{
		UserID:     claims.Subject,
		EmployeeID: claims.EmployeeID,
		Roles:      claims.Roles,
	}, nil
}

// Authenticate rejects requests without a valid Bearer token and stores the
// actor on the context.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		actor, err := ParseToken(h.Auth, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) complaint.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(complaint.Actor); ok {
			return actor
		}
	}
	return complaint.Actor{}
}
