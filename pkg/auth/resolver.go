// Package auth resolves the calling practitioner (owner) from a request.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"swasthyaflow/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookie = "__session"
	tokenQuery    = "access_token" // EventSource cannot set headers
)

// Resolver extracts the owner id from a request. ok is false when no identity is present.
type Resolver interface {
	Resolve(r *http.Request) (ownerID string, ok bool)
}

// Claims JWT claims carrying the owner id. UserID is accepted when sub is empty.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId,omitempty"`
}

// OwnerID returns the subject, falling back to the userId claim.
func (c *Claims) OwnerID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// JWTResolver verifies HS256 tokens signed with a shared secret.
type JWTResolver struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTResolver creates a resolver for tokens signed with secret.
func NewJWTResolver(secret string) (*JWTResolver, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTResolver{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Resolve reads the token from the Authorization header, the session cookie, or the query string.
func (j *JWTResolver) Resolve(r *http.Request) (string, bool) {
	tokenString := extractToken(r)
	if tokenString == "" {
		return "", false
	}

	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return "", false
	}
	ownerID := claims.OwnerID()
	return ownerID, ownerID != ""
}

// ValidateToken parses and verifies tokenString.
func (j *JWTResolver) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := j.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return claims, nil
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get(tokenQuery)
}

// HeaderResolver trusts a plain request header. Local development only.
type HeaderResolver struct {
	header string
}

// NewHeaderResolver creates a resolver reading header.
func NewHeaderResolver(header string) *HeaderResolver {
	if header == "" {
		header = "X-User-ID"
	}
	return &HeaderResolver{header: header}
}

func (h *HeaderResolver) Resolve(r *http.Request) (string, bool) {
	ownerID := strings.TrimSpace(r.Header.Get(h.header))
	return ownerID, ownerID != ""
}

// NewResolver picks the resolver for cfg.
func NewResolver(cfg config.AuthConfig) (Resolver, error) {
	if cfg.EnableVerification {
		return NewJWTResolver(cfg.JWTSecret)
	}
	return NewHeaderResolver(cfg.DevHeader), nil
}

var (
	_ Resolver = (*JWTResolver)(nil)
	_ Resolver = (*HeaderResolver)(nil)
)
