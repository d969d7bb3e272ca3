package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeService marks tokens issued to backend integrations. It lifts
// owner-scoping on status updates.
const ScopeService = "service"

// Session is the authenticated caller attached to a request.
type Session struct {
	UserID string
	Scopes []string
}

// HasScope reports whether the session token carries the given scope.
func (s Session) HasScope(scope string) bool {
	for _, sc := range s.Scopes {
		if sc == scope {
			return true
		}
	}
	return false
}

// TokenVerifier resolves a bearer token into a session. Injected into the
// auth middleware so handlers stay testable with a fake implementation.
type TokenVerifier interface {
	Verify(token string) (Session, error)
}

// SignToken issues an HS256 token with the user id as subject and an
// optional scope list.
func SignToken(userID string, secret []byte, ttl time.Duration, scopes ...string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
	}
	if len(scopes) > 0 {
		claims["scopes"] = scopes
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns the production TokenVerifier backed by an HS256 secret.
func NewJWTVerifier(secret []byte) TokenVerifier {
	return &jwtVerifier{secret: secret}
}

func (v *jwtVerifier) Verify(token string) (Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, fmt.Errorf("invalid claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Session{}, fmt.Errorf("missing subject")
	}

	return Session{UserID: sub, Scopes: extractScopes(claims)}, nil
}

func extractScopes(claims jwt.MapClaims) []string {
	raw, ok := claims["scopes"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

type sessionKey struct{}

// ContextWithSession attaches the session to the request context.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by the auth middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
