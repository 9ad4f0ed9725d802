package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainAccount "garage/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const accountContextKey contextKey = "account"

// tokenLifetime is how long an issued bearer token stays valid.
const tokenLifetime = 24 * time.Hour

// Session represents an authenticated caller.
type Session struct {
	AccountID string
	Email     string
	Role      string
}

// sessionClaims is the JWT payload carried by a bearer token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenIssuer signs and verifies bearer tokens with an HS256 secret.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer.
// PRE: secret is non-empty
// POST: Returns an issuer using the real clock
func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret, now: time.Now}
}

// Issue creates a signed bearer token for the session.
// PRE: session fields are populated
// POST: Returns a token valid for 24 hours
func (ti *TokenIssuer) Issue(session Session) (string, error) {
	now := ti.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		Email: session.Email,
		Role:  session.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
}

// Verify parses and validates a bearer token.
// PRE: tokenString is non-empty
// POST: Returns the session, ErrTokenExpired, or ErrTokenInvalid
func (ti *TokenIssuer) Verify(tokenString string) (Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(ti.now),
	)
	claims := &sessionClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrTokenExpired
		}
		return Session{}, ErrTokenInvalid
	}
	if !tok.Valid || claims.Subject == "" {
		return Session{}, ErrTokenInvalid
	}
	return Session{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
	}, nil
}

// Auth returns middleware that extracts the bearer token and sets the session
// in context. It does NOT block unauthenticated requests; use RequireAdmin
// for that. An expired token is rejected immediately so clients can drop
// their stale credentials.
func Auth(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
				session, err := issuer.Verify(token)
				if err != nil {
					slog.Info("auth_event", "event", "token_rejected", "reason", err.Error(), "path", r.URL.Path)
					writeAuthError(w, http.StatusUnauthorized, "auth_expired", "session is no longer valid")
					return
				}
				r = r.WithContext(context.WithValue(r.Context(), accountContextKey, session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that blocks requests without an admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSessionFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "auth_expired", "authentication required")
			return
		}
		if session.Role != domainAccount.RoleAdmin {
			writeAuthError(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(accountContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, accountContextKey, sess)
}

// writeAuthError writes the API error envelope. Kept local so the middleware
// package does not depend on the handler package.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}
