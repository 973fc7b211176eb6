/**
 * @description
 * This file contains custom middleware for the HTTP router: token
 * authentication and the admin gate. Authentication extracts the caller
 * identity from a signed token and stores it in the request context for
 * handlers to read.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 */

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/fundme/ledger-service/internal/app"
)

// identityContextKey is a custom type for the context key to avoid collisions.
type identityContextKey string

const callerIdentityKey identityContextKey = "callerIdentity"

// tokenVerifier is the slice of the application service the middleware needs.
type tokenVerifier interface {
	VerifyToken(tokenString string) (app.Identity, error)
}

// AuthMiddleware validates the request's session token and stores the
// resulting identity in context. Both a bare token and the conventional
// "Bearer <token>" form are accepted in the Authorization header.
func AuthMiddleware(verifier tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Unauthenticated user")
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Unauthenticated user")
				return
			}

			identity, err := verifier.VerifyToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthenticated user")
				return
			}

			ctx := context.WithValue(r.Context(), callerIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects callers whose token does not carry the admin flag. It
// must run after AuthMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := CallerIdentity(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthenticated user")
			return
		}
		if !identity.IsAdmin {
			writeError(w, http.StatusForbidden, "Unauthorized to access resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerIdentity retrieves the authenticated caller from the request context.
func CallerIdentity(ctx context.Context) (app.Identity, bool) {
	identity, ok := ctx.Value(callerIdentityKey).(app.Identity)
	return identity, ok
}
