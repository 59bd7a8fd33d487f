// Package auth provides the bearer-token middleware guarding authenticated
// routes.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/willian-mayer/listify/pkg/platform/httputil"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// TokenVerifier validates a bearer token and returns the subject claim
// (the user's email).
type TokenVerifier interface {
	Verify(tokenString string) (subject string, err error)
}

// IdentityResolver maps a verified subject claim to a persisted user ID.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (int64, error)
}

// RequireAuth validates the Authorization header, resolves the claimed
// identity, and stores the user ID and email in the request context.
//
// Every failure path produces the same 401 body: a missing header, a
// tampered or expired token, and a subject that no longer exists in the
// user store are indistinguishable to the caller, so the endpoint cannot be
// used to enumerate accounts.
func RequireAuth(verifier TokenVerifier, resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			userID, err := resolver.ResolveIdentity(ctx, subject)
			if err != nil {
				// Deliberately the same response as an invalid token.
				logger.WarnContext(ctx, "unauthorized access - unknown identity",
					"request_id", requestID,
				)
				writeUnauthorized(w)
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithUserEmail(ctx, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired credentials"))
}
