package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/messages"
	"csacademy/interview/internal/utils"
)

const (
	identityKey contextKey = "identity"
	tokenKey    contextKey = "token"
)

// RequireUser rejects requests without a usable bearer token and stores the
// caller's identity and raw token in the context. A verifier that does not
// check signatures rejects every request.
func RequireUser(verifier *auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if !verifier.VerifiesSignature() {
		logger.Error("RequireUser configured without a signing secret; all requests will be rejected")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.VerifiesSignature() {
				writeUnauthorized(w)
				return
			}

			token, err := auth.BearerToken(r)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			identity, err := verifier.Parse(token)
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err))
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	utils.WriteError(w, http.StatusUnauthorized, "unauthorized",
		messages.Lookup(nil, messages.GroupErrors, messages.Unauthorized))
}

// GetIdentity returns the identity stored by RequireUser, or nil.
func GetIdentity(r *http.Request) *auth.Identity {
	identity, _ := r.Context().Value(identityKey).(*auth.Identity)
	return identity
}

// GetToken returns the bearer token stored by RequireUser.
func GetToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}
