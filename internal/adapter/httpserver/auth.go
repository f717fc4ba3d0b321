package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fairyhunter13/sermon-evaluator/internal/domain"
)

// principalKey is an unexported context key type for the authenticated
// principal id.
type principalKey struct{}

// PrincipalFrom returns the authenticated principal id from the request
// context, or empty when the request is unauthenticated.
func PrincipalFrom(r *http.Request) string {
	if v := r.Context().Value(principalKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// contextWithPrincipal is exposed for handler tests.
func contextWithPrincipal(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalKey{}, principalID)
}

// BearerAuth resolves the Authorization bearer credential to a principal id
// via the verifier and rejects anything else with 401.
func BearerAuth(verifier domain.IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, ok := bearerCredential(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, r, fmt.Errorf("op=auth: %w: missing bearer credential", domain.ErrUnauthorized), nil)
				return
			}
			principalID, err := verifier.Verify(r.Context(), credential)
			if err != nil {
				writeError(w, r, err, nil)
				return
			}
			ctx := contextWithPrincipal(r.Context(), principalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerCredential(header string) (string, bool) {
	scheme, credential, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	return credential, credential != ""
}
