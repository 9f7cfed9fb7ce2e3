package http

import (
	"net/http"

	"github.com/engenharia-apr/aprd/pkg/domain/model/auth"
	"github.com/engenharia-apr/aprd/pkg/domain/types"
)

// actorMiddleware attaches the actor token to the request context. The
// identity arrives pre-authenticated in trusted gateway headers;
// credential validation is upstream of this service. In no-auth mode
// every request runs as an anonymous admin of the default tenant.
func actorMiddleware(noAuthn bool, defaultTenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if noAuthn {
				token := auth.NewAnonymousUser(defaultTenant)
				ctx := auth.ContextWithToken(r.Context(), token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sub := r.Header.Get("X-Actor-Sub")
			tenantID := r.Header.Get("X-Tenant-ID")
			if sub == "" || tenantID == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			token := auth.NewToken(
				sub,
				r.Header.Get("X-Actor-Email"),
				r.Header.Get("X-Actor-Name"),
				types.NormalizeRole(r.Header.Get("X-Actor-Role")),
				tenantID,
			)
			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
