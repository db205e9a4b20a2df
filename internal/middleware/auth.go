package middleware

import (
	"net/http"

	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/httpapi"
	"github.com/fitstack/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type AuthMiddlewareHandler struct {
	gate         *auth.Gate
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(gate *auth.Gate) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		gate: gate,
		allowedPaths: map[string]bool{
			"/health":         true,
			"/version":        true,
			"/login":          true,
			"/register_admin": true,
		},
	}
}

// AuthCheck resolves credentials from the request, authenticates them and
// stores the resulting caller in the request context. It fails the request
// before any handler runs, so an unauthenticated request never touches the
// store.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			creds, err := auth.ResolveCredentials(r)
			if err != nil {
				log.Tracef("[missing credentials] [auth middleware] unauthorized => %s", r.URL.Path)
				span.SetStatus(codes.Error, "missing-credentials")
				httpapi.WriteError(w, err)
				return
			}

			caller, err := h.gate.Authenticate(ctx, creds)
			if err != nil {
				log.Tracef("[invalid credentials] [auth middleware] unauthorized => %s", r.URL.Path)
				span.SetStatus(codes.Error, "not-authenticated")
				span.RecordError(err)
				httpapi.WriteError(w, err)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.IntoContext(r.Context(), caller)))
		})
	}
}
