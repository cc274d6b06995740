package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "paysync/internal/api/context"
	"paysync/internal/api/handlers"
	"paysync/internal/api/middleware"
	"paysync/internal/pkg/errors"
	"paysync/internal/platform/auth"
)

type Dependencies struct {
	WebhookHandler *handlers.WebhookHandler
	LogHandler     *handlers.LogHandler
	OrderHandler   *handlers.OrderHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Gateway-facing endpoint; authenticated by HMAC signature, POST only.
	router.POST("/api/v1/webhooks/payment", wrap(deps.WebhookHandler.Handle))

	authMid := deps.AuthMiddleware

	// Ops endpoints
	router.GET("/api/v1/webhook-logs",
		chain(deps.LogHandler.List, authMid.Handle, requireRole("admin", "support")))
	router.GET("/api/v1/orders/:payment_id",
		chain(deps.OrderHandler.Get, authMid.Handle, requireRole("admin", "support")))

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	// The payment gateway only ever POSTs; anything else gets the documented
	// 405 body rather than httprouter's plain-text default.
	router.HandleMethodNotAllowed = true
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next(w, r)
		}
	}
}
