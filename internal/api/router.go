/**
 * @description
 * This file sets up the HTTP router for the ledger service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies the
 * middleware stack: request logging, panic recovery, timeouts, CORS, and JWT
 * authentication on the protected route groups.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for chi.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the ledger service API.
func Routes(h *Handlers, verifier tokenVerifier) http.Handler {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public authentication endpoints.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignupHandler)
			r.Post("/login", h.LoginHandler)
			r.Post("/forgot-password", h.ForgotPasswordHandler)
			r.Patch("/reset-password/{token}", h.ResetPasswordHandler)
		})

		// Protected routes that require authentication.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(verifier))

			r.Route("/account", func(r chi.Router) {
				r.Post("/create-account", h.CreateAccountHandler)

				// Administrative account operations.
				r.Group(func(r chi.Router) {
					r.Use(AdminOnly)
					r.Get("/get-accounts", h.GetAccountsHandler)
					r.Patch("/rename-account", h.RenameAccountHandler)
					r.Delete("/delete-account", h.DeleteAccountHandler)
				})
			})

			r.Route("/transaction", func(r chi.Router) {
				r.Post("/fund-user-account", h.FundUserAccountHandler)
				r.Post("/withdraw-from-account", h.WithdrawFromAccountHandler)
			})

			r.Route("/user", func(r chi.Router) {
				r.Use(AdminOnly)
				r.Get("/get-users", h.GetUsersHandler)
				r.Delete("/delete-user", h.DeleteUserHandler)
			})

			r.Get("/search", h.SearchHandler)
		})
	})

	return r
}
