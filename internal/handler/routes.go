package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
	"github.com/sujal-pawar/legacy-note-api/internal/middleware"
)

// RegisterRoutes mounts the authentication endpoints under /auth.
func (h *AuthHandler) RegisterRoutes(r chi.Router, jwtAuth *auth.JWTAuthenticator) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/google", h.GoogleSignIn)
		r.Post("/verify-email", h.VerifyEmail)
		r.Post("/send-verification-otp", h.SendVerificationOTP)
		r.Post("/forgotpassword", h.ForgotPassword)
		r.Put("/resetpassword/{resettoken}", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtAuth))
			r.Get("/me", h.Me)
		})
	})
}
