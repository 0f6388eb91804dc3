package app

import (
	"fmt"
	"net/http"
	"passreset/internal/app/deps"
	"passreset/internal/app/services"
	"passreset/internal/http/handlers/health"
	checkpasswordresettoken "passreset/internal/http/handlers/password_reset/check_password_reset_token"
	confirmpasswordreset "passreset/internal/http/handlers/password_reset/confirm_password_reset"
	requestpasswordreset "passreset/internal/http/handlers/password_reset/request_password_reset"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins          []string
	ConcealAccountExistence bool
	IsTestMode              bool
}

func NewRouter(s *services.Services, opts RouterOptions) http.Handler {
	resetRouter := chi.NewRouter()
	resetRouter.Method(
		http.MethodPost,
		"/request",
		requestpasswordreset.New(s.RequestPasswordReset, opts.ConcealAccountExistence, opts.IsTestMode),
	)
	resetRouter.Method(http.MethodPost, "/confirm", confirmpasswordreset.New(s.ConfirmPasswordReset))
	resetRouter.Method(http.MethodPost, "/verify", checkpasswordresettoken.New(s.CheckPasswordResetToken))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestpasswordreset.TestTokenHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Get("/health", health.ServeHTTP)
	router.Mount("/reset-password", resetRouter)

	return router
}

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	router := NewRouter(s, RouterOptions{
		AllowedOrigins:          deps.Config.AllowedOrigins,
		ConcealAccountExistence: deps.Config.ConcealAccountExistence,
		IsTestMode:              deps.Config.IsTestMode,
	})

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler:           router,
		Addr:              address,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
