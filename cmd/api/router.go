package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/portfoliohub/backend/internal/auth/middleware"
	"github.com/portfoliohub/backend/internal/auth/service"
	"github.com/portfoliohub/backend/internal/handlers"
	loggerMiddleware "github.com/portfoliohub/backend/internal/logger/middleware"
	sharedMiddleware "github.com/portfoliohub/backend/internal/middlewares"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// authAPI is the part of the auth service exposed over HTTP
type authAPI interface {
	handlers.AuthService
	handlers.ProfileService
}

// routerDeps holds everything the HTTP router is assembled from
type routerDeps struct {
	logger           *zap.Logger
	tokenGenerator   *service.TokenGenerator
	users            middleware.UserLookup
	revoked          middleware.RevocationChecker
	authService      authAPI
	portfolioService handlers.PortfolioService
	metrics          *sharedMiddleware.Metrics
	healthChecks     map[string]handlers.HealthCheck
	allowedOrigins   []string
	swaggerURL       string
	// requests per minute per IP
	rateLimit            int
	credentialsRateLimit int
}

// setupRouter builds the chi router with the shared middleware chain and all routes
func setupRouter(deps routerDeps) chi.Router {
	authMiddleware := middleware.AuthMiddleware(deps.tokenGenerator, deps.users, deps.revoked, deps.logger)

	authHandler := handlers.NewAuthHandler(deps.authService, deps.logger)
	profileHandler := handlers.NewProfileHandler(deps.authService, deps.logger)
	portfolioHandler := handlers.NewPortfolioHandler(deps.portfolioService, deps.logger)
	healthHandler := handlers.NewHealthHandler(deps.healthChecks, deps.logger)

	r := chi.NewRouter()

	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(deps.logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(deps.logger))
	r.Use(sharedMiddleware.CORSMiddleware(deps.allowedOrigins))
	if deps.rateLimit > 0 {
		r.Use(httprate.LimitByIP(deps.rateLimit, time.Minute))
	}
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(sharedMiddleware.DefaultMaxRequestSize))
	if deps.metrics != nil {
		r.Use(deps.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", deps.metrics.Handler())
	}

	healthHandler.RegisterRoutes(r)

	if deps.swaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(deps.swaggerURL)))
	}

	var credentialsLimiter func(http.Handler) http.Handler
	if deps.credentialsRateLimit > 0 {
		credentialsLimiter = httprate.LimitByIP(deps.credentialsRateLimit, time.Minute)
	}

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddleware, credentialsLimiter)
		profileHandler.RegisterRoutes(r, authMiddleware)
		portfolioHandler.RegisterRoutes(r, authMiddleware)
	})

	return r
}
