package handler

import (
	"net/http"

	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
	"github.com/damon-houk/quickrate/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// NewRouter wires the rate routes behind the middleware chain.
// CORS sits outside the rate limiter so browser preflights never spend tokens.
func NewRouter(rates *RateHandler, limiter *rate.Limiter, allowedOrigins []string, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	rates.RegisterRoutes(router)

	var h http.Handler = router
	h = middleware.RateLimitMiddleware(limiter, log)(h)
	h = middleware.CORSMiddleware(allowedOrigins)(h)
	h = middleware.LoggingMiddleware(log)(h)
	h = middleware.RequestIDMiddleware(h)

	return h
}
