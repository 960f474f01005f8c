package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/meeteo/internal/api/middleware"
	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler         http.HandlerFunc
	RecommendationHandler http.HandlerFunc
	WeatherHandler        http.HandlerFunc
	PhotoDownloadHandler  http.HandlerFunc
	InitiateAnalysis      http.HandlerFunc
	AnalysisStatus        http.HandlerFunc
	ListSubmissions       http.HandlerFunc
	CreateSubmission      http.HandlerFunc
	MetricsHandler        http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	metrics := deps.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/recommendations", orNotImplemented(deps.RecommendationHandler))
	r.Get("/api/v1/weather", orNotImplemented(deps.WeatherHandler))
	r.Post("/api/v1/photos/{imageID}/download", orNotImplemented(deps.PhotoDownloadHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/analyses", orNotImplemented(deps.InitiateAnalysis))
		r.Get("/api/v1/analyses/{analysisID}", orNotImplemented(deps.AnalysisStatus))

		r.Get("/api/v1/submissions", orNotImplemented(deps.ListSubmissions))
		r.Post("/api/v1/submissions", orNotImplemented(deps.CreateSubmission))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
