package routes

import (
	"net/http"

	"github.com/raksetu/bloodhub/internal/api/handlers"
	"github.com/raksetu/bloodhub/internal/api/middleware"
	"github.com/raksetu/bloodhub/internal/infrastructure/observability"
	"github.com/raksetu/bloodhub/pkg/config"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	emergencyHandler *handlers.EmergencyHandler
	sseHandler       *handlers.SSEHandler
	responseHandler  *handlers.ResponseHandler
	profileHandler   *handlers.ProfileHandler
	donationHandler  *handlers.DonationHandler

	auth           func(http.Handler) http.Handler
	allowedOrigins []string
	metrics        *observability.Metrics
}

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Emergency *handlers.EmergencyHandler
	SSE       *handlers.SSEHandler
	Response  *handlers.ResponseHandler
	Profile   *handlers.ProfileHandler
	Donation  *handlers.DonationHandler
}

// NewRouter creates a new router
func NewRouter(h Handlers, authCfg config.AuthConfig, allowedOrigins []string, metrics *observability.Metrics) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		emergencyHandler: h.Emergency,
		sseHandler:       h.SSE,
		responseHandler:  h.Response,
		profileHandler:   h.Profile,
		donationHandler:  h.Donation,
		auth:             middleware.AuthMiddleware(authCfg),
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// handle registers an authenticated route
func (r *Router) handle(pattern string, fn http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth(fn))
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Emergency endpoints
	r.handle("GET /api/emergencies", r.emergencyHandler.ListEmergencies)
	r.handle("POST /api/emergencies", r.emergencyHandler.CreateEmergency)
	if r.sseHandler != nil {
		r.handle("GET /api/emergencies/stream", r.sseHandler.StreamEmergencies)
	}

	// Response flow endpoints
	r.handle("GET /api/responses/current", r.responseHandler.GetCurrent)
	r.handle("POST /api/responses/select", r.responseHandler.Select)
	r.handle("POST /api/responses/back", r.responseHandler.Back)
	r.handle("POST /api/responses/respond", r.responseHandler.Respond)
	r.handle("POST /api/responses/confirm", r.responseHandler.Confirm)
	r.handle("POST /api/responses/sms", r.responseHandler.RespondBySMS)
	r.handle("POST /api/responses/chat", r.responseHandler.Chat)

	// Profile endpoints
	r.handle("GET /api/profile", r.profileHandler.GetProfile)
	r.handle("PUT /api/profile", r.profileHandler.UpdateProfile)

	// Donation history
	r.handle("GET /api/donations", r.donationHandler.ListDonations)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so rejected and preflight responses get headers.
	var handler http.Handler = r.mux
	handler = middleware.NoStore(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
