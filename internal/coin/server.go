package coin

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server handles HTTP requests for scans and the collection
type Server struct {
	estimator  *Estimator
	service    *Service
	payloads   *PayloadCache
	onboarding *OnboardingFlag
	metrics    *Metrics
	basicAuth  BasicAuth
	mux        *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(estimator *Estimator, service *Service, payloads *PayloadCache, onboarding *OnboardingFlag, metrics *Metrics, basicAuth BasicAuth) *Server {
	return NewServerWithMux(estimator, service, payloads, onboarding, metrics, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(estimator *Estimator, service *Service, payloads *PayloadCache, onboarding *OnboardingFlag, metrics *Metrics, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		estimator:  estimator,
		service:    service,
		payloads:   payloads,
		onboarding: onboarding,
		metrics:    metrics,
		basicAuth:  basicAuth,
		mux:        mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			// Ensure CORS headers are set before error response
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Coin Vault"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	// Scan flow
	s.mux.HandleFunc("POST /api/scans/{id}/estimate", s.requireAuth(s.handleEstimate))
	s.mux.HandleFunc("POST /api/scans", s.requireAuth(s.handleCreateScan))

	// Collection
	s.mux.HandleFunc("GET /api/coins/{id}/image", s.requireAuth(s.handleGetCoinImage))
	s.mux.HandleFunc("DELETE /api/coins/{id}", s.requireAuth(s.handleRemoveCoin))
	s.mux.HandleFunc("GET /api/coins", s.requireAuth(s.handleListCoins))
	s.mux.HandleFunc("POST /api/coins", s.requireAuth(s.handleAddCoin))

	// Onboarding flag
	s.mux.HandleFunc("GET /api/onboarding", s.requireAuth(s.handleGetOnboarding))
	s.mux.HandleFunc("POST /api/onboarding", s.requireAuth(s.handleSetOnboarding))
	s.mux.HandleFunc("DELETE /api/onboarding", s.requireAuth(s.handleClearOnboarding))

	// Metrics
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	// Wrap the mux with CORS middleware to handle all requests including OPTIONS
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
