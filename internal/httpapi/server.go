package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"figurevault/internal/auth"
	"figurevault/internal/catalog"
	"figurevault/internal/collection"
	"figurevault/internal/database"
	"figurevault/internal/images"
	"figurevault/internal/importer"
	"figurevault/internal/logging"
	"figurevault/internal/rates"
	"figurevault/internal/sqlproxy"
	"figurevault/internal/wishlist"
)

// Server wires the domain services to HTTP routes
type Server struct {
	catalogSvc     *catalog.Service
	collectionSvc  *collection.Service
	wishlistSvc    *wishlist.Service
	authSvc        *auth.Service
	authMiddleware *auth.Middleware
	userStore      *database.UserStore
	imageSvc       *images.Service
	ratesSvc       *rates.Service
	importer       *importer.Importer
	sqlProxy       *sqlproxy.Proxy
	logger         *logging.Logger
	server         *http.Server
}

// New creates a new HTTP API server. sqlProxy may be nil, which disables the
// admin SQL passthrough endpoint.
func New(
	catalogSvc *catalog.Service,
	collectionSvc *collection.Service,
	wishlistSvc *wishlist.Service,
	authSvc *auth.Service,
	authMiddleware *auth.Middleware,
	userStore *database.UserStore,
	imageSvc *images.Service,
	ratesSvc *rates.Service,
	imp *importer.Importer,
	sqlProxy *sqlproxy.Proxy,
	logger *logging.Logger,
) *Server {
	return &Server{
		catalogSvc:     catalogSvc,
		collectionSvc:  collectionSvc,
		wishlistSvc:    wishlistSvc,
		authSvc:        authSvc,
		authMiddleware: authMiddleware,
		userStore:      userStore,
		imageSvc:       imageSvc,
		ratesSvc:       ratesSvc,
		importer:       imp,
		sqlProxy:       sqlProxy,
		logger:         logger,
	}
}

// Start registers all routes and begins serving
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	authAPI := NewAuthAPI(s.authSvc, s.authMiddleware, s.logger)
	authAPI.RegisterRoutes(mux, s.corsMiddleware)

	catalogAPI := NewCatalogAPI(s.catalogSvc, s.userStore, s.authMiddleware, s.logger)
	catalogAPI.RegisterRoutes(mux, s.corsMiddleware)

	collectionAPI := NewCollectionAPI(s.collectionSvc, s.ratesSvc, s.userStore, s.authMiddleware, s.logger)
	collectionAPI.RegisterRoutes(mux, s.corsMiddleware)

	wishlistAPI := NewWishlistAPI(s.wishlistSvc, s.authMiddleware, s.logger)
	wishlistAPI.RegisterRoutes(mux, s.corsMiddleware)

	profileAPI := NewProfileAPI(s.userStore, s.imageSvc, s.authMiddleware, s.logger)
	profileAPI.RegisterRoutes(mux, s.corsMiddleware)

	adminAPI := NewAdminAPI(s.catalogSvc, s.imageSvc, s.importer, s.sqlProxy, s.userStore, s.authMiddleware, s.logger)
	adminAPI.RegisterRoutes(mux, s.corsMiddleware)

	ratesAPI := NewRatesAPI(s.ratesSvc, s.logger)
	ratesAPI.RegisterRoutes(mux, s.corsMiddleware)

	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// pathSegment extracts the path segment following prefix, stopping at the
// next slash. Returns "" when the path does not match.
func pathSegment(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
