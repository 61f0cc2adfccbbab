package httpapi

import (
	"net/http"
	"strings"

	"figurevault/internal/auth"
	"figurevault/internal/logging"
	"figurevault/internal/wishlist"
)

// WishlistAPI handles wishlist endpoints
type WishlistAPI struct {
	wishlistService *wishlist.Service
	authMiddleware  *auth.Middleware
	logger          *logging.Logger
}

// NewWishlistAPI creates a new wishlist API handler
func NewWishlistAPI(wishlistService *wishlist.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *WishlistAPI {
	return &WishlistAPI{
		wishlistService: wishlistService,
		authMiddleware:  authMiddleware,
		logger:          logger,
	}
}

// RegisterRoutes registers wishlist routes on the given mux
func (api *WishlistAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/wishlist", corsMiddleware(api.authMiddleware.RequireAuth(api.handleList)))
	mux.HandleFunc("/api/wishlist/", corsMiddleware(api.authMiddleware.RequireAuth(api.handleToggle)))
}

func (api *WishlistAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	response, err := api.wishlistService.List(r.Context(), userID)
	if err != nil {
		api.logger.Error("Failed to list wishlist", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load wishlist")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// handleToggle serves POST /api/wishlist/{itemId}/toggle
func (api *WishlistAPI) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/wishlist/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] != "toggle" {
		writeError(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	itemID := parts[0]

	userID := auth.GetUserID(r.Context())
	wished, err := api.wishlistService.Toggle(r.Context(), userID, itemID)
	if err != nil {
		if svcErr, ok := err.(*wishlist.ServiceError); ok {
			writeError(w, http.StatusBadRequest, "invalid_request", svcErr.Message)
			return
		}
		api.logger.Error("Failed to toggle wishlist entry", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to toggle wishlist entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"itemId": itemID,
		"wished": wished,
	})
}
