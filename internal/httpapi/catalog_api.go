package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"figurevault/internal/auth"
	"figurevault/internal/catalog"
	"figurevault/internal/logging"
	"figurevault/internal/models"
)

// ProfileLookup loads the viewer's profile for display preferences
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// CatalogAPI handles catalog browsing endpoints. All of them work without
// authentication; a valid token adds per-item ownership and wishlist state.
type CatalogAPI struct {
	catalogService *catalog.Service
	users          ProfileLookup
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewCatalogAPI creates a new catalog API handler
func NewCatalogAPI(catalogService *catalog.Service, users ProfileLookup, authMiddleware *auth.Middleware, logger *logging.Logger) *CatalogAPI {
	return &CatalogAPI{
		catalogService: catalogService,
		users:          users,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes on the given mux
func (api *CatalogAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/catalog", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleGetPage)))
	mux.HandleFunc("/api/catalog/facets", corsMiddleware(api.handleGetFacets))
	mux.HandleFunc("/api/catalog/", corsMiddleware(api.handleGetItem))
}

func (api *CatalogAPI) handleGetPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := parseFilterState(r)
	userID := auth.GetUserID(r.Context())
	filter = api.applyViewerLocale(r.Context(), userID, filter)

	page, err := api.catalogService.GetPage(r.Context(), userID, filter)
	if err != nil {
		api.logger.Error("Failed to build catalog page", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load catalog")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (api *CatalogAPI) handleGetFacets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	facets, err := api.catalogService.GetFacets(r.Context())
	if err != nil {
		api.logger.Error("Failed to load catalog facets", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load facets")
		return
	}

	writeJSON(w, http.StatusOK, facets)
}

func (api *CatalogAPI) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := pathSegment(r.URL.Path, "/api/catalog/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item ID is required")
		return
	}

	item, err := api.catalogService.GetItem(r.Context(), id)
	if err != nil {
		api.logger.Error("Failed to get catalog item", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "not_found", "catalog item not found")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// applyViewerLocale fills in the sort locale from the viewer's preferred
// language when the request does not pass one explicitly. Anonymous viewers
// and lookup failures keep the request locale.
func (api *CatalogAPI) applyViewerLocale(ctx context.Context, userID string, f models.FilterState) models.FilterState {
	if f.Locale != "" || userID == "" {
		return f
	}

	user, err := api.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return f
	}

	f.Locale = user.Language
	return f
}

// parseFilterState reads the catalog view settings from query parameters.
// Out-of-range values fall back to defaults rather than erroring.
func parseFilterState(r *http.Request) models.FilterState {
	query := r.URL.Query()

	page := 1
	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize := models.DefaultPageSize
	if ps := query.Get("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil {
			pageSize = parsed
		}
	}

	return models.FilterState{
		Query:      query.Get("q"),
		Series:     query.Get("series"),
		Type:       query.Get("type"),
		Character:  query.Get("character"),
		Visibility: models.Visibility(query.Get("visibility")),
		SortKey:    models.SortKey(query.Get("sort")),
		Descending: query.Get("order") == "desc",
		Page:       page,
		PageSize:   pageSize,
		Locale:     query.Get("locale"),
	}.Normalize()
}
