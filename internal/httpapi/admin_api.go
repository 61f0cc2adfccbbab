package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"figurevault/internal/auth"
	"figurevault/internal/catalog"
	"figurevault/internal/database"
	"figurevault/internal/images"
	"figurevault/internal/importer"
	"figurevault/internal/logging"
	"figurevault/internal/models"
	"figurevault/internal/sqlproxy"
)

// AdminAPI handles catalog administration, the import job trigger and the
// SQL passthrough. Every route requires the admin role.
type AdminAPI struct {
	catalogService *catalog.Service
	imageService   *images.Service
	importer       *importer.Importer
	sqlProxy       *sqlproxy.Proxy
	userStore      *database.UserStore
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewAdminAPI creates a new admin API handler
func NewAdminAPI(catalogService *catalog.Service, imageService *images.Service, imp *importer.Importer, sqlProxy *sqlproxy.Proxy, userStore *database.UserStore, authMiddleware *auth.Middleware, logger *logging.Logger) *AdminAPI {
	return &AdminAPI{
		catalogService: catalogService,
		imageService:   imageService,
		importer:       imp,
		sqlProxy:       sqlProxy,
		userStore:      userStore,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers admin routes on the given mux
func (api *AdminAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/admin/catalog", corsMiddleware(api.requireAdmin(api.handleCreateItem)))
	mux.HandleFunc("/api/admin/catalog/", corsMiddleware(api.requireAdmin(api.handleItem)))
	mux.HandleFunc("/api/admin/import", corsMiddleware(api.requireAdmin(api.handleImport)))
	mux.HandleFunc("/api/admin/sql", corsMiddleware(api.requireAdmin(api.handleSQL)))
}

// requireAdmin layers an admin role check on top of RequireAuth
func (api *AdminAPI) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return api.authMiddleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.GetUserID(r.Context())

		isAdmin, err := api.userStore.HasRole(r.Context(), userID, models.RoleAdmin)
		if err != nil {
			api.logger.Error("Failed to check admin role", logging.WithField("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to check permissions")
			return
		}
		if !isAdmin {
			writeError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}

		next(w, r)
	})
}

func (api *AdminAPI) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params models.CreateCatalogItemParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	item, err := api.catalogService.CreateItem(r.Context(), params)
	if err != nil {
		api.writeCatalogError(w, err, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// handleItem dispatches /api/admin/catalog/{id}[/image]
func (api *AdminAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/catalog/")
	parts := strings.SplitN(rest, "/", 2)

	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item ID is required")
		return
	}

	if len(parts) == 2 && parts[1] == "image" {
		api.uploadItemImage(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodPut:
		api.updateItem(w, r, id)
	case http.MethodDelete:
		api.deleteItem(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *AdminAPI) updateItem(w http.ResponseWriter, r *http.Request, id string) {
	var params models.UpdateCatalogItemParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	item, err := api.catalogService.UpdateItem(r.Context(), id, params)
	if err != nil {
		api.writeCatalogError(w, err, "failed to update item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (api *AdminAPI) deleteItem(w http.ResponseWriter, r *http.Request, id string) {
	if err := api.catalogService.DeleteItem(r.Context(), id); err != nil {
		api.writeCatalogError(w, err, "failed to delete item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadItemImage stores a moderated figure photo and points the catalog
// item at it
func (api *AdminAPI) uploadItemImage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())

	data, contentType, ok := readImageUpload(w, r, api.logger)
	if !ok {
		return
	}

	result, err := api.imageService.Upload(r.Context(), userID, models.ImageEntityFigure, data, contentType)
	if err != nil {
		writeImageError(w, err, api.logger)
		return
	}

	item, err := api.catalogService.UpdateItem(r.Context(), id, models.UpdateCatalogItemParams{
		ImageURL: &result.URL,
	})
	if err != nil {
		api.writeCatalogError(w, err, "failed to attach image")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (api *AdminAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params struct {
		Source string `json:"source,omitempty"`
	}
	if r.Body != nil {
		// Body is optional; without one the configured source is used
		_ = json.NewDecoder(r.Body).Decode(&params)
	}

	var result *importer.Result
	var err error
	if params.Source != "" {
		result, err = api.importer.RunFrom(r.Context(), params.Source)
	} else {
		result, err = api.importer.Run(r.Context())
	}
	if err != nil {
		api.logger.Error("Catalog import failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}

	// The cached catalog is stale after a full replace
	api.catalogService.Invalidate()

	writeJSON(w, http.StatusOK, result)
}

func (api *AdminAPI) handleSQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if api.sqlProxy == nil {
		writeError(w, http.StatusNotFound, "disabled", "SQL proxy is not configured")
		return
	}

	var req sqlproxy.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	result := api.sqlProxy.Execute(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

func (api *AdminAPI) writeCatalogError(w http.ResponseWriter, err error, fallback string) {
	if svcErr, ok := err.(*catalog.ServiceError); ok {
		writeError(w, http.StatusBadRequest, "invalid_request", svcErr.Message)
		return
	}
	api.logger.Error("Catalog admin operation failed", logging.WithField("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal_error", fallback)
}
