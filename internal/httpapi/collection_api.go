package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"figurevault/internal/auth"
	"figurevault/internal/collection"
	"figurevault/internal/database"
	"figurevault/internal/logging"
	"figurevault/internal/models"
	"figurevault/internal/rates"
)

// CollectionAPI handles ownership endpoints
type CollectionAPI struct {
	collectionService *collection.Service
	ratesService      *rates.Service
	userStore         *database.UserStore
	authMiddleware    *auth.Middleware
	logger            *logging.Logger
}

// NewCollectionAPI creates a new collection API handler
func NewCollectionAPI(collectionService *collection.Service, ratesService *rates.Service, userStore *database.UserStore, authMiddleware *auth.Middleware, logger *logging.Logger) *CollectionAPI {
	return &CollectionAPI{
		collectionService: collectionService,
		ratesService:      ratesService,
		userStore:         userStore,
		authMiddleware:    authMiddleware,
		logger:            logger,
	}
}

// RegisterRoutes registers collection routes on the given mux
func (api *CollectionAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/collection", corsMiddleware(api.authMiddleware.RequireAuth(api.handleList)))
	mux.HandleFunc("/api/collection/stats", corsMiddleware(api.authMiddleware.RequireAuth(api.handleStats)))
	mux.HandleFunc("/api/collection/", corsMiddleware(api.authMiddleware.RequireAuth(api.handleItem)))
	mux.HandleFunc("/api/users/", corsMiddleware(api.handlePublicCollection))
}

func (api *CollectionAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	response, err := api.collectionService.List(r.Context(), userID)
	if err != nil {
		api.logger.Error("Failed to list collection", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load collection")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (api *CollectionAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	stats, err := api.collectionService.Stats(r.Context(), userID)
	if err != nil {
		api.logger.Error("Failed to compute collection stats", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load stats")
		return
	}

	// Stored values are EUR; convert the total for display when the viewer
	// has a currency preference or asks for one explicitly.
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		if user, err := api.userStore.GetByID(r.Context(), userID); err == nil && user != nil {
			currency = user.Currency
		}
	}

	response := map[string]interface{}{
		"stats":    stats,
		"currency": rates.ReferenceCurrency,
	}
	if currency != "" && currency != rates.ReferenceCurrency {
		response["currency"] = currency
		response["totalValuePaidConverted"] = api.ratesService.Convert(r.Context(), stats.TotalValuePaid, currency)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleItem dispatches /api/collection/{itemId}[/boxed|/condition|/value]
func (api *CollectionAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/collection/")
	parts := strings.SplitN(rest, "/", 2)

	itemID := parts[0]
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item ID is required")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	userID := auth.GetUserID(r.Context())

	switch {
	case action == "" && r.Method == http.MethodPost:
		api.addItem(w, r, userID, itemID)
	case action == "" && r.Method == http.MethodDelete:
		api.removeItem(w, r, userID, itemID)
	case action == "boxed" && r.Method == http.MethodPost:
		api.toggleBoxed(w, r, userID, itemID)
	case action == "condition" && r.Method == http.MethodPut:
		api.setCondition(w, r, userID, itemID)
	case action == "value" && r.Method == http.MethodPut:
		api.setValuePaid(w, r, userID, itemID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *CollectionAPI) addItem(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	rec, err := api.collectionService.Add(r.Context(), userID, itemID)
	if err != nil {
		api.writeServiceError(w, err, "failed to add item")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (api *CollectionAPI) removeItem(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	if err := api.collectionService.Remove(r.Context(), userID, itemID); err != nil {
		api.writeServiceError(w, err, "failed to remove item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *CollectionAPI) toggleBoxed(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	rec, err := api.collectionService.ToggleBoxed(r.Context(), userID, itemID)
	if err != nil {
		api.writeServiceError(w, err, "failed to toggle boxed state")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (api *CollectionAPI) setCondition(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	var params struct {
		Condition models.ItemCondition `json:"condition"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	rec, err := api.collectionService.SetCondition(r.Context(), userID, itemID, params.Condition)
	if err != nil {
		api.writeServiceError(w, err, "failed to set condition")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (api *CollectionAPI) setValuePaid(w http.ResponseWriter, r *http.Request, userID, itemID string) {
	var params struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	rec, err := api.collectionService.SetValuePaid(r.Context(), userID, itemID, params.Value)
	if err != nil {
		api.writeServiceError(w, err, "failed to set value paid")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePublicCollection serves GET /api/users/{id}/collection, the shareable
// read-only view of another collector's shelf
func (api *CollectionAPI) handlePublicCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] != "collection" {
		writeError(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	ownerID := parts[0]

	user, err := api.userStore.GetByID(r.Context(), ownerID)
	if err != nil {
		api.logger.Error("Failed to look up user", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load collection")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	response, err := api.collectionService.List(r.Context(), ownerID)
	if err != nil {
		api.logger.Error("Failed to list public collection", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load collection")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"owner": map[string]string{
			"id":          user.ID,
			"displayName": user.DisplayName,
			"avatarUrl":   user.AvatarURL,
		},
		"collection": response,
	})
}

func (api *CollectionAPI) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if svcErr, ok := err.(*collection.ServiceError); ok {
		writeError(w, http.StatusBadRequest, "invalid_request", svcErr.Message)
		return
	}
	api.logger.Error("Collection operation failed", logging.WithField("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal_error", fallback)
}
