package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"figurevault/internal/auth"
	"figurevault/internal/database"
	"figurevault/internal/images"
	"figurevault/internal/logging"
	"figurevault/internal/models"
)

// ProfileAPI handles profile and avatar endpoints
type ProfileAPI struct {
	userStore      *database.UserStore
	imageService   *images.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewProfileAPI creates a new profile API handler
func NewProfileAPI(userStore *database.UserStore, imageService *images.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *ProfileAPI {
	return &ProfileAPI{
		userStore:      userStore,
		imageService:   imageService,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers profile routes on the given mux
func (api *ProfileAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/me/profile", corsMiddleware(api.authMiddleware.RequireAuth(api.handleProfile)))
	mux.HandleFunc("/api/me/avatar", corsMiddleware(api.authMiddleware.RequireAuth(api.handleAvatar)))
}

func (api *ProfileAPI) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.getProfile(w, r)
	case http.MethodPut:
		api.updateProfile(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *ProfileAPI) getProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())

	user, err := api.userStore.GetByID(r.Context(), userID)
	if err != nil {
		api.logger.Error("Failed to get profile", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (api *ProfileAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())

	var params models.UpdateProfileParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if params.BirthDate != nil && *params.BirthDate != "" {
		if _, ok := models.ParseDate(*params.BirthDate); !ok {
			writeError(w, http.StatusBadRequest, "invalid_request", "birth date must be YYYY-MM-DD")
			return
		}
	}

	user, err := api.userStore.UpdateProfile(r.Context(), userID, params)
	if err != nil {
		api.logger.Error("Failed to update profile", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleAvatar accepts a multipart upload, runs it through moderation and
// stores it, then points the profile at the stored URL
func (api *ProfileAPI) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())

	data, contentType, ok := readImageUpload(w, r, api.logger)
	if !ok {
		return
	}

	result, err := api.imageService.Upload(r.Context(), userID, models.ImageEntityAvatar, data, contentType)
	if err != nil {
		writeImageError(w, err, api.logger)
		return
	}

	if err := api.userStore.SetAvatarURL(r.Context(), userID, result.URL); err != nil {
		api.logger.Error("Failed to save avatar URL", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save avatar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": result.URL})
}

// readImageUpload pulls the "image" part out of a multipart form. It writes
// the error response itself and returns ok=false on failure.
func readImageUpload(w http.ResponseWriter, r *http.Request, logger *logging.Logger) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(6 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "expected multipart form upload")
		return nil, "", false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "image file is required")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read upload", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read upload")
		return nil, "", false
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, true
}

func writeImageError(w http.ResponseWriter, err error, logger *logging.Logger) {
	switch {
	case errors.Is(err, images.ErrImageRejected):
		writeError(w, http.StatusUnprocessableEntity, "image_rejected", "image was rejected by moderation")
	case errors.Is(err, images.ErrImageUnverified):
		writeError(w, http.StatusServiceUnavailable, "image_unverified", "image could not be verified, try again later")
	default:
		logger.Error("Image upload failed", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "image upload failed")
	}
}
