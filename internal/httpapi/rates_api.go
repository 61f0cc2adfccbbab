package httpapi

import (
	"net/http"
	"strings"

	"figurevault/internal/logging"
	"figurevault/internal/rates"
)

// RatesAPI exposes the EUR-based exchange rates used for value display
type RatesAPI struct {
	ratesService *rates.Service
	logger       *logging.Logger
}

// NewRatesAPI creates a new rates API handler
func NewRatesAPI(ratesService *rates.Service, logger *logging.Logger) *RatesAPI {
	return &RatesAPI{
		ratesService: ratesService,
		logger:       logger,
	}
}

// RegisterRoutes registers rates routes on the given mux
func (api *RatesAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/rates", corsMiddleware(api.handleGet))
}

func (api *RatesAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := api.ratesService.Get(r.Context())

	// ?to=XXX narrows the response to the single rate used for display.
	// Unknown currencies convert 1:1, matching Convert.
	if to := strings.ToUpper(r.URL.Query().Get("to")); to != "" {
		rate, ok := all.Rates[to]
		if !ok || rate <= 0 {
			rate = 1.0
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"base":     all.Base,
			"currency": to,
			"rate":     rate,
			"fallback": all.Fallback,
		})
		return
	}

	writeJSON(w, http.StatusOK, all)
}
