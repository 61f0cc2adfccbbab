package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"figurevault/internal/cache"
	"figurevault/internal/config"
	"figurevault/internal/logging"
)

const cacheKey = "rates:eur"

// ReferenceCurrency is the currency stored values are denominated in
const ReferenceCurrency = "EUR"

// fallbackRates keeps conversion working when the provider is unreachable.
// Values are approximate and relative to EUR.
var fallbackRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.08,
	"GBP": 0.85,
	"JPY": 162.0,
	"AUD": 1.65,
	"CAD": 1.47,
	"CHF": 0.94,
}

// Rates maps currency codes to their value per one EUR
type Rates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
	// Fallback is true when the provider was unreachable and hardcoded
	// approximations are being served
	Fallback  bool      `json:"fallback"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Service fetches and caches EUR-based exchange rates
type Service struct {
	config config.RatesConfig
	client *http.Client
	cache  cache.Cache
	logger *logging.Logger
}

// NewService creates a new rates service
func NewService(cfg config.RatesConfig, c cache.Cache, logger *logging.Logger) *Service {
	return &Service{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  c,
		logger: logger,
	}
}

// Get returns the current EUR-based rates, from cache when fresh. Provider
// failures fall back to the hardcoded table instead of erroring, so value
// display keeps working offline.
func (s *Service) Get(ctx context.Context) *Rates {
	if data, found := s.cache.Get(cacheKey); found {
		if raw, ok := data.([]byte); ok {
			var rates Rates
			if err := json.Unmarshal(raw, &rates); err == nil {
				return &rates
			}
		}
	}

	rates, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("Falling back to built-in exchange rates", logging.WithField("error", err.Error()))
		return &Rates{
			Base:      ReferenceCurrency,
			Rates:     fallbackRates,
			Fallback:  true,
			FetchedAt: time.Now(),
		}
	}

	if raw, err := json.Marshal(rates); err == nil {
		s.cache.SetWithTTL(cacheKey, raw, s.config.TTL)
	}

	return rates
}

// Convert converts an EUR amount into the target currency. Unknown
// currencies convert 1:1.
func (s *Service) Convert(ctx context.Context, amountEUR float64, currency string) float64 {
	if currency == "" || currency == ReferenceCurrency {
		return amountEUR
	}

	rates := s.Get(ctx)
	rate, ok := rates.Rates[currency]
	if !ok || rate <= 0 {
		return amountEUR
	}
	return amountEUR * rate
}

func (s *Service) fetch(ctx context.Context) (*Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.EndpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		BaseCode string             `json:"base_code"`
		Rates    map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates response contained no rates")
	}

	return &Rates{
		Base:      ReferenceCurrency,
		Rates:     payload.Rates,
		FetchedAt: time.Now(),
	}, nil
}
