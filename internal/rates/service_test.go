package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"figurevault/internal/cache"
	"figurevault/internal/config"
	"figurevault/internal/testutil"
)

func newTestService(t *testing.T, endpoint string) *Service {
	t.Helper()

	c := cache.NewMemory(time.Minute)
	t.Cleanup(c.Stop)

	cfg := config.RatesConfig{
		EndpointURL: endpoint,
		TTL:         time.Minute,
	}
	return NewService(cfg, c, testutil.NullLogger())
}

func TestGet(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base_code":"EUR","rates":{"EUR":1.0,"USD":1.1,"JPY":160.5}}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)

	rates := svc.Get(context.Background())
	if rates.Fallback {
		t.Error("Get() should not fall back when the provider responds")
	}
	if rates.Base != ReferenceCurrency {
		t.Errorf("base = %q, want %q", rates.Base, ReferenceCurrency)
	}
	if rates.Rates["USD"] != 1.1 {
		t.Errorf("USD rate = %v, want 1.1", rates.Rates["USD"])
	}

	// Second call is served from cache
	svc.Get(context.Background())
	if requests != 1 {
		t.Errorf("provider hit %d times, want 1 (cache miss only)", requests)
	}
}

func TestGet_FallsBackOnProviderFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"empty rates", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"base_code":"EUR","rates":{}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			svc := newTestService(t, server.URL)

			rates := svc.Get(context.Background())
			if !rates.Fallback {
				t.Error("Get() should report fallback when the provider fails")
			}
			if rates.Rates["USD"] == 0 {
				t.Error("fallback table should still carry a USD rate")
			}
		})
	}
}

func TestGet_FallsBackWhenUnreachable(t *testing.T) {
	svc := newTestService(t, "http://127.0.0.1:1/rates")

	rates := svc.Get(context.Background())
	if !rates.Fallback {
		t.Error("Get() should fall back when the provider is unreachable")
	}
}

func TestConvert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base_code":"EUR","rates":{"EUR":1.0,"USD":2.0,"JPY":160.0}}`))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL)
	ctx := context.Background()

	tests := []struct {
		name     string
		amount   float64
		currency string
		want     float64
	}{
		{"eur is identity", 10, "EUR", 10},
		{"empty currency is identity", 10, "", 10},
		{"usd", 10, "USD", 20},
		{"jpy", 1.5, "JPY", 240},
		{"unknown currency converts 1:1", 10, "XYZ", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Convert(ctx, tt.amount, tt.currency); got != tt.want {
				t.Errorf("Convert(%v, %q) = %v, want %v", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}
