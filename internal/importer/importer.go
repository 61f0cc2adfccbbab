package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"figurevault/internal/config"
	"figurevault/internal/logging"
	"figurevault/internal/models"
	"figurevault/internal/ratelimit"
)

// CatalogWriter replaces the full catalog in one transaction
type CatalogWriter interface {
	ReplaceAll(ctx context.Context, items []models.CatalogItem, batchSize int) error
}

// SourceEntry is one figure in the upstream catalog dump
type SourceEntry struct {
	Name      string `json:"name"`
	Series    string `json:"series,omitempty"`
	Type      string `json:"type,omitempty"`
	Character string `json:"character,omitempty"`
	Image     string `json:"image,omitempty"`
	Releases  struct {
		NA string `json:"na,omitempty"`
		EU string `json:"eu,omitempty"`
		JP string `json:"jp,omitempty"`
		AU string `json:"au,omitempty"`
	} `json:"releases"`
}

// Result summarizes an import run
type Result struct {
	Total    int           `json:"total"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Importer loads a catalog dump and replaces the stored catalog with it.
// Each run is full-replace: items missing from the dump disappear.
type Importer struct {
	writer  CatalogWriter
	config  config.ImportConfig
	client  *http.Client
	limiter *ratelimit.Limiter
	logger  *logging.Logger
}

// New creates a new catalog importer
func New(writer CatalogWriter, cfg config.ImportConfig, logger *logging.Logger) *Importer {
	return &Importer{
		writer:  writer,
		config:  cfg,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: ratelimit.New(cfg.MinRequestInterval),
		logger:  logger,
	}
}

// Run fetches the configured source and replaces the catalog
func (i *Importer) Run(ctx context.Context) (*Result, error) {
	if i.config.SourceURL == "" {
		return nil, fmt.Errorf("no import source configured")
	}
	return i.RunFrom(ctx, i.config.SourceURL)
}

// RunFrom fetches a catalog dump from an http(s) URL or a local file path
// and replaces the catalog with its contents.
func (i *Importer) RunFrom(ctx context.Context, source string) (*Result, error) {
	start := time.Now()

	entries, err := i.load(ctx, source)
	if err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		item, ok := transform(entry)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}

	if err := i.writer.ReplaceAll(ctx, items, i.config.BatchSize); err != nil {
		return nil, fmt.Errorf("failed to replace catalog: %w", err)
	}

	result := &Result{
		Total:    len(items),
		Skipped:  skipped,
		Duration: time.Since(start),
	}

	i.logger.Info("Catalog import complete", logging.WithFields(map[string]interface{}{
		"total":    result.Total,
		"skipped":  result.Skipped,
		"duration": result.Duration.String(),
	}))

	return result, nil
}

func (i *Importer) load(ctx context.Context, source string) ([]SourceEntry, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return i.fetch(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return decodeEntries(data)
}

func (i *Importer) fetch(ctx context.Context, rawURL string) ([]SourceEntry, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid import source URL: %w", err)
	}

	i.limiter.Wait(parsed.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build import request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch import source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("import source returned status %d", resp.StatusCode)
	}

	var entries []SourceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode import source: %w", err)
	}
	return entries, nil
}

func decodeEntries(data []byte) ([]SourceEntry, error) {
	var entries []SourceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode import file: %w", err)
	}
	return entries, nil
}

// transform converts a source entry to a catalog item. Entries without a
// name are skipped.
func transform(entry SourceEntry) (models.CatalogItem, bool) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return models.CatalogItem{}, false
	}

	return models.CatalogItem{
		Name:      name,
		Series:    strings.TrimSpace(entry.Series),
		Type:      strings.TrimSpace(entry.Type),
		Character: strings.TrimSpace(entry.Character),
		ImageURL:  strings.TrimSpace(entry.Image),
		ReleaseNA: models.ParseDatePtr(entry.Releases.NA),
		ReleaseEU: models.ParseDatePtr(entry.Releases.EU),
		ReleaseJP: models.ParseDatePtr(entry.Releases.JP),
		ReleaseAU: models.ParseDatePtr(entry.Releases.AU),
	}, true
}
