package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"figurevault/internal/config"
	"figurevault/internal/models"
	"figurevault/internal/testutil"
)

const sampleDump = `[
	{"name": "Mario", "series": "Super Mario", "type": "figure", "character": "Mario",
	 "releases": {"na": "2014-11-21", "eu": "2014-11-28"}},
	{"name": "  Link  ", "series": "The Legend of Zelda", "releases": {"na": "11/21/2014"}},
	{"name": "", "series": "Nameless"},
	{"name": "   ", "series": "Whitespace"},
	{"name": "Pikachu", "releases": {"jp": "not-a-date"}}
]`

type mockWriter struct {
	items     []models.CatalogItem
	batchSize int
	err       error
	calls     int
}

func (m *mockWriter) ReplaceAll(_ context.Context, items []models.CatalogItem, batchSize int) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.items = items
	m.batchSize = batchSize
	return nil
}

func newTestImporter(writer CatalogWriter, sourceURL string) *Importer {
	cfg := config.ImportConfig{
		SourceURL: sourceURL,
		BatchSize: 100,
	}
	return New(writer, cfg, testutil.NullLogger())
}

func TestRunFrom_HTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleDump))
	}))
	defer server.Close()

	writer := &mockWriter{}
	imp := newTestImporter(writer, "")

	result, err := imp.RunFrom(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("RunFrom() error = %v", err)
	}

	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (unnamed entries)", result.Skipped)
	}
	if len(writer.items) != 3 {
		t.Fatalf("writer received %d items, want 3", len(writer.items))
	}
	if writer.batchSize != 100 {
		t.Errorf("batch size = %d, want 100", writer.batchSize)
	}

	link := writer.items[1]
	if link.Name != "Link" {
		t.Errorf("name = %q, want trimmed %q", link.Name, "Link")
	}
	if link.ReleaseNA == nil {
		t.Error("slash-format release date should have been parsed")
	}

	pikachu := writer.items[2]
	if pikachu.ReleaseJP != nil {
		t.Error("unparseable release date should be nil, not an error")
	}
}

func TestRunFrom_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	if err := os.WriteFile(path, []byte(sampleDump), 0o644); err != nil {
		t.Fatalf("failed to write dump: %v", err)
	}

	writer := &mockWriter{}
	imp := newTestImporter(writer, "")

	result, err := imp.RunFrom(context.Background(), path)
	if err != nil {
		t.Fatalf("RunFrom() error = %v", err)
	}
	if result.Total != 3 || result.Skipped != 2 {
		t.Errorf("total/skipped = %d/%d, want 3/2", result.Total, result.Skipped)
	}
}

func TestRunFrom_SourceErrors(t *testing.T) {
	badStatus := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer badStatus.Close()

	badJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer badJSON.Close()

	tests := []struct {
		name   string
		source string
	}{
		{"http error status", badStatus.URL},
		{"invalid json", badJSON.URL},
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockWriter{}
			imp := newTestImporter(writer, "")

			if _, err := imp.RunFrom(context.Background(), tt.source); err == nil {
				t.Error("RunFrom() should fail")
			}
			if writer.calls != 0 {
				t.Error("a failed load must never touch the catalog")
			}
		})
	}
}

func TestRun_RequiresConfiguredSource(t *testing.T) {
	imp := newTestImporter(&mockWriter{}, "")

	if _, err := imp.Run(context.Background()); err == nil {
		t.Error("Run() without a configured source should fail")
	}
}

func TestRunFrom_WriterError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleDump))
	}))
	defer server.Close()

	writer := &mockWriter{err: errors.New("deadlock detected")}
	imp := newTestImporter(writer, "")

	if _, err := imp.RunFrom(context.Background(), server.URL); err == nil {
		t.Error("RunFrom() should surface writer errors")
	}
}

func TestTransform(t *testing.T) {
	entry := SourceEntry{Name: "Samus", Series: " Metroid ", Character: "Samus Aran"}
	entry.Releases.EU = "2015-03-20"

	item, ok := transform(entry)
	if !ok {
		t.Fatal("transform() rejected a named entry")
	}
	if item.Series != "Metroid" {
		t.Errorf("series = %q, want trimmed %q", item.Series, "Metroid")
	}
	if item.ReleaseEU == nil || item.ReleaseNA != nil {
		t.Error("only the EU release date should be set")
	}
}
