package application

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/maxweight/internal/config"
	"github.com/eugenenazirov/maxweight/internal/solver"
	"github.com/eugenenazirov/maxweight/internal/storage"
)

const catalogHeader = "description^calories^weight\n"

func writeCatalog(t *testing.T, path string, records ...string) {
	t.Helper()
	body := catalogHeader + strings.Join(records, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}

type fakeObjects struct {
	body string
}

func (f fakeObjects) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestNewInitializesDependencies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "food.csv")
	writeCatalog(t, path, "oats^150^2", "honey^60^1")

	cfg := baseTestConfig(":8085")
	cfg.CatalogSource = path

	app, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(app.Close)

	catalog, _, err := app.Storage().GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog returned error: %v", err)
	}
	if got := catalog.Descriptions(); len(got) != 2 || got[0] != "oats" || got[1] != "honey" {
		t.Fatalf("unexpected catalog %v", got)
	}
	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewWithoutCatalogSourceStartsEmpty(t *testing.T) {
	app, err := New(context.Background(), baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(app.Close)

	catalog, _, err := app.Storage().GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog returned error: %v", err)
	}
	if len(catalog) != 0 {
		t.Fatalf("expected empty catalog, got %d items", len(catalog))
	}
}

func TestNewLoadsRemoteCatalog(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.CatalogSource = "s3://foods/catalog.csv"

	objects := fakeObjects{body: catalogHeader + "jerky^80^1\n"}
	app, err := New(context.Background(), cfg, zaptest.NewLogger(t), WithObjectGetter(objects))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(app.Close)

	catalog, _, _ := app.Storage().GetCatalog()
	if len(catalog) != 1 || catalog[0].Description() != "jerky" {
		t.Fatalf("unexpected catalog %v", catalog.Descriptions())
	}
}

func TestNewReturnsErrorForMissingCatalog(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.CatalogSource = filepath.Join(t.TempDir(), "missing.csv")

	if _, err := New(context.Background(), cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}

func TestNewRejectsOversizeCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "food.csv")
	writeCatalog(t, path, "oats^150^2", "honey^60^1")

	cfg := baseTestConfig(":0")
	cfg.CatalogSource = path
	cfg.MaxCatalogItems = 1

	if _, err := New(context.Background(), cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for oversize catalog")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestBuildRootHandler(t *testing.T) {
	apiInvoked := false
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Fatalf("unexpected path passed to API handler: %s", r.URL.Path)
		}
		apiInvoked = true
		w.WriteHeader(http.StatusNoContent)
	})

	handler := BuildRootHandler(apiHandler)

	t.Run("forwards api traffic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
		if !apiInvoked {
			t.Fatalf("expected API handler to be invoked")
		}
	})

	t.Run("exposes metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "maxweight_catalog_items") {
			t.Fatalf("expected maxweight collectors in exposition")
		}
	})

	t.Run("returns not found for unknown paths", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestWatcherReloadsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "food.csv")
	writeCatalog(t, path, "oats^150^2")

	cfg := baseTestConfig(":0")
	cfg.CatalogSource = path
	cfg.WatchCatalog = true

	app, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(app.Close)
	app.StartWatcher()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		writeCatalog(t, path, "oats^150^2", "honey^60^1")
		time.Sleep(50 * time.Millisecond)

		catalog, _, _ := app.Storage().GetCatalog()
		if len(catalog) == 2 {
			return
		}
	}
	t.Fatalf("expected catalog to be reloaded after file change")
}

func TestCloseWithoutStart(t *testing.T) {
	app, err := New(context.Background(), baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		app.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Close did not return")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		DefaultStrategy:      solver.StrategyGreedy,
		MaxExhaustiveItems:   solver.DefaultMaxItems,
		ExhaustiveWorkers:    1,
		MaxCatalogItems:      storage.DefaultMaxItems,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
