package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/configloader"

	"go.uber.org/zap"
)

func TestBuild_DemoMode(t *testing.T) {
	for _, k := range []string{"ALCHEMY_API_KEY", "NATS_URL", "AUTH_REQUIRED", "STORAGE_PATH"} {
		t.Setenv(k, "")
	}
	cfg, err := configloader.Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	app, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer app.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/addresses", nil)
	w := httptest.NewRecorder()
	app.Router(zap.NewNop()).Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var addrs []entity.Address
	if err := json.Unmarshal(w.Body.Bytes(), &addrs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(addrs) != 4 {
		t.Errorf("len(addresses) = %d, want 4 demo addresses", len(addrs))
	}
}

func TestBuild_PebbleStorage(t *testing.T) {
	for _, k := range []string{"ALCHEMY_API_KEY", "NATS_URL", "AUTH_REQUIRED"} {
		t.Setenv(k, "")
	}
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), "db"))
	cfg, err := configloader.Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.Alchemy.APIKey = "test-key"

	app, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer app.Close()

	addrs, err := app.Addresses.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(addrs) != 0 {
		t.Errorf("len(addresses) = %d, want empty store without seed", len(addrs))
	}
}
