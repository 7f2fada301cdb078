package cli

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/api"
	"github.com/cormacgwin/goodwin-challenge/internal/db"
)

const validSecretKey = "0123456789abcdef0123456789abcdef"

func TestResolveSecretKey(t *testing.T) {
	rejected := []string{"", "   ", "change_me_in_production", "replace_with_at_least_32_random_characters", "too-short-secret"}
	for _, raw := range rejected {
		if _, err := resolveSecretKey(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}

	secret, err := resolveSecretKey("  " + validSecretKey + " ")
	if err != nil {
		t.Fatalf("expected valid secret, got error: %v", err)
	}
	if secret != validSecretKey {
		t.Fatalf("expected %q, got %q", validSecretKey, secret)
	}
}

func TestServeCmdConfigValidation(t *testing.T) {
	globals := &Globals{DBPath: "data/challenge.db", TZ: "UTC"}

	tests := []struct {
		name    string
		cmd     ServeCmd
		wantErr bool
	}{
		{name: "valid", cmd: ServeCmd{Port: "8080", Host: "0.0.0.0", SecretKey: validSecretKey, TimelineTick: time.Second}},
		{name: "non numeric port", cmd: ServeCmd{Port: "http", Host: "0.0.0.0", SecretKey: validSecretKey, TimelineTick: time.Second}, wantErr: true},
		{name: "missing secret", cmd: ServeCmd{Port: "8080", Host: "0.0.0.0", TimelineTick: time.Second}, wantErr: true},
		{name: "zero tick", cmd: ServeCmd{Port: "8080", Host: "0.0.0.0", SecretKey: validSecretKey}, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := testCase.cmd.config(globals)
			if testCase.wantErr && err == nil {
				t.Fatal("expected configuration error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected configuration error: %v", err)
			}
		})
	}
}

func TestGlobalsLocationFallsBackToUTC(t *testing.T) {
	if got := (&Globals{TZ: "Mars/Olympus"}).Location(); got != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", got)
	}
	if got := (&Globals{TZ: "Europe/Berlin"}).Location(); got.String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %v", got)
	}
}

func TestNewAppServesHealthz(t *testing.T) {
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "challenge.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	store := db.NewStore(database, time.UTC, nil)
	handler, err := api.NewHandler(api.Config{SecretKey: validSecretKey}, api.NewStoreDependencies(store, time.UTC, nil))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	response, err := newApp(handler).Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
}
