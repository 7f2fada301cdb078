package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/db"
	"github.com/gofiber/fiber/v2"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

var apiTestNow = time.Date(2026, time.May, 3, 9, 0, 0, 0, time.UTC)

type testApp struct {
	app     *fiber.App
	handler *Handler
	store   *db.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

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

	now := func() time.Time { return apiTestNow }
	store := db.NewStore(database, time.UTC, now)
	handler, err := NewHandler(Config{
		SecretKey:    testSecretKey,
		Location:     time.UTC,
		TimelineTick: 10 * time.Millisecond,
		Now:          now,
	}, NewStoreDependencies(store, time.UTC, now))
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(app, handler)
	return &testApp{app: app, handler: handler, store: store}
}

func (harness *testApp) request(t *testing.T, method string, path string, cookie string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := harness.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}
	return response, payload
}

func (harness *testApp) expect(t *testing.T, method string, path string, cookie string, body any, status int) []byte {
	t.Helper()
	response, payload := harness.request(t, method, path, cookie, body)
	if response.StatusCode != status {
		t.Fatalf("%s %s expected status %d, got %d: %s", method, path, status, response.StatusCode, payload)
	}
	return payload
}

// register creates an account and returns the session cookie header value.
func (harness *testApp) register(t *testing.T, name string, email string) string {
	t.Helper()
	response, payload := harness.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     name,
		"email":    email,
		"password": "StrongPass1",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("register %s expected 201, got %d: %s", email, response.StatusCode, payload)
	}
	value := responseCookieValue(response.Cookies(), authCookieName)
	if value == "" {
		t.Fatalf("register %s did not set the auth cookie", email)
	}
	return authCookieName + "=" + value
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func decodeJSON(t *testing.T, payload []byte, target any) {
	t.Helper()
	if err := json.Unmarshal(payload, target); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
}

func readAPIError(t *testing.T, payload []byte) string {
	t.Helper()
	body := map[string]string{}
	decodeJSON(t, payload, &body)
	return body["error"]
}
