package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"barter/internal/config"
	"barter/internal/events"
	"barter/internal/http/handlers"
	applog "barter/internal/log"
	"barter/internal/metrics"
	"barter/internal/repos"
)

type testApp struct {
	app *fiber.App
	db  *sqlx.DB
}

func newTestApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "../../web/templates"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	d := handlers.NewDeps(db, cfg, events.Nop{}, metrics.New("test"))
	d.Auth.Cost = bcrypt.MinCost
	return &testApp{app: handlers.NewApp(d), db: db}
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

// register creates an account and returns its token.
func (ta *testApp) register(t *testing.T, username string) string {
	t.Helper()
	resp, body := ta.do(t, "POST", "/api/register", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "password123",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s: %d %s", username, resp.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	mustJSON(t, body, &out)
	return out.Token
}

func (ta *testApp) createAd(t *testing.T, token, title string) int64 {
	t.Helper()
	resp, body := ta.do(t, "POST", "/api/ads", token, map[string]string{
		"title": title, "description": "desc of " + title, "category": "books", "condition": "used",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create ad: %d %s", resp.StatusCode, body)
	}
	var ad struct {
		ID int64 `json:"ad_id"`
	}
	mustJSON(t, body, &ad)
	return ad.ID
}

func mustJSON(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

// captureLogs routes the process logger into an observer while fn runs.
func captureLogs(t *testing.T, fn func()) []observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := applog.Set(zap.New(core))
	defer restore()
	fn()
	return logs.All()
}

func findAction(entries []observer.LoggedEntry, action string) (observer.LoggedEntry, bool) {
	for _, e := range entries {
		if e.ContextMap()["action"] == action {
			return e, true
		}
	}
	return observer.LoggedEntry{}, false
}

func httptestRequest(method, path, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}
