package handlers_test

import (
	"fmt"
	"testing"

	"barter/internal/config"
)

func TestAuthLogging(t *testing.T) {
	ta := newTestApp(t, config.Config{})
	ta.register(t, "alice")

	run := func(password string) {
		ta.do(t, "POST", "/api/login", "", map[string]string{"username": "alice", "password": password})
	}

	entries := captureLogs(t, func() { run("wrong-password") })
	e, ok := findAction(entries, "auth.login.fail")
	if !ok {
		t.Fatal("auth.login.fail log not found")
	}
	ctx := e.ContextMap()
	if ctx["kind"] != "security" {
		t.Fatalf("auth.login.fail kind = %v", ctx["kind"])
	}
	fields, _ := ctx["fields"].(map[string]any)
	if fields["username"] != "alice" {
		t.Fatalf("auth.login.fail missing username: %v", ctx)
	}
	if fields["password"] != nil {
		t.Fatal("password must never be logged")
	}
	if ctx["req_id"] == nil || ctx["req_id"] == "" {
		t.Fatal("request id missing")
	}

	entries = captureLogs(t, func() { run("password123") })
	if _, ok := findAction(entries, "auth.login.success"); !ok {
		t.Fatal("auth.login.success log not found")
	}
}

func TestAccessDeniedLogs(t *testing.T) {
	ta := newTestApp(t, config.Config{})
	alice, bob := ta.register(t, "alice"), ta.register(t, "bobby")
	id := ta.createAd(t, alice, "Lamp")

	entries := captureLogs(t, func() {
		ta.do(t, "DELETE", fmt.Sprintf("/api/ads/%d", id), bob, nil)
	})
	e, ok := findAction(entries, "access.denied")
	if !ok {
		t.Fatal("access.denied log not found")
	}
	ctx := e.ContextMap()
	if ctx["status"] != int64(403) {
		t.Fatalf("status = %v", ctx["status"])
	}
	if ctx["user_id"] == nil {
		t.Fatal("user_id missing on access.denied")
	}

	entries = captureLogs(t, func() {
		ta.do(t, "POST", "/api/ads", "", map[string]string{"title": "x"})
	})
	if _, ok := findAction(entries, "access.denied"); !ok {
		t.Fatal("anonymous write not logged")
	}
}

func TestAuditLogs(t *testing.T) {
	ta := newTestApp(t, config.Config{})
	alice := ta.register(t, "alice")

	entries := captureLogs(t, func() { ta.createAd(t, alice, "Lamp") })
	e, ok := findAction(entries, "ads.create")
	if !ok {
		t.Fatal("ads.create log not found")
	}
	if e.ContextMap()["kind"] != "audit" {
		t.Fatalf("ads.create kind = %v", e.ContextMap()["kind"])
	}
}
