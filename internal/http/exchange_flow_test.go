package handlers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"barter/internal/config"
)

type proposalBody struct {
	ID     int64  `json:"exchange_id"`
	Status string `json:"status"`
}

func TestExchangeFlowAccept(t *testing.T) {
	ta := newTestApp(t, config.Config{})
	alice, bob := ta.register(t, "alice"), ta.register(t, "bobby")
	a1, b1 := ta.createAd(t, alice, "A1"), ta.createAd(t, bob, "B1")

	resp, body := ta.do(t, "POST", "/api/exchange", alice, map[string]any{
		"ad_sender_id": a1, "ad_receiver_id": b1, "comment": "trade?",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	var pr proposalBody
	mustJSON(t, body, &pr)
	if pr.Status != "pending" {
		t.Fatalf("expected pending, got %s", pr.Status)
	}
	path := fmt.Sprintf("/api/exchange/%d", pr.ID)

	// the sender cannot decide
	resp, _ = ta.do(t, "PATCH", path, alice, map[string]string{"status": "accepted"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("sender decide: expected 403, got %d", resp.StatusCode)
	}
	// only status is writable
	resp, _ = ta.do(t, "PATCH", path, bob, map[string]string{"status": "accepted", "comment": "x"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("extra field: expected 403, got %d", resp.StatusCode)
	}
	resp, _ = ta.do(t, "PATCH", path, bob, map[string]string{"status": "pending"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("pending: expected 400, got %d", resp.StatusCode)
	}

	resp, body = ta.do(t, "PATCH", path, bob, map[string]string{"status": "accepted"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("accept: %d %s", resp.StatusCode, body)
	}
	for _, id := range []int64{a1, b1} {
		resp, _ = ta.do(t, "GET", fmt.Sprintf("/api/ads/%d", id), "", nil)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("ad %d should be gone, got %d", id, resp.StatusCode)
		}
	}

	resp, _ = ta.do(t, "PATCH", path, bob, map[string]string{"status": "rejected"})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("second decision: expected 409, got %d", resp.StatusCode)
	}

	resp, body = ta.do(t, "GET", path, alice, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("detail: %d", resp.StatusCode)
	}
	mustJSON(t, body, &pr)
	if pr.Status != "accepted" {
		t.Fatalf("expected accepted, got %s", pr.Status)
	}
}

func TestExchangeCreateErrors(t *testing.T) {
	ta := newTestApp(t, config.Config{})
	alice, bob := ta.register(t, "alice"), ta.register(t, "bobby")
	a1, b1 := ta.createAd(t, alice, "A1"), ta.createAd(t, bob, "B1")

	cases := []struct {
		name  string
		token string
		body  map[string]any
		want  int
	}{
		{"anonymous", "", map[string]any{"ad_sender_id": a1, "ad_receiver_id": b1}, fiber.StatusUnauthorized},
		{"missing ids", alice, map[string]any{"comment": "x"}, fiber.StatusBadRequest},
		{"unknown ad", alice, map[string]any{"ad_sender_id": a1, "ad_receiver_id": 9999}, fiber.StatusNotFound},
		{"same ad", alice, map[string]any{"ad_sender_id": a1, "ad_receiver_id": a1}, fiber.StatusBadRequest},
		{"not my ad", bob, map[string]any{"ad_sender_id": a1, "ad_receiver_id": b1}, fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := ta.do(t, "POST", "/api/exchange", tc.token, tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d %s", tc.want, resp.StatusCode, body)
			}
		})
	}
}

func TestExchangeVisibilityAndWithdraw(t *testing.T) {
	ta := newTestApp(t, config.Config{})
	alice, bob, carol := ta.register(t, "alice"), ta.register(t, "bobby"), ta.register(t, "carol")
	a1, b1 := ta.createAd(t, alice, "A1"), ta.createAd(t, bob, "B1")

	_, body := ta.do(t, "POST", "/api/exchange", alice, map[string]any{"ad_sender_id": a1, "ad_receiver_id": b1})
	var pr proposalBody
	mustJSON(t, body, &pr)
	path := fmt.Sprintf("/api/exchange/%d", pr.ID)

	resp, _ := ta.do(t, "GET", path, carol, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("stranger detail: expected 404, got %d", resp.StatusCode)
	}

	var list []proposalBody
	_, body = ta.do(t, "GET", "/api/exchange", carol, nil)
	mustJSON(t, body, &list)
	if len(list) != 0 {
		t.Fatalf("stranger sees %d proposals", len(list))
	}
	_, body = ta.do(t, "GET", "/api/exchange?status=pending", bob, nil)
	mustJSON(t, body, &list)
	if len(list) != 1 || list[0].ID != pr.ID {
		t.Fatalf("receiver list: %s", body)
	}
	_, body = ta.do(t, "GET", "/api/exchange?status=accepted", bob, nil)
	mustJSON(t, body, &list)
	if len(list) != 0 {
		t.Fatalf("status filter ignored: %s", body)
	}
	resp, _ = ta.do(t, "GET", "/api/exchange?status=bogus", bob, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = ta.do(t, "DELETE", path, bob, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("receiver withdraw: expected 403, got %d", resp.StatusCode)
	}
	resp, _ = ta.do(t, "DELETE", path, alice, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("sender withdraw: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = ta.do(t, "GET", fmt.Sprintf("/api/ads/%d", a1), "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("withdraw must keep ads, got %d", resp.StatusCode)
	}
}
