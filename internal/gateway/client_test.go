package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateOrder_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/pg/orders" {
			t.Fatalf("path = %s, want /api/pg/orders", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Fatalf("request must be signed")
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MerchantOrderID != "m-1" || req.Amount != 5000 {
			t.Fatalf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateOrderResponse{
			OrderID:     "gw-1",
			RedirectURL: "https://pay.example/checkout/gw-1",
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "merchant", "secret")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.CreateOrder(ctx, "m-1", 5000, "https://shop.example/done")
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if res.OrderID != "gw-1" {
		t.Fatalf("unexpected order id: %q", res.OrderID)
	}
	if res.RedirectURL == "" {
		t.Fatalf("redirect url must be set")
	}
}

func TestCreateOrder_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "merchant", "secret")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := client.CreateOrder(ctx, "m-1", 5000, ""); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	client := NewClient("", "", "")

	if _, err := client.CreateOrder(context.Background(), "m-1", 5000, ""); err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}

func TestSignDeterministic(t *testing.T) {
	body := []byte(`{"amount":5000}`)

	a := Sign(body, "merchant", "secret")
	b := Sign(body, "merchant", "secret")
	if a != b {
		t.Fatalf("Sign must be deterministic, got %s and %s", a, b)
	}

	if Sign(body, "merchant", "other") == a {
		t.Fatalf("different credentials must produce different signatures")
	}
	if Sign([]byte(`{"amount":5001}`), "merchant", "secret") == a {
		t.Fatalf("different bodies must produce different signatures")
	}
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("http://gateway", "merchant", "secret")
	body := []byte(`{"amount":5000}`)
	sig := Sign(body, "merchant", "secret")

	if !client.VerifySignature(body, sig) {
		t.Fatalf("valid signature rejected")
	}
	if !client.VerifySignature(body, strings.ToUpper(sig)) {
		t.Fatalf("signature comparison must ignore case")
	}
	if client.VerifySignature(body, "") {
		t.Fatalf("empty header must be rejected")
	}
	if client.VerifySignature([]byte(`{"amount":1}`), sig) {
		t.Fatalf("signature for another body must be rejected")
	}
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"event":"payment.updated","payload":{"merchantOrderId":"m-1","orderId":"gw-1","state":"COMPLETED","amount":5000}}`)

	evt, err := ParseWebhook(body)
	if err != nil {
		t.Fatalf("ParseWebhook error: %v", err)
	}
	if evt.Payload.MerchantOrderID != "m-1" || !evt.Completed() {
		t.Fatalf("unexpected event: %+v", evt)
	}

	if _, err := ParseWebhook([]byte(`{}`)); err == nil {
		t.Fatalf("expected error for event without merchantOrderId")
	}
	if _, err := ParseWebhook([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
