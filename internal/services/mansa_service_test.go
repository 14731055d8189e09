package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newMansaTestService(t *testing.T, handler http.Handler) (*MansaService, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	svc, err := NewMansaService(MansaConfig{
		BaseURL:      ts.URL,
		ClientKey:    "key",
		ClientSecret: "secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, ts
}

func authHandler(authCalls *int32, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(authCalls, 1)
		if r.Header.Get("client-key") != "key" || r.Header.Get("client-secret") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken": token,
			"expiresIn":   3600,
		})
	}
}

func TestInitiatePayment_ReusesCachedToken(t *testing.T) {
	var authCalls, initiateCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/xyz/authenticate", authHandler(&authCalls, "tok-1"))
	mux.HandleFunc("/api/v1/xyz/initiate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&initiateCalls, 1)
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("unexpected authorization header: %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]string{
			"transactionReference": "MANSA-42",
			"status":               "PENDING",
		})
	})

	svc, _ := newMansaTestService(t, mux)

	req := MansaInitiateRequest{
		PhoneNumber:  "670000000",
		Amount:       5000,
		FullName:     "Jane Buyer",
		EmailAddress: "jane@example.com",
		Provider:     "MOMO",
	}

	for i := 0; i < 3; i++ {
		resp, err := svc.InitiatePayment(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		if resp.TransactionReference != "MANSA-42" {
			t.Errorf("transaction reference mismatch: %q", resp.TransactionReference)
		}
	}

	if got := atomic.LoadInt32(&authCalls); got != 1 {
		t.Errorf("expected 1 authenticate call, got %d", got)
	}
	if got := atomic.LoadInt32(&initiateCalls); got != 3 {
		t.Errorf("expected 3 initiate calls, got %d", got)
	}
}

func TestInitiatePayment_RetriesOnceOnRejectedToken(t *testing.T) {
	var authCalls, initiateCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/xyz/authenticate", authHandler(&authCalls, "tok"))
	mux.HandleFunc("/api/v1/xyz/initiate", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&initiateCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"errorCode": "INVALID_AUTH_TOKEN"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"transactionReference": "MANSA-99",
			"status":               "PENDING",
		})
	})

	svc, _ := newMansaTestService(t, mux)

	resp, err := svc.InitiatePayment(context.Background(), MansaInitiateRequest{
		PhoneNumber: "670000000", Amount: 100, FullName: "A", EmailAddress: "a@b.c", Provider: "OM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TransactionReference != "MANSA-99" {
		t.Errorf("transaction reference mismatch: %q", resp.TransactionReference)
	}
	if got := atomic.LoadInt32(&authCalls); got != 2 {
		t.Errorf("expected 2 authenticate calls (initial + re-auth), got %d", got)
	}
	if got := atomic.LoadInt32(&initiateCalls); got != 2 {
		t.Errorf("expected 2 initiate calls, got %d", got)
	}
}

func TestInitiatePayment_SecondRejectionSurfaces(t *testing.T) {
	var authCalls, initiateCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/xyz/authenticate", authHandler(&authCalls, "tok"))
	mux.HandleFunc("/api/v1/xyz/initiate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&initiateCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"errorCode": "INVALID_AUTH_TOKEN"})
	})

	svc, _ := newMansaTestService(t, mux)

	_, err := svc.InitiatePayment(context.Background(), MansaInitiateRequest{
		PhoneNumber: "670000000", Amount: 100, FullName: "A", EmailAddress: "a@b.c", Provider: "MOMO",
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var apiErr *MansaError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected MansaError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
	// no third attempt
	if got := atomic.LoadInt32(&initiateCalls); got != 2 {
		t.Errorf("expected exactly 2 initiate calls, got %d", got)
	}
	if got := atomic.LoadInt32(&authCalls); got != 2 {
		t.Errorf("expected exactly 2 authenticate calls, got %d", got)
	}
}

func TestInitiatePayment_Non2xxReturnsMansaError(t *testing.T) {
	var authCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/xyz/authenticate", authHandler(&authCalls, "tok"))
	mux.HandleFunc("/api/v1/xyz/initiate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid phone number"}`))
	})

	svc, _ := newMansaTestService(t, mux)

	_, err := svc.InitiatePayment(context.Background(), MansaInitiateRequest{
		PhoneNumber: "bad", Amount: 100, FullName: "A", EmailAddress: "a@b.c", Provider: "MOMO",
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var apiErr *MansaError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected MansaError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Errorf("expected body to be populated")
	}
}

func TestAuthenticate_MissingTokenFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/xyz/authenticate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"expiresIn": 3600})
	})

	svc, _ := newMansaTestService(t, mux)

	_, err := svc.InitiatePayment(context.Background(), MansaInitiateRequest{
		PhoneNumber: "670000000", Amount: 100, FullName: "A", EmailAddress: "a@b.c", Provider: "MOMO",
	})
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestMansaError_AuthRejected(t *testing.T) {
	t.Run("recognizes invalid token", func(t *testing.T) {
		err := &MansaError{StatusCode: http.StatusUnauthorized, Body: `{"errorCode":"INVALID_AUTH_TOKEN"}`}
		if !err.AuthRejected() {
			t.Error("expected auth rejection to be recognized")
		}
	})

	t.Run("ignores other 401s", func(t *testing.T) {
		err := &MansaError{StatusCode: http.StatusUnauthorized, Body: `{"errorCode":"ACCOUNT_SUSPENDED"}`}
		if err.AuthRejected() {
			t.Error("unexpected auth rejection for non-token error")
		}
	})

	t.Run("ignores non-401", func(t *testing.T) {
		err := &MansaError{StatusCode: http.StatusBadGateway, Body: `{"errorCode":"INVALID_AUTH_TOKEN"}`}
		if err.AuthRejected() {
			t.Error("unexpected auth rejection for non-401 status")
		}
	})
}
