package compute

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestComputeHeadersAndPath(t *testing.T) {
	var gotPath, gotAuth, gotUser, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUser = r.Header.Get("User-ID")
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"echo":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "key-123", UserID: "user-1"})

	var out struct {
		Echo string `json:"echo"`
	}
	err := c.Compute(context.Background(), "medical-parser",
		map[string]string{"text": "report body"}, &out)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if gotPath != "/v1/pipeline/compute/medical-parser" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer key-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUser != "user-1" {
		t.Errorf("User-ID = %q", gotUser)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody["text"] != "report body" {
		t.Errorf("body = %v", gotBody)
	}
	if out.Echo != "ok" {
		t.Errorf("decoded response = %+v", out)
	}
}

func TestComputeRetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err := c.Compute(context.Background(), "medical-advice", map[string]string{}, nil); err != nil {
		t.Fatalf("Compute after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestComputeNonRetryableError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad payload"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.Compute(context.Background(), "medical-parser", map[string]string{}, nil)
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (400 must not be retried)", calls)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error should identify the status: %v", err)
	}
	if !strings.Contains(err.Error(), "medical-parser") {
		t.Errorf("error should identify the pipeline: %v", err)
	}
}

func TestComputeContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.Compute(ctx, "medical-parser", map[string]string{}, nil)
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
