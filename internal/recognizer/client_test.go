package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/raaihank/clip-sentinel/internal/patterns"
)

// fakeService mimics a recognition service that knows one text
func fakeService(t *testing.T, token string) *httptest.Server {
	t.Helper()

	number := 435345435434.0
	known := map[string]*patterns.Snapshot{
		"435345435434": {Number: &number, ProbableWebSearch: "435345435434"},
	}

	decode := func(w http.ResponseWriter, r *http.Request) (request, bool) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return request{}, false
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return request{}, false
		}
		return req, true
	}

	r := mux.NewRouter()
	r.HandleFunc(patternsPath, func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		found := []patterns.Key{}
		if snap, ok := known[req.Text]; ok {
			have := patterns.KindsFromKeys(snap.Keys())
			for _, k := range req.Kinds {
				if kind, ok := patterns.KindForKey(k); ok && have.Contains(kind) {
					found = append(found, k)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(patternsResponse{Kinds: found})
	}).Methods("POST")
	r.HandleFunc(valuesPath, func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r)
		if !ok {
			return
		}
		snap := known[req.Text]
		if snap == nil {
			snap = &patterns.Snapshot{}
		}
		_ = json.NewEncoder(w).Encode(snap)
	}).Methods("POST")
	r.HandleFunc("/v1/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	srv := fakeService(t, "s3cret")

	client, err := New(Config{Endpoint: srv.URL + "/", Token: "s3cret", Timeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	t.Run("Patterns", func(t *testing.T) {
		keys, err := client.Patterns(ctx, "435345435434", []patterns.Key{"number", "phone_numbers", "probable_web_search"})
		if err != nil {
			t.Fatalf("Patterns failed: %v", err)
		}
		if diff := cmp.Diff([]patterns.Key{"number", "probable_web_search"}, keys); diff != "" {
			t.Errorf("Unexpected keys (-want +got):\n%s", diff)
		}
	})

	t.Run("Values", func(t *testing.T) {
		snap, err := client.Values(ctx, "435345435434", []patterns.Key{"number"})
		if err != nil {
			t.Fatalf("Values failed: %v", err)
		}
		d, ok := snap.Detection(patterns.Number)
		if !ok || *d.(patterns.NumberDetection).Value != 435345435434 {
			t.Errorf("Unexpected number detection: %v", d)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		keys, err := client.Patterns(ctx, "something else", nil)
		if err != nil {
			t.Fatalf("Patterns failed: %v", err)
		}
		if len(keys) != 0 {
			t.Errorf("Expected no keys, got %v", keys)
		}
	})
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	srv := fakeService(t, "s3cret")

	t.Run("MissingEndpoint", func(t *testing.T) {
		if _, err := New(Config{}, nil); err == nil {
			t.Error("Expected error for empty endpoint")
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		client, _ := New(Config{Endpoint: srv.URL, Timeout: time.Second}, nil)
		_, err := client.Patterns(ctx, "435345435434", []patterns.Key{"number"})
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401 StatusError, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		client, _ := New(Config{Endpoint: srv.URL, Token: "s3cret", Timeout: time.Second}, nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := client.Values(cctx, "435345435434", []patterns.Key{"number"}); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		client, _ := New(Config{Endpoint: srv.URL, Token: "s3cret", Timeout: 20 * time.Millisecond}, nil)
		var out patternsResponse
		if err := client.post(ctx, "/v1/slow", request{Text: "x"}, &out); err == nil {
			t.Error("Expected timeout error")
		}
	})
}
