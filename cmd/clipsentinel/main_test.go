package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/raaihank/clip-sentinel/internal/patterns"
)

// recognizerStub serves a fixed snapshot for one known text
func recognizerStub(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()

	number := 435345435434.0
	known := map[string]*patterns.Snapshot{
		"435345435434": {
			Number:            &number,
			PhoneNumbers:      []patterns.PhoneNumber{{MatchedString: "435345435434", Number: "435345435434"}},
			ProbableWebSearch: "435345435434",
		},
	}

	type body struct {
		Text  string         `json:"text"`
		Kinds []patterns.Key `json:"kinds"`
	}

	r := mux.NewRouter()
	r.HandleFunc("/v1/patterns", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req body
		_ = json.NewDecoder(r.Body).Decode(&req)

		found := []patterns.Key{}
		if snap, ok := known[req.Text]; ok {
			have := patterns.KindsFromKeys(snap.Keys())
			for _, k := range req.Kinds {
				if kind, ok := patterns.KindForKey(k); ok && have.Contains(kind) {
					found = append(found, k)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(map[string][]patterns.Key{"kinds": found})
	}).Methods("POST")
	r.HandleFunc("/v1/values", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req body
		_ = json.NewDecoder(r.Body).Decode(&req)

		snap := known[req.Text]
		if snap == nil {
			snap = &patterns.Snapshot{}
		}
		_ = json.NewEncoder(w).Encode(snap)
	}).Methods("POST")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	var calls int32
	stub := recognizerStub(t, &calls)
	t.Setenv("CLIPSENTINEL_RECOGNIZER_ENDPOINT", stub.URL)
	t.Setenv("CLIPSENTINEL_LOGGING_LEVEL", "error")

	cases := []struct {
		name     string
		args     []string
		exit     int
		contains string
	}{
		{"Version", []string{"-version"}, exitDetected, "clip-sentinel"},
		{"DefaultPreset", []string{"-text", "435345435434"}, exitDetected, `"kind": "number"`},
		{"NamedPreset", []string{"-preset", "phone", "-text", "435345435434"}, exitNone, `"detected": false`},
		{"WantTolerate", []string{"-want", "phoneNumbers", "-tolerate", "number,probableWebSearch", "-text", "435345435434"}, exitDetected, `"kind": "phoneNumbers"`},
		{"Suppressed", []string{"-want", "number", "-text", "435345435434"}, exitNone, `"detections": []`},
		{"UnknownText", []string{"-preset", "number", "-text", "hello"}, exitNone, `"detected": false`},
		{"UnknownKind", []string{"-want", "faxNumbers", "-text", "435345435434"}, exitError, ""},
		{"UnknownPreset", []string{"-preset", "fax", "-text", "435345435434"}, exitError, ""},
		{"ConflictingFlags", []string{"-preset", "number", "-want", "number"}, exitError, ""},
		{"BadFlag", []string{"-nope"}, exitError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tc.args, &stdout, &stderr); code != tc.exit {
				t.Fatalf("Expected exit %d, got %d (stderr: %s)", tc.exit, code, stderr.String())
			}
			if tc.contains != "" && !strings.Contains(stdout.String(), tc.contains) {
				t.Errorf("Expected output containing %q, got %s", tc.contains, stdout.String())
			}
		})
	}
}

func TestRunEmptyTextSkipsRecognizer(t *testing.T) {
	var calls int32
	stub := recognizerStub(t, &calls)
	t.Setenv("CLIPSENTINEL_RECOGNIZER_ENDPOINT", stub.URL)
	t.Setenv("CLIPSENTINEL_LOGGING_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-text", "   "}, &stdout, &stderr); code != exitNone {
		t.Fatalf("Expected exit %d, got %d", exitNone, code)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("Expected no recognizer calls, got %d", n)
	}
}
