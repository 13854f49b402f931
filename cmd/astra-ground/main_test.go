package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleSnapshot = `{"history":[],"packet_log":[],"summary":{"max_altitude":812.5,"max_velocity":90,"current_altitude":640,"current_velocity":-12.5,"flight_time":41},"mission":{"flight_stage":"Descent","recovery_status":"Armed"},"signal_strength":[true,true,false,false],"ingested":41}`

func TestFormatStatus(t *testing.T) {
	got := formatStatus([]byte(sampleSnapshot))
	for _, want := range []string{"t=41.0s", "stage=Descent", "recovery=Armed", "alt=640.0m", "vel=-12.5m/s", "max_alt=812.5m", "signal=||..", "samples=41"} {
		if !strings.Contains(got, want) {
			t.Fatalf("status %q missing %q", got, want)
		}
	}
}

func TestStatusOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSnapshot))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := statusCommand([]string{"--url", srv.URL, "--once"}, &out); err != nil {
		t.Fatalf("statusCommand returned error: %v", err)
	}
	if !strings.Contains(out.String(), "stage=Descent") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestStatusRejectsBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := statusCommand([]string{"--url", srv.URL, "--once"}, &out); err == nil {
		t.Fatalf("expected invalid snapshot to fail")
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := parseLevel("debug"); err != nil {
		t.Fatalf("parseLevel(debug) returned error: %v", err)
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}
