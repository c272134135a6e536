package status

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProbeMountDetectsAudio(t *testing.T) {
	// Minimal MP3 head: ID3v2 tag magic followed by padding.
	head := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0}, 300)...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(head)
	}))
	t.Cleanup(srv.Close)

	res, err := ProbeMount(context.Background(), srv.URL+"/stream")
	if err != nil {
		t.Fatalf("ProbeMount() err = %v, want nil", err)
	}
	if !res.IsAudio {
		t.Error("IsAudio = false, want true for an ID3-tagged stream")
	}
	if res.MIME != "audio/mpeg" {
		t.Errorf("MIME = %q, want %q", res.MIME, "audio/mpeg")
	}
}

func TestProbeMountFallsBackToContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/aacp")
		// Mid-stream payload with no container magic filetype knows about.
		w.Write(bytes.Repeat([]byte{0x11, 0x22}, 200))
	}))
	t.Cleanup(srv.Close)

	res, err := ProbeMount(context.Background(), srv.URL+"/stream")
	if err != nil {
		t.Fatalf("ProbeMount() err = %v, want nil", err)
	}
	if res.MIME != "audio/aacp" {
		t.Errorf("MIME = %q, want the announced content type", res.MIME)
	}
}

func TestProbeMountErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	if _, err := ProbeMount(context.Background(), srv.URL+"/gone"); err == nil {
		t.Fatal("ProbeMount() err = nil, want error for 404 mount")
	}
}
