package status

import "testing"

func TestParseSnapshotSingleMount(t *testing.T) {
	body := []byte(`{
		"total_listener_count": 5,
		"total_source_count": 1,
		"mounts": {
			"/stream": {
				"status": "up",
				"listener_count": 5,
				"metadata": {"now_playing": "Song A"}
			}
		}
	}`)

	snap, err := ParseSnapshot(body)
	if err != nil {
		t.Fatalf("ParseSnapshot() err = %v, want nil", err)
	}

	if snap.TotalListeners != 5 {
		t.Errorf("TotalListeners = %d, want 5", snap.TotalListeners)
	}
	if snap.TotalSources != 1 {
		t.Errorf("TotalSources = %d, want 1", snap.TotalSources)
	}
	if len(snap.Mounts) != 1 {
		t.Fatalf("len(Mounts) = %d, want 1", len(snap.Mounts))
	}

	m := snap.Mounts[0]
	if m.Path != "/stream" {
		t.Errorf("Path = %q, want %q", m.Path, "/stream")
	}
	if m.Status != "up" {
		t.Errorf("Status = %q, want %q", m.Status, "up")
	}
	if m.Listeners != 5 {
		t.Errorf("Listeners = %d, want 5", m.Listeners)
	}
	if m.NowPlaying != "Song A" {
		t.Errorf("NowPlaying = %q, want %q", m.NowPlaying, "Song A")
	}
}

func TestParseSnapshotDefaults(t *testing.T) {
	body := []byte(`{"mounts": {"/a": {}}}`)

	snap, err := ParseSnapshot(body)
	if err != nil {
		t.Fatalf("ParseSnapshot() err = %v, want nil", err)
	}

	if snap.TotalListeners != 0 || snap.TotalSources != 0 {
		t.Errorf("totals = %d/%d, want 0/0", snap.TotalListeners, snap.TotalSources)
	}

	m := snap.Mounts[0]
	if m.Status != "Unknown" {
		t.Errorf("Status = %q, want %q", m.Status, "Unknown")
	}
	if m.Listeners != 0 {
		t.Errorf("Listeners = %d, want 0", m.Listeners)
	}
	if m.NowPlaying != "N/A" {
		t.Errorf("NowPlaying = %q, want %q", m.NowPlaying, "N/A")
	}
}

func TestParseSnapshotMountOrder(t *testing.T) {
	body := []byte(`{"mounts": {"/z": {}, "/a": {}, "/m": {}}}`)

	snap, err := ParseSnapshot(body)
	if err != nil {
		t.Fatalf("ParseSnapshot() err = %v, want nil", err)
	}

	want := []string{"/z", "/a", "/m"}
	if len(snap.Mounts) != len(want) {
		t.Fatalf("len(Mounts) = %d, want %d", len(snap.Mounts), len(want))
	}
	for i, path := range want {
		if snap.Mounts[i].Path != path {
			t.Errorf("Mounts[%d].Path = %q, want %q (document order must be preserved)", i, snap.Mounts[i].Path, path)
		}
	}
}

func TestParseSnapshotErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "garbage body", body: `<html>offline</html>`},
		{name: "missing mounts", body: `{"total_listener_count": 3}`},
		{name: "mounts not an object", body: `{"mounts": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSnapshot([]byte(tt.body)); err == nil {
				t.Fatalf("ParseSnapshot(%q) err = nil, want error", tt.body)
			}
		})
	}
}

func TestParseSnapshotEmptyMounts(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{"mounts": {}}`))
	if err != nil {
		t.Fatalf("ParseSnapshot() err = %v, want nil", err)
	}
	if len(snap.Mounts) != 0 {
		t.Fatalf("len(Mounts) = %d, want 0", len(snap.Mounts))
	}
}

func TestDigestStability(t *testing.T) {
	a := &Snapshot{TotalListeners: 5, Mounts: []Mount{{Path: "/stream"}}}
	b := &Snapshot{TotalListeners: 5, Mounts: []Mount{{Path: "/stream"}}}
	c := &Snapshot{TotalListeners: 6, Mounts: []Mount{{Path: "/stream"}}}

	if a.Digest() != b.Digest() {
		t.Error("identical snapshots produced different digests")
	}
	if a.Digest() == c.Digest() {
		t.Error("different snapshots produced the same digest")
	}
}

func TestStreamURL(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		path   string
		want   string
	}{
		{
			name:   "plain join",
			origin: "https://relay.example.com",
			path:   "/stream",
			want:   "https://relay.example.com/stream",
		},
		{
			name:   "origin with trailing slash",
			origin: "https://relay.example.com/",
			path:   "/stream",
			want:   "https://relay.example.com/stream",
		},
		{
			name:   "path without leading slash",
			origin: "https://relay.example.com",
			path:   "stream",
			want:   "https://relay.example.com/stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StreamURL(tt.origin, tt.path); got != tt.want {
				t.Fatalf("StreamURL(%q, %q) = %q, want %q", tt.origin, tt.path, got, tt.want)
			}
		})
	}
}
