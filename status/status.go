// Package status models the health-check endpoint of an internet radio
// relay: fetching the status document, parsing it into snapshots and
// polling it for changes.
package status

import (
	"encoding/json"
	"strings"
)

// MountInfo holds the per-mount statistics reported by the relay.
type MountInfo struct {
	Status     string `json:"status"`
	Listeners  int    `json:"listeners"`
	NowPlaying string `json:"now_playing"`
}

// Mount is a single stream endpoint, identified by its path.
type Mount struct {
	Path string `json:"path"`
	MountInfo
}

// Snapshot is one full report from the relay. Mounts keeps the order in
// which the server delivered them. A snapshot is immutable once parsed
// and is superseded wholesale by the next poll.
type Snapshot struct {
	TotalListeners int     `json:"total_listeners"`
	TotalSources   int     `json:"total_sources"`
	Mounts         []Mount `json:"mounts"`
}

// Digest returns a canonical serialization of the snapshot. Two snapshots
// with the same digest render identically, so the poller uses it to
// suppress redundant updates.
func (s *Snapshot) Digest() string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}

// StreamURL derives the playable media URL for a mount path from the
// relay's stream origin.
func StreamURL(origin, mountPath string) string {
	origin = strings.TrimSuffix(origin, "/")
	if !strings.HasPrefix(mountPath, "/") {
		mountPath = "/" + mountPath
	}
	return origin + mountPath
}
