package interactive

import (
	"github.com/icewatch/icewatch/player"
	"github.com/icewatch/icewatch/status"
)

// row is one rendered mount entry. Rows are rebuilt wholesale from the
// latest snapshot on every draw; nothing is diffed or retained.
type row struct {
	Path       string
	Status     string
	Listeners  int
	NowPlaying string
	StreamURL  string
	Label      string
	Selected   bool
}

// buildRows derives the full row set for a snapshot. The label of each
// row reflects live playback state: the row whose derived URL matches
// the playing stream reads "Stop", every other row reads "Play".
func buildRows(snap *status.Snapshot, origin string, selected int, playingURL string) []row {
	if snap == nil {
		return nil
	}

	rows := make([]row, 0, len(snap.Mounts))
	for i, m := range snap.Mounts {
		url := status.StreamURL(origin, m.Path)
		label := player.LabelPlay
		if playingURL != "" && url == playingURL {
			label = player.LabelStop
		}
		rows = append(rows, row{
			Path:       m.Path,
			Status:     m.Status,
			Listeners:  m.Listeners,
			NowPlaying: m.NowPlaying,
			StreamURL:  url,
			Label:      label,
			Selected:   i == selected,
		})
	}
	return rows
}

// moveSelection shifts the selection by delta with wraparound against
// the current rendered count.
func moveSelection(current, delta, count int) int {
	if count <= 0 {
		return 0
	}
	next := (current + delta) % count
	if next < 0 {
		next += count
	}
	return next
}

// clampSelection pulls the selection back in range after the mount
// count shrank between polls.
func clampSelection(current, count int) int {
	if count <= 0 {
		return 0
	}
	if current >= count {
		return count - 1
	}
	if current < 0 {
		return 0
	}
	return current
}
