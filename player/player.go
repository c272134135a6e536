// Package player owns stream playback: the backends that produce sound
// (local mpv, Chromecast) and the session that guarantees at most one
// stream plays at a time.
package player

import "context"

// Label captions for the play/stop toggle shown next to a mount.
const (
	LabelPlay = "Play"
	LabelStop = "Stop"
)

// Player is a playback backend. One backend instance lives for the whole
// program and is reused for every stream; Start replaces whatever source
// is loaded, Stop fully releases it.
type Player interface {
	Start(ctx context.Context, streamURL string) error
	Stop() error
	Playing() (streamURL string, ok bool)

	// OnStreamEnd registers the callback fired when a stream ends on its
	// own, which is rare for live mounts but happens when a source drops.
	// The callback receives the URL of the stream that ended so a late
	// notification cannot be mistaken for the currently playing one.
	OnStreamEnd(fn func(endedURL string))
}

// LabelSetter is the UI handle whose caption mirrors playback state.
// Both front ends implement it for their mount rows.
type LabelSetter interface {
	SetLabel(text string)
}
