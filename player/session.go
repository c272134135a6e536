package player

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Session is the playback controller shared by both front ends. It holds
// the single Player plus the currently active label, and moves between
// two states: Idle and Playing(url, label).
//
// The label is flipped to "Stop" only after the backend confirms the
// start, so a rejected play attempt can never leave a stale "Stop"
// caption behind.
type Session struct {
	player Player

	mu          sync.Mutex
	activeURL   string
	activeLabel LabelSetter

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once
}

// NewSession wraps a Player. The session subscribes to the backend's
// stream-end notification so a source drop resets the active label.
func NewSession(p Player) *Session {
	s := &Session{player: p}
	p.OnStreamEnd(s.HandleStreamEnd)
	return s
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (s *Session) Log() *zerolog.Logger {
	if s.LogOutput != nil {
		s.initLogOnce.Do(func() {
			s.Logger = zerolog.New(s.LogOutput).With().Timestamp().Logger()
		})
	}
	return &s.Logger
}

// Toggle stops the stream if url is the one currently playing, otherwise
// stops whatever plays and starts url.
func (s *Session) Toggle(ctx context.Context, url string, label LabelSetter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if url != "" && s.activeURL == url {
		s.stopLocked()
		return
	}
	s.startLocked(ctx, url, label)
}

// Start begins playback of url and records label as the active one. An
// empty url is logged and ignored. Playback rejection is absorbed here:
// it is logged, the label is reset to "Play" and the session stays Idle.
func (s *Session) Start(ctx context.Context, url string, label LabelSetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked(ctx, url, label)
}

// Stop halts playback, resets the active label to "Play" and clears the
// record. Safe to call with nothing playing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Current returns the URL of the stream the session considers playing.
func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeURL, s.activeURL != ""
}

// Rebind replaces the active label handle after a front end rebuilt its
// rows. It reports whether url is the playing stream; if so the new
// label is captioned "Stop" and tracked from now on.
func (s *Session) Rebind(url string, label LabelSetter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if url == "" || s.activeURL != url {
		return false
	}
	s.activeLabel = label
	label.SetLabel(LabelStop)
	return true
}

// SwitchPlayer swaps the playback backend, stopping any active stream on
// the old one first. The new backend's stream-end notification is routed
// to this session; closing the old backend is the caller's job.
func (s *Session) SwitchPlayer(p Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeURL != "" {
		s.stopLocked()
	}
	s.player = p
	p.OnStreamEnd(s.HandleStreamEnd)
}

// HandleStreamEnd is invoked when a stream ends on its own. Only the
// label is reset; the backend's source is left alone, unlike an explicit
// Stop. A notification for a stream that is no longer the active one
// (an end queued just before a new Start, or a backend switch) is
// ignored so it cannot reset the fresh stream's state.
func (s *Session) HandleStreamEnd(endedURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeURL == "" || endedURL != s.activeURL {
		s.Log().Debug().Str("URL", endedURL).Msg("ignoring stream end for an inactive stream")
		return
	}

	s.Log().Debug().Str("URL", s.activeURL).Msg("stream ended on its own")
	s.resetLabelLocked()
	s.activeURL = ""
}

func (s *Session) startLocked(ctx context.Context, url string, label LabelSetter) {
	if url == "" {
		s.Log().Warn().Msg("refusing to start playback of an empty stream URL")
		return
	}

	if s.activeURL != "" {
		s.stopLocked()
	}

	if err := s.player.Start(ctx, url); err != nil {
		s.Log().Error().Err(err).Str("URL", url).Msg("playback start rejected")
		if label != nil {
			label.SetLabel(LabelPlay)
		}
		return
	}

	s.activeURL = url
	s.activeLabel = label
	if label != nil {
		label.SetLabel(LabelStop)
	}
	s.Log().Debug().Str("URL", url).Msg("playback started")
}

func (s *Session) stopLocked() {
	if err := s.player.Stop(); err != nil {
		s.Log().Error().Err(err).Msg("playback stop failed")
	}
	s.resetLabelLocked()
	s.activeURL = ""
}

func (s *Session) resetLabelLocked() {
	if s.activeLabel != nil {
		s.activeLabel.SetLabel(LabelPlay)
		s.activeLabel = nil
	}
}
