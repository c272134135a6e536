package status

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is how long the poller waits between cycles when no
// interval is configured.
const DefaultPollInterval = 1000 * time.Millisecond

// Poller repeatedly fetches the status endpoint and invokes OnUpdate with
// every snapshot whose canonical serialization differs from the previous
// one. The next cycle is armed only after the current one fully completes,
// so polls never overlap and the interval is time since last completion.
type Poller struct {
	Client   *Client
	Interval time.Duration
	OnUpdate func(*Snapshot)

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once

	lastDigest string
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set. Same pattern as the playback clients.
func (p *Poller) Log() *zerolog.Logger {
	if p.LogOutput != nil {
		p.initLogOnce.Do(func() {
			p.Logger = zerolog.New(p.LogOutput).With().Timestamp().Logger()
		})
	}
	return &p.Logger
}

// Run polls until ctx is cancelled. It never returns early on fetch
// failures; a failed cycle is logged and retried implicitly by the next
// tick.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	for {
		p.cycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	snap, err := p.Client.Fetch(ctx)
	if err != nil {
		p.Log().Error().Err(err).Msg("status poll failed, skipping cycle")
		return
	}

	digest := snap.Digest()
	if digest == p.lastDigest {
		return
	}
	p.lastDigest = digest

	if p.OnUpdate != nil {
		p.OnUpdate(snap)
	}
}
