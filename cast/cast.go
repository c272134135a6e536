// Package cast plays relay streams on a Chromecast device. It implements
// the same backend contract as the local mpv player, so the playback
// session does not care where the sound comes out.
package cast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vishen/go-chromecast/application"
	castconn "github.com/vishen/go-chromecast/cast"
)

const (
	defaultPort       = 8009
	connectionRetries = 5
	// Radio mounts are live streams without reliable magic bytes; the
	// receiver copes fine when we announce plain MPEG audio.
	defaultContentType = "audio/mpeg"
	// How often the watcher polls the receiver for an idle player while
	// a stream is supposed to be playing.
	watchInterval = 5 * time.Second
)

// Client wraps a go-chromecast application for stream playback.
type Client struct {
	app  *application.Application
	conn castconn.Conn
	host string
	port int

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once

	mu         sync.Mutex
	connected  bool
	currentURL string
	onEnd      func(string)
	watchStop  chan struct{}
}

// NewClient returns a Client for the device at addr ("host" or
// "host:port").
func NewClient(addr string) (*Client, error) {
	host, portStr, err := net.SplitHostPort(addr)
	port := defaultPort
	if err != nil {
		host = addr
	} else if portStr != "" {
		if _, perr := fmt.Sscanf(portStr, "%d", &port); perr != nil {
			return nil, fmt.Errorf("cast: bad device port %q", portStr)
		}
	}
	if host == "" {
		return nil, errors.New("cast: empty device address")
	}

	conn := castconn.NewConnection()
	app := application.NewApplication(
		application.WithConnection(conn),
		application.WithConnectionRetries(connectionRetries),
	)

	return &Client{
		app:  app,
		conn: conn,
		host: host,
		port: port,
	}, nil
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (c *Client) Log() *zerolog.Logger {
	if c.LogOutput != nil {
		c.initLogOnce.Do(func() {
			c.Logger = zerolog.New(c.LogOutput).With().Timestamp().Logger()
		})
	}
	return &c.Logger
}

// Connect establishes the device connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Log().Debug().Str("Method", "Connect").Str("Host", c.host).Int("Port", c.port).Msg("connecting")
	if err := c.app.Start(c.host, c.port); err != nil {
		c.Log().Error().Str("Method", "Connect").Err(err).Msg("connection failed")
		return fmt.Errorf("cast connect: %w", err)
	}
	c.connected = true
	return nil
}

// Start loads the stream URL on the device. Live streams load with
// autoplay; the load call returning without error is the confirmed
// start.
func (c *Client) Start(ctx context.Context, streamURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		if err := c.app.Start(c.host, c.port); err != nil {
			return fmt.Errorf("cast reconnect before load: %w", err)
		}
		c.connected = true
	}

	c.Log().Debug().Str("Method", "Start").Str("URL", streamURL).Msg("loading stream")
	if err := c.app.Load(streamURL, 0, defaultContentType, false, false, false); err != nil {
		c.Log().Error().Str("Method", "Start").Err(err).Msg("load failed")
		return fmt.Errorf("cast load: %w", err)
	}

	c.currentURL = streamURL
	c.startWatcherLocked()
	return nil
}

// Stop halts playback and clears the loaded source. Idempotent.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopWatcherLocked()
	if c.currentURL == "" {
		return nil
	}
	c.currentURL = ""

	c.Log().Debug().Str("Method", "Stop").Msg("stopping playback")
	if err := c.app.Stop(); err != nil {
		c.Log().Error().Str("Method", "Stop").Err(err).Msg("failed")
		return fmt.Errorf("cast stop: %w", err)
	}
	return nil
}

// Playing reports the currently loaded stream URL.
func (c *Client) Playing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentURL, c.currentURL != ""
}

// OnStreamEnd registers the natural-end callback.
func (c *Client) OnStreamEnd(fn func(endedURL string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnd = fn
}

// Close tears down the device connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopWatcherLocked()
	c.currentURL = ""
	c.connected = false
	return c.app.Close(false)
}

// The receiver reports no push notification we can rely on for a dropped
// source, so while a stream is loaded we poll its player state and treat
// a return to IDLE as the stream ending on its own.
func (c *Client) startWatcherLocked() {
	c.stopWatcherLocked()
	stop := make(chan struct{})
	c.watchStop = stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(watchInterval):
			}

			if url, idle := c.idleWhilePlaying(); idle {
				c.mu.Lock()
				fn := c.onEnd
				c.mu.Unlock()

				c.Log().Debug().Str("Method", "watcher").Str("URL", url).Msg("receiver went idle, stream ended")
				if fn != nil {
					fn(url)
				}
				return
			}
		}
	}()
}

func (c *Client) stopWatcherLocked() {
	if c.watchStop != nil {
		close(c.watchStop)
		c.watchStop = nil
	}
}

func (c *Client) idleWhilePlaying() (string, bool) {
	c.mu.Lock()
	url := c.currentURL
	c.mu.Unlock()
	if url == "" {
		return "", false
	}

	if err := c.app.Update(); err != nil {
		return "", false
	}
	_, media, _ := c.app.Status()
	if media == nil {
		return url, true
	}
	return url, media.PlayerState == "IDLE"
}
