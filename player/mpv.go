package player

import (
	"context"
	"fmt"
	"io"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
)

const mpvSpawnTimeout = 5 * time.Second

// MPV plays streams through a single mpv subprocess. The process is
// spawned idle once per program lifetime and reused for every stream;
// commands travel over mpv's JSON IPC socket.
type MPV struct {
	Binary     string
	SocketPath string

	Logger      zerolog.Logger
	LogOutput   io.Writer
	initLogOnce sync.Once

	mu         sync.Mutex
	cmd        *exec.Cmd
	ipc        *ipcConn
	currentURL string
	onEnd      func(string)
}

// NewMPV returns an MPV backend using the given binary ("mpv" when
// empty). Call Spawn before Start.
func NewMPV(binary string) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	return &MPV{
		Binary:     binary,
		SocketPath: defaultSocketPath(),
	}
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is
// set.
func (m *MPV) Log() *zerolog.Logger {
	if m.LogOutput != nil {
		m.initLogOnce.Do(func() {
			m.Logger = zerolog.New(m.LogOutput).With().Timestamp().Logger()
		})
	}
	return &m.Logger
}

// Spawn starts the idle mpv process and connects to its IPC socket. It is
// a no-op when the process is already running.
func (m *MPV) Spawn(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ipc != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, m.Binary,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server="+m.SocketPath,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("mpv spawn error: %w", err)
	}

	conn, err := m.waitForSocket()
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return err
	}

	m.cmd = cmd
	m.ipc = newIPCConn(conn, m.handleEvent)
	go cmd.Wait()

	m.Log().Debug().Str("Binary", m.Binary).Str("Socket", m.SocketPath).Msg("mpv spawned")
	return nil
}

// The socket appears shortly after mpv starts; retry the dial until the
// spawn timeout passes.
func (m *MPV) waitForSocket() (net.Conn, error) {
	deadline := time.Now().Add(mpvSpawnTimeout)
	for {
		conn, err := dialSocket(m.SocketPath)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("mpv ipc socket not ready: %w", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Start loads the stream URL, replacing whatever source is loaded. It
// returns once mpv has accepted the load; a source that later fails to
// open surfaces through the stream-end notification.
func (m *MPV) Start(ctx context.Context, streamURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ipc == nil {
		return fmt.Errorf("mpv start: not running")
	}

	if _, err := m.ipc.request("loadfile", streamURL, "replace"); err != nil {
		return fmt.Errorf("mpv start: %w", err)
	}

	m.currentURL = streamURL
	m.Log().Debug().Str("URL", streamURL).Msg("stream loaded")
	return nil
}

// Stop unloads the current source, fully releasing the network
// connection. Idempotent.
func (m *MPV) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ipc == nil || m.currentURL == "" {
		m.currentURL = ""
		return nil
	}

	if _, err := m.ipc.request("stop"); err != nil {
		return fmt.Errorf("mpv stop: %w", err)
	}

	m.currentURL = ""
	return nil
}

// Playing reports the currently loaded stream URL.
func (m *MPV) Playing() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentURL, m.currentURL != ""
}

// OnStreamEnd registers the natural-end callback.
func (m *MPV) OnStreamEnd(fn func(endedURL string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = fn
}

// Close quits the mpv process. The backend cannot be reused afterwards.
func (m *MPV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ipc != nil {
		m.ipc.request("quit")
		m.ipc.close()
		m.ipc = nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Kill()
		m.cmd = nil
	}
	m.currentURL = ""
	return nil
}

type mpvEvent struct {
	Event  string `mapstructure:"event"`
	Reason string `mapstructure:"reason"`
}

func (m *MPV) handleEvent(raw map[string]any) {
	var ev mpvEvent
	if err := mapstructure.Decode(raw, &ev); err != nil {
		return
	}

	if ev.Event != "end-file" {
		return
	}
	// "stop" covers explicit stops and loadfile replacements; only eof
	// and open/decode failures count as the stream ending on its own.
	if ev.Reason == "stop" || ev.Reason == "redirect" || ev.Reason == "quit" {
		return
	}

	m.mu.Lock()
	fn := m.onEnd
	url := m.currentURL
	m.mu.Unlock()

	m.Log().Debug().Str("URL", url).Str("Reason", ev.Reason).Msg("stream ended")
	if fn != nil {
		go fn(url)
	}
}
