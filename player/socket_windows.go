//go:build windows
// +build windows

package player

import (
	"errors"
	"net"
)

func defaultSocketPath() string {
	return `\\.\pipe\icewatch-mpv`
}

// mpv on Windows exposes its IPC server as a named pipe, which net.Dial
// cannot open. Local playback is unavailable there; casting with -t
// works everywhere.
func dialSocket(path string) (net.Conn, error) {
	return nil, errors.New("mpv ipc over named pipes is not supported on windows, use -t to cast instead")
}
