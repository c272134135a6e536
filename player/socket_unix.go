//go:build !windows
// +build !windows

package player

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

func defaultSocketPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("icewatch-mpv-%d.sock", os.Getpid()))
}

func dialSocket(path string) (net.Conn, error) {
	return net.DialTimeout("unix", path, time.Second)
}
