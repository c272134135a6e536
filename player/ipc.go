package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

const (
	ipcWriteTimeout   = 5 * time.Second
	ipcRequestTimeout = 5 * time.Second
)

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type ipcResponse struct {
	Err       string `json:"error"`
	Data      any    `json:"data"`
	RequestID int    `json:"request_id"`
}

// ipcConn is a persistent connection to mpv's JSON IPC socket. Requests
// carry an incrementing id; a single reader goroutine splits the incoming
// line stream into command responses (matched to waiting callers by id)
// and asynchronous events (handed to onEvent).
type ipcConn struct {
	conn    net.Conn
	onEvent func(map[string]any)

	mu      sync.Mutex
	nextID  int
	pending map[int]chan ipcResponse
	closed  bool
}

func newIPCConn(conn net.Conn, onEvent func(map[string]any)) *ipcConn {
	c := &ipcConn{
		conn:    conn,
		onEvent: onEvent,
		nextID:  1,
		pending: make(map[int]chan ipcResponse),
	}
	go c.readLoop()
	return c
}

// request sends one command and waits for its matching response. An
// "error" field other than "success" is returned as a Go error.
func (c *ipcConn) request(command ...any) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("ipc request: connection closed")
	}

	id := c.nextID
	c.nextID++
	ch := make(chan ipcResponse, 1)
	c.pending[id] = ch

	data, err := json.Marshal(ipcRequest{Command: command, RequestID: id})
	if err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("ipc request marshal error: %w", err)
	}
	data = append(data, '\n')

	if err := c.conn.SetWriteDeadline(time.Now().Add(ipcWriteTimeout)); err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("ipc request deadline error: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("ipc request write error: %w", err)
	}
	c.mu.Unlock()

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("ipc request: connection closed")
		}
		if resp.Err != "" && resp.Err != "success" {
			return nil, fmt.Errorf("ipc request: mpv replied %q", resp.Err)
		}
		return resp.Data, nil
	case <-time.After(ipcRequestTimeout):
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("ipc request: timed out waiting for response")
	}
}

func (c *ipcConn) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}

		if _, ok := raw["event"]; ok {
			if c.onEvent != nil {
				c.onEvent(raw)
			}
			continue
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.RequestID]
		if ok {
			delete(c.pending, resp.RequestID)
		}
		c.mu.Unlock()

		if ok {
			ch <- resp
		}
	}

	c.close()
}

// close marks the connection dead and releases every waiting caller.
func (c *ipcConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.conn.Close()

	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
