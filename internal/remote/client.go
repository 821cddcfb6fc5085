package remote

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client sends control commands to a running player.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient creates a client for the control socket at the given path.
func NewClient(socketPath string) *Client {
	return &Client{path: socketPath, timeout: 5 * time.Second}
}

// Do sends one command and returns the decoded reply. Transport
// failures come back as errors; command failures come back in
// Response.Error with a nil error.
func (c *Client) Do(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return Response{}, fmt.Errorf("failed to reach player (is it running?): %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeFrame(conn, opCommand, req); err != nil {
		return Response{}, fmt.Errorf("failed to send command: %w", err)
	}

	opcode, payload, err := readFrame(conn)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read reply: %w", err)
	}
	if opcode != opReply {
		return Response{}, fmt.Errorf("unexpected opcode %d in reply", opcode)
	}

	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode reply: %w", err)
	}
	return resp, nil
}

// Status fetches the current player state.
func (c *Client) Status() (*StateInfo, error) {
	resp, err := c.Do(Request{Command: CmdStatus})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("status failed: %s", resp.Error)
	}
	return resp.State, nil
}
