// Package remote implements the player's control socket: a unix domain
// socket carrying framed JSON commands. The ctl and status commands use
// it to drive and inspect a running player without touching its
// terminal.
package remote

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Control socket opcodes.
const (
	opCommand = 0
	opReply   = 1
)

// maxPayload bounds a frame body. Control messages are tiny; anything
// bigger is a protocol violation.
const maxPayload = 1 << 20

// Command names accepted by the server.
const (
	CmdStatus    = "status"
	CmdPlayPause = "play_pause"
	CmdStop      = "stop"
	CmdSpeedUp   = "speed_up"
	CmdSpeedDown = "speed_down"
	CmdAdvance   = "advance"
	CmdSelect    = "select"
	CmdMode      = "mode"
	CmdCapture   = "capture"
)

// Request is one control command.
type Request struct {
	Command string `json:"command"`
	Path    string `json:"path,omitempty"`   // select: song file path
	Mode    string `json:"mode,omitempty"`   // mode: "auto" or "manual"
	Action  string `json:"action,omitempty"` // capture: action name
}

// Response carries the command outcome and the resulting player state.
type Response struct {
	OK    bool       `json:"ok"`
	Error string     `json:"error,omitempty"`
	State *StateInfo `json:"state,omitempty"`
}

// StateInfo is the wire form of a player snapshot.
type StateInfo struct {
	Song        string            `json:"song"`
	Path        string            `json:"path"`
	Mode        string            `json:"mode"`
	Status      string            `json:"status"`
	Speed       float64           `json:"speed"`
	Progress    int               `json:"progress"`
	Total       int               `json:"total"`
	Manual      bool              `json:"manual"`
	ManualIndex int               `json:"manual_index"`
	Bindings    map[string]string `json:"bindings,omitempty"`
}

// writeFrame sends a control frame: [opcode LE u32][length LE u32][JSON payload].
func writeFrame(w io.Writer, opcode uint32, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], opcode)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// readFrame reads one control frame, allocating a buffer of the exact
// size declared in the header.
func readFrame(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	opcode := binary.LittleEndian.Uint32(header[0:4])
	length := binary.LittleEndian.Uint32(header[4:8])

	if length > maxPayload {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return opcode, payload, nil
}
