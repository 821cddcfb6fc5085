package remote

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/keyplay/internal/player"
)

func TestFrameRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	want := Request{Command: CmdSelect, Path: "/songs/demo.json"}

	go func() {
		if err := writeFrame(client, opCommand, want); err != nil {
			t.Errorf("writeFrame failed: %v", err)
		}
	}()

	opcode, payload, err := readFrame(server)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if opcode != opCommand {
		t.Errorf("expected opcode %d, got %d", opCommand, opcode)
	}

	var got Request
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if got != want {
		t.Errorf("expected request %+v, got %+v", want, got)
	}
}

func TestReadFrameLargePayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	// A payload well past any fixed read buffer size must still arrive
	// intact.
	want := Response{OK: true, State: &StateInfo{Status: strings.Repeat("x", 4096)}}

	go func() {
		if err := writeFrame(client, opReply, want); err != nil {
			t.Errorf("writeFrame failed: %v", err)
		}
	}()

	opcode, payload, err := readFrame(server)
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if opcode != opReply {
		t.Errorf("expected opcode %d, got %d", opReply, opcode)
	}

	var got Response
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("failed to unmarshal payload: %v", err)
	}
	if got.State == nil || got.State.Status != want.State.Status {
		t.Error("large payload did not survive the round trip")
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		header := make([]byte, 8)
		binary.LittleEndian.PutUint32(header[0:4], opCommand)
		binary.LittleEndian.PutUint32(header[4:8], maxPayload+1)
		if _, err := client.Write(header); err != nil {
			t.Errorf("failed to write header: %v", err)
		}
	}()

	if _, _, err := readFrame(server); err == nil {
		t.Error("expected an error for an oversized frame, got nil")
	}
}

type fakeCommands struct {
	mu         sync.Mutex
	snap       player.Snapshot
	plays      int
	stops      int
	speedUps   int
	speedDowns int
	advances   int
	selected   []string
	manual     []bool
	captured   []player.Action
	playErr    error
	selectErr  error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		snap: player.Snapshot{
			SongName: "Melody",
			SongPath: "/songs/melody.json",
			Speed:    1.2,
			Mode:     player.ModePlaying,
			Progress: 3,
			Total:    10,
			Status:   "Playing...",
			Bindings: player.DefaultBindings(),
		},
	}
}

func (f *fakeCommands) Snapshot() player.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeCommands) PlayPause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	return f.playErr
}

func (f *fakeCommands) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeCommands) SpeedUp() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speedUps++
	return f.snap.Speed
}

func (f *fakeCommands) SpeedDown() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speedDowns++
	return f.snap.Speed
}

func (f *fakeCommands) Advance() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advances++
}

func (f *fakeCommands) Select(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, path)
	return f.selectErr
}

func (f *fakeCommands) SetManual(manual bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manual = append(f.manual, manual)
}

func (f *fakeCommands) RequestCapture(action player.Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured = append(f.captured, action)
}

// startTestServer runs a control server on a socket under a temp
// directory and returns a client wired to it.
func startTestServer(t *testing.T, commands Commands) *Client {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "ctl.sock")
	server := NewServer(commands, socketPath, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("server exited with error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for control socket to appear")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return NewClient(socketPath)
}

func TestServerStatus(t *testing.T) {
	commands := newFakeCommands()
	client := startTestServer(t, commands)

	state, err := client.Status()
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if state.Song != "Melody" {
		t.Errorf("expected song %q, got %q", "Melody", state.Song)
	}
	if state.Mode != "playing" {
		t.Errorf("expected mode %q, got %q", "playing", state.Mode)
	}
	if state.Speed != 1.2 {
		t.Errorf("expected speed 1.2, got %v", state.Speed)
	}
	if state.Progress != 3 || state.Total != 10 {
		t.Errorf("expected progress 3/10, got %d/%d", state.Progress, state.Total)
	}
	if got := state.Bindings[player.ActionPlayPause.String()]; got != "space" {
		t.Errorf("expected play-pause binding %q, got %q", "space", got)
	}
}

func TestServerDispatch(t *testing.T) {
	commands := newFakeCommands()
	client := startTestServer(t, commands)

	for _, cmd := range []string{CmdPlayPause, CmdStop, CmdSpeedUp, CmdSpeedDown, CmdAdvance} {
		resp, err := client.Do(Request{Command: cmd})
		if err != nil {
			t.Fatalf("command %q failed: %v", cmd, err)
		}
		if !resp.OK {
			t.Errorf("command %q returned error: %s", cmd, resp.Error)
		}
		if resp.State == nil {
			t.Errorf("command %q returned no state", cmd)
		}
	}

	commands.mu.Lock()
	defer commands.mu.Unlock()
	if commands.plays != 1 || commands.stops != 1 || commands.speedUps != 1 ||
		commands.speedDowns != 1 || commands.advances != 1 {
		t.Errorf("unexpected dispatch counts: %+v", commands)
	}
}

func TestServerSelect(t *testing.T) {
	commands := newFakeCommands()
	client := startTestServer(t, commands)

	resp, err := client.Do(Request{Command: CmdSelect, Path: "/songs/etude.json"})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if !resp.OK {
		t.Errorf("select returned error: %s", resp.Error)
	}

	resp, err = client.Do(Request{Command: CmdSelect})
	if err != nil {
		t.Fatalf("select without path failed at transport level: %v", err)
	}
	if resp.OK || resp.Error == "" {
		t.Error("expected an error for select without a path")
	}

	commands.mu.Lock()
	defer commands.mu.Unlock()
	if len(commands.selected) != 1 || commands.selected[0] != "/songs/etude.json" {
		t.Errorf("expected one select of /songs/etude.json, got %v", commands.selected)
	}
}

func TestServerMode(t *testing.T) {
	commands := newFakeCommands()
	client := startTestServer(t, commands)

	for _, mode := range []string{"manual", "auto"} {
		resp, err := client.Do(Request{Command: CmdMode, Mode: mode})
		if err != nil {
			t.Fatalf("mode %q failed: %v", mode, err)
		}
		if !resp.OK {
			t.Errorf("mode %q returned error: %s", mode, resp.Error)
		}
	}

	resp, err := client.Do(Request{Command: CmdMode, Mode: "sideways"})
	if err != nil {
		t.Fatalf("bad mode failed at transport level: %v", err)
	}
	if resp.OK {
		t.Error("expected an error for an unknown mode")
	}

	commands.mu.Lock()
	defer commands.mu.Unlock()
	want := []bool{true, false}
	if len(commands.manual) != len(want) || commands.manual[0] != want[0] || commands.manual[1] != want[1] {
		t.Errorf("expected manual calls %v, got %v", want, commands.manual)
	}
}

func TestServerCapture(t *testing.T) {
	commands := newFakeCommands()
	client := startTestServer(t, commands)

	resp, err := client.Do(Request{Command: CmdCapture, Action: "speed-up"})
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if !resp.OK {
		t.Errorf("capture returned error: %s", resp.Error)
	}

	resp, err = client.Do(Request{Command: CmdCapture, Action: "warp"})
	if err != nil {
		t.Fatalf("bad capture failed at transport level: %v", err)
	}
	if resp.OK {
		t.Error("expected an error for an unknown action")
	}

	commands.mu.Lock()
	defer commands.mu.Unlock()
	if len(commands.captured) != 1 || commands.captured[0] != player.ActionSpeedUp {
		t.Errorf("expected one capture of speed-up, got %v", commands.captured)
	}
}

func TestServerUnknownCommand(t *testing.T) {
	commands := newFakeCommands()
	client := startTestServer(t, commands)

	resp, err := client.Do(Request{Command: "launch"})
	if err != nil {
		t.Fatalf("unknown command failed at transport level: %v", err)
	}
	if resp.OK || resp.Error == "" {
		t.Error("expected an error for an unknown command")
	}
}

func TestServerPlayPauseError(t *testing.T) {
	commands := newFakeCommands()
	commands.playErr = errors.New("no song selected")
	client := startTestServer(t, commands)

	resp, err := client.Do(Request{Command: CmdPlayPause})
	if err != nil {
		t.Fatalf("play_pause failed at transport level: %v", err)
	}
	if resp.OK {
		t.Error("expected play_pause to report the player error")
	}
	if resp.Error != "no song selected" {
		t.Errorf("expected error %q, got %q", "no song selected", resp.Error)
	}
}

func TestServerReplacesStaleSocket(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "ctl.sock")

	// Simulate a leftover socket file from a crashed run.
	if err := os.WriteFile(socketPath, []byte{}, 0644); err != nil {
		t.Fatalf("failed to plant stale socket: %v", err)
	}

	server := NewServer(newFakeCommands(), socketPath, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("server exited with error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client := NewClient(socketPath)
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := client.Status(); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("server never came up over the stale socket")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientNoServer(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "absent.sock"))

	if _, err := client.Do(Request{Command: CmdStatus}); err == nil {
		t.Error("expected an error when no player is listening")
	}
}
