package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/keyplay/internal/player"
)

// connDeadline bounds how long one control connection may sit between
// frames before the server drops it.
const connDeadline = 10 * time.Second

// Commands is the player surface the control socket drives.
// *player.Player satisfies it.
type Commands interface {
	Snapshot() player.Snapshot
	PlayPause() error
	Stop()
	SpeedUp() float64
	SpeedDown() float64
	Advance()
	Select(path string) error
	SetManual(manual bool)
	RequestCapture(action player.Action)
}

// Server answers control commands on a unix socket.
type Server struct {
	commands Commands
	path     string
	logger   zerolog.Logger
}

// NewServer creates a control server bound to the given socket path.
func NewServer(commands Commands, socketPath string, logger zerolog.Logger) *Server {
	return &Server{
		commands: commands,
		path:     socketPath,
		logger:   logger.With().Str("component", "remote").Logger(),
	}
}

// Run listens on the control socket until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	// A previous crash can leave a stale socket file behind; remove it
	// before binding.
	_ = os.Remove(s.path)

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on control socket: %w", err)
	}
	defer os.Remove(s.path)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info().Str("socket", s.path).Msg("Control socket listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	for {
		_ = conn.SetDeadline(time.Now().Add(connDeadline))

		opcode, payload, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug().Err(err).Msg("Control connection closed")
			}
			return
		}
		if opcode != opCommand {
			s.logger.Debug().Uint32("opcode", opcode).Msg("Unexpected opcode on control socket")
			return
		}

		var resp Response
		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			resp = Response{Error: fmt.Sprintf("malformed request: %v", err)}
		} else {
			resp = s.dispatch(req)
		}

		if err := writeFrame(conn, opReply, resp); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to write control reply")
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	s.logger.Debug().Str("command", req.Command).Msg("Control command received")

	switch req.Command {
	case CmdStatus:
		// Nothing to do; every reply carries the state.
	case CmdPlayPause:
		if err := s.commands.PlayPause(); err != nil {
			return Response{Error: err.Error()}
		}
	case CmdStop:
		s.commands.Stop()
	case CmdSpeedUp:
		s.commands.SpeedUp()
	case CmdSpeedDown:
		s.commands.SpeedDown()
	case CmdAdvance:
		s.commands.Advance()
	case CmdSelect:
		if req.Path == "" {
			return Response{Error: "select requires a song path"}
		}
		if err := s.commands.Select(req.Path); err != nil {
			return Response{Error: err.Error()}
		}
	case CmdMode:
		switch req.Mode {
		case "manual":
			s.commands.SetManual(true)
		case "auto":
			s.commands.SetManual(false)
		default:
			return Response{Error: fmt.Sprintf("unknown mode %q (want auto or manual)", req.Mode)}
		}
	case CmdCapture:
		action, err := player.ParseAction(req.Action)
		if err != nil {
			return Response{Error: err.Error()}
		}
		s.commands.RequestCapture(action)
	default:
		return Response{Error: fmt.Sprintf("unknown command %q", req.Command)}
	}

	return Response{OK: true, State: stateInfo(s.commands.Snapshot())}
}

func stateInfo(snap player.Snapshot) *StateInfo {
	return &StateInfo{
		Song:        snap.SongName,
		Path:        snap.SongPath,
		Mode:        snap.Mode.String(),
		Status:      snap.Status,
		Speed:       snap.Speed,
		Progress:    snap.Progress,
		Total:       snap.Total,
		Manual:      snap.ManualMode,
		ManualIndex: snap.ManualIndex,
		Bindings: map[string]string{
			player.ActionPlayPause.String(): string(snap.Bindings.PlayPause),
			player.ActionStop.String():      string(snap.Bindings.Stop),
			player.ActionSpeedUp.String():   string(snap.Bindings.SpeedUp),
			player.ActionSpeedDown.String(): string(snap.Bindings.SpeedDown),
		},
	}
}
