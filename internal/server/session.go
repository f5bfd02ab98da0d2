package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/mazeforge/internal/camera"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/protocol"
)

var (
	errUnknownOp   = errors.New("unknown op")
	errBadViewport = errors.New("viewport half sizes must not be negative")
)

// session is one websocket client. Only run writes data frames; close may
// be called from any goroutine.
type session struct {
	srv       *Server
	conn      *websocket.Conn
	id        string
	ip        string
	log       *slog.Logger
	closeOnce sync.Once
}

func newSession(srv *Server, conn *websocket.Conn, id, ip string) *session {
	return &session{
		srv:  srv,
		conn: conn,
		id:   id,
		ip:   ip,
		log:  srv.log.With("session", id, "client_ip", ip),
	}
}

func (s *session) run() {
	defer s.conn.Close()

	if limit := s.srv.cfg.WebSocket.MaxMessageSize; limit > 0 {
		s.conn.SetReadLimit(limit)
	}
	s.log.Info("Client connected")

	if err := s.conn.WriteJSON(protocol.Response{Op: protocol.OpWelcome, Session: s.id, Info: s.info()}); err != nil {
		s.log.Debug("Failed to send welcome", "error", err)
		return
	}

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("Client read failed", "error", err)
			}
			s.log.Info("Client disconnected")
			return
		}

		for _, line := range splitLines(message) {
			resp := s.handle(line)
			if err := s.conn.WriteJSON(resp); err != nil {
				s.log.Debug("Write failed", "error", err)
				return
			}
			if resp.Error == "" {
				continue
			}
			if locked, d := s.srv.badRequests.Strike(s.ip); locked {
				s.log.Warn("Client locked out after repeated bad requests", "lockout", d)
				s.close(websocket.ClosePolicyViolation, "too many bad requests")
				return
			}
		}
	}
}

// close sends a close frame and drops the connection.
func (s *session) close(code int, reason string) {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
}

// splitLines breaks a message into its non-blank lines.
func splitLines(message []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(message, []byte("\n")) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

func (s *session) handle(line []byte) protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(line, &req); err != nil {
		return protocol.Response{Error: fmt.Sprintf("malformed request: %v", err)}
	}

	resp, err := s.dispatch(req)
	resp.ID = req.ID
	resp.Op = req.Op
	if err != nil {
		s.log.Debug("Request failed", "op", req.Op, "error", err)
		resp.Error = err.Error()
	}
	return resp
}

func (s *session) dispatch(req protocol.Request) (protocol.Response, error) {
	switch req.Op {
	case protocol.OpInfo:
		return protocol.Response{Info: s.info()}, nil
	case protocol.OpView:
		view, err := s.view(req)
		return protocol.Response{View: view}, err
	case protocol.OpPath:
		path, err := s.path(req)
		return protocol.Response{Path: path}, err
	case protocol.OpEntities:
		return protocol.Response{Entities: s.entities()}, nil
	}
	return protocol.Response{}, fmt.Errorf("%w %q", errUnknownOp, req.Op)
}

func (s *session) info() *protocol.Info {
	lvl := s.srv.level
	opts := lvl.Options()
	return &protocol.Info{
		Cols:      lvl.Cols(),
		Rows:      lvl.Rows(),
		MapCols:   2*lvl.Cols() + 1,
		MapRows:   2*lvl.Rows() + 1,
		Algorithm: opts.Algorithm.String(),
		Seed:      opts.Seed,
		Portal:    lvl.Portal(),
	}
}

// camera sizes the window for req: configured defaults for zero fields,
// and never wider or taller than MaxHalfWidth.
func (s *session) camera(req protocol.Request) (camera.Camera, error) {
	if req.HalfWidth < 0 || req.HalfHeight < 0 {
		return camera.Camera{}, errBadViewport
	}
	vp := s.srv.cfg.Viewport
	cam := vp.Camera()
	if req.HalfWidth > 0 {
		cam.HalfWidth = req.HalfWidth
	}
	if req.HalfHeight > 0 {
		cam.HalfHeight = req.HalfHeight
	}
	if vp.MaxHalfWidth > 0 {
		cam.HalfWidth = min(cam.HalfWidth, vp.MaxHalfWidth)
		cam.HalfHeight = min(cam.HalfHeight, vp.MaxHalfWidth)
	}
	return cam, nil
}

func (s *session) view(req protocol.Request) (*protocol.View, error) {
	cam, err := s.camera(req)
	if err != nil {
		return nil, err
	}
	vp, err := s.srv.level.Window(cam, req.X, req.Y)
	if err != nil {
		return nil, err
	}

	opacity := make([][]float64, vp.Height)
	for row := range opacity {
		opacity[row] = make([]float64, vp.Width)
		for col := range opacity[row] {
			opacity[row][col] = vp.Opacity(vp.X0+col, vp.Y0+row)
		}
	}
	return &protocol.View{Viewport: vp, Opacity: opacity}, nil
}

// path defaults From to (1,1) and To to the portal.
func (s *session) path(req protocol.Request) (*protocol.Path, error) {
	from := maze.Point{X: 1, Y: 1}
	if req.From != nil {
		from = *req.From
	}
	to := s.srv.level.Portal()
	if req.To != nil {
		to = *req.To
	}

	steps, err := s.srv.level.PathTo(from, to)
	if err != nil {
		return nil, err
	}
	if steps == nil {
		steps = []maze.Point{}
	}
	return &protocol.Path{From: from, To: to, Length: len(steps), Steps: steps}, nil
}

func (s *session) entities() []protocol.Entity {
	entities := s.srv.level.Entities()
	out := make([]protocol.Entity, 0, len(entities))
	for _, e := range entities {
		out = append(out, protocol.Entity{
			Kind:  e.Kind.String(),
			Glyph: string(e.Kind.Glyph()),
			X:     e.X,
			Y:     e.Y,
		})
	}
	return out
}
