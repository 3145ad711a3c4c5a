package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/domain/desktop"
	"github.com/GriffinCanCode/WebOS/internal/domain/geometry"
	"github.com/GriffinCanCode/WebOS/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// stateKinds is the order state events are flushed in
var stateKinds = []string{TypeDesktop, TypeWorkers, TypePrompt}

var errUnknownType = errors.New("unknown message type")

// session is one connected view. Component listeners only mark state kinds
// dirty; the writer reads fresh snapshots when it flushes, so a slow client
// sees the latest state rather than every intermediate one.
type session struct {
	h       *Handler
	conn    *websocket.Conn
	tracker *geometry.Tracker
	logger  *zap.Logger

	mu       sync.Mutex
	replies  []ServerMessage
	dirty    map[string]bool
	overflow bool
	wake     chan struct{}
}

func (s *session) markDirty(kinds ...string) {
	s.mu.Lock()
	for _, k := range kinds {
		s.dirty[k] = true
	}
	s.mu.Unlock()
	s.signal()
}

func (s *session) reply(msg ServerMessage) {
	s.mu.Lock()
	if len(s.replies) >= maxPendingReplies {
		s.overflow = true
	} else {
		s.replies = append(s.replies, msg)
	}
	s.mu.Unlock()
	s.signal()
}

func (s *session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// drain takes pending replies and the set of dirty kinds
func (s *session) drain() ([]ServerMessage, []string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replies := s.replies
	s.replies = nil

	var kinds []string
	for _, k := range stateKinds {
		if s.dirty[k] {
			kinds = append(kinds, k)
			delete(s.dirty, k)
		}
	}
	return replies, kinds, s.overflow
}

func (s *session) state(kind string) ServerMessage {
	msg := newMessage(kind)
	switch kind {
	case TypeDesktop:
		snap := s.h.desktop.Snapshot()
		msg.Desktop = &snap
	case TypeWorkers:
		snap := s.h.pool.Snapshot()
		msg.Workers = &snap
	case TypePrompt:
		snap := s.h.broker.Snapshot()
		msg.Permissions = &snap
		if len(snap.Pending) > 0 {
			head := snap.Pending[0]
			msg.Prompt = &head
		}
	}
	return msg
}

func (s *session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-s.wake:
			replies, kinds, overflow := s.drain()
			if overflow {
				s.logger.Warn("Client not reading, closing stream")
				s.conn.Close()
				return
			}
			for _, msg := range replies {
				if err := s.write(msg); err != nil {
					s.fail(err)
					return
				}
			}
			for _, kind := range kinds {
				if err := s.write(s.state(kind)); err != nil {
					s.fail(err)
					return
				}
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.fail(err)
				return
			}
		}
	}
}

func (s *session) write(msg ServerMessage) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.h.metrics.RecordWSMessage("out", msg.Type)
	return nil
}

// fail unblocks the reader after a write error
func (s *session) fail(err error) {
	s.logger.Debug("WebSocket write failed", zap.Error(err))
	s.conn.Close()
}

func (s *session) readLoop() {
	s.conn.SetReadLimit(utils.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg ClientMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.reply(errorMessage("", "", fmt.Errorf("malformed message: %w", err)))
			continue
		}
		s.h.metrics.RecordWSMessage("in", msg.Type)

		if err := s.dispatch(msg); err != nil {
			s.logger.Debug("Stream request failed",
				zap.String("type", msg.Type),
				zap.String("window_id", msg.WindowID.String()),
				zap.Error(err))
			s.reply(errorMessage(msg.Type, msg.WindowID, err))
		}
	}
}

func (s *session) dispatch(msg ClientMessage) error {
	switch msg.Type {
	case TypePing:
		s.reply(newMessage(TypePong))
		return nil

	case TypeDragStart, TypeResizeStart:
		win, ok := s.h.desktop.Get(msg.WindowID)
		if !ok {
			return fmt.Errorf("%w: %s", desktop.ErrWindowNotFound, msg.WindowID)
		}
		if msg.Type == TypeDragStart {
			return s.tracker.BeginDrag(msg.WindowID, msg.pointer(), win.Rect())
		}
		return s.tracker.BeginResize(msg.WindowID, geometry.Direction(msg.Direction), msg.pointer(), win.Rect())

	case TypePointerMove:
		_, err := s.tracker.Pointer(msg.WindowID, msg.pointer())
		return err

	case TypePointerUp:
		rect, err := s.tracker.End(msg.WindowID, msg.pointer())
		if err != nil {
			return err
		}
		end := newMessage(TypeGestureEnd)
		end.WindowID = msg.WindowID
		end.Rect = &rect
		s.reply(end)
		return nil

	case TypeGestureCancel:
		s.tracker.Cancel(msg.WindowID)
		return nil

	case TypeResolvePrompt:
		if err := s.h.broker.Resolve(msg.PromptID, msg.Decision); err != nil {
			return err
		}
		resolved := newMessage(TypePromptResolved)
		resolved.Message = string(msg.Decision)
		s.reply(resolved)
		return nil

	default:
		return fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}
}
