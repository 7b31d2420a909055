package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	announceWait   = 5 * time.Second
)

// Session is one open board: a websocket connection plus the board it
// drives. It is also the board's listener, turning board events into
// server messages.
type Session struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	board  *pipeline.Board
	log    *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(h *Hub, conn *websocket.Conn, userID string) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		userID: userID,
		hub:    h,
		conn:   conn,
		log:    h.log.With(zap.String("session", id), zap.String("user_id", userID)),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

func (s *Session) run(ctx context.Context) {
	listeners := append([]pipeline.Listener{s}, s.hub.cfg.Listeners...)
	opts := []pipeline.Option{
		pipeline.WithListener(pipeline.Multi(listeners)),
		pipeline.WithLogger(s.log.Named("pipeline")),
	}
	if s.hub.cfg.ConfirmTimeout > 0 {
		opts = append(opts, pipeline.WithTimeout(s.hub.cfg.ConfirmTimeout))
	}

	board, err := s.hub.cfg.NewBoard(ctx, opts...)
	if err != nil {
		s.log.Error("[ws][board] load failed", zap.Error(err))
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.conn.WriteJSON(ServerMessage{Type: MsgError, Message: "Could not load the board."})
		s.close()
		return
	}
	s.board = board
	s.log.Info("[ws] session opened")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump()
	}()

	s.pushBoard()
	s.readPump(ctx)

	s.close()
	board.Wait()
	<-writerDone
	s.log.Info("[ws] session closed")
}

func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("[ws] read failed", zap.Error(err))
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.pushError("", "Malformed message.")
			continue
		}
		s.handle(ctx, msg)
	}
}

func (s *Session) handle(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case MsgBeginDrag:
		if err := s.board.BeginDrag(msg.DealID); err != nil {
			s.pushError(msg.DealID, "This deal is no longer on the board.")
		}

	case MsgEndDrag:
		// Dropped outside any column.
		if msg.Stage == "" {
			s.board.CancelDrag(msg.DealID)
			return
		}
		stage, err := models.ParseStage(msg.Stage)
		if err != nil {
			s.board.CancelDrag(msg.DealID)
			s.pushError(msg.DealID, "Unknown stage.")
			return
		}
		if _, err := s.board.EndDrag(ctx, msg.DealID, stage); err != nil {
			if errors.Is(err, pipeline.ErrDealNotFound) {
				s.pushError(msg.DealID, "This deal is no longer on the board.")
				return
			}
			s.pushError(msg.DealID, err.Error())
		}

	case MsgCancelDrag:
		s.board.CancelDrag(msg.DealID)

	case MsgRefresh:
		deals, err := s.hub.cfg.Reload(ctx)
		if err != nil {
			s.log.Error("[ws][refresh] failed", zap.Error(err))
			s.pushError("", "Could not reload the board.")
			return
		}
		s.board.LoadInitial(deals)

	default:
		s.pushError("", "Unknown message type.")
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// push queues a message. A session that cannot keep up loses messages
// rather than stalling the board.
func (s *Session) push(msg ServerMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("[ws] marshal failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.send <- b:
	case <-s.done:
	default:
		s.log.Warn("[ws] send buffer full, dropping", zap.String("type", msg.Type))
	}
}

func (s *Session) pushBoard() {
	if s.board == nil {
		return
	}
	s.push(ServerMessage{Type: MsgBoard, Columns: s.board.Columns()})
}

func (s *Session) pushError(dealID, message string) {
	s.push(ServerMessage{Type: MsgError, DealID: dealID, Message: message})
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = s.conn.Close()
	})
}

func (s *Session) BoardChanged(pipeline.Change) {
	s.pushBoard()
}

func (s *Session) DealWon(deal models.Deal) {
	d := deal
	s.push(ServerMessage{Type: MsgDealWon, Deal: &d, AutoAccess: deal.HasEmail()})
	s.hub.announceAsync(s.id, deal)
}

func (s *Session) TransitionFailed(e *pipeline.TransitionError) {
	s.push(ServerMessage{Type: MsgError, DealID: e.DealID, Message: e.Message})
}
