package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
)

// BoardFactory builds a loaded board for a new session.
type BoardFactory func(ctx context.Context, opts ...pipeline.Option) (*pipeline.Board, error)

// Loader re-reads the deal list on refresh.
type Loader func(ctx context.Context) ([]models.Deal, error)

// Publisher carries won announcements to other instances.
type Publisher interface {
	PublishWon(ctx context.Context, a WonAnnouncement) error
}

type HubConfig struct {
	NewBoard BoardFactory
	Reload   Loader
	// Listeners are attached to every session board, e.g. the won notifier.
	Listeners      []pipeline.Listener
	ConfirmTimeout time.Duration
	Log            *zap.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks open board sessions. Each session owns its own board; the hub
// only fans out won announcements and closes everything on shutdown.
type Hub struct {
	cfg HubConfig
	log *zap.Logger

	mu        sync.RWMutex
	sessions  map[*Session]struct{}
	publisher Publisher
	closed    bool
	wg        sync.WaitGroup
	announces sync.WaitGroup
}

func NewHub(cfg HubConfig) *Hub {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{cfg: cfg, log: log, sessions: map[*Session]struct{}{}}
}

// SetPublisher routes announcements through another transport instead of
// delivering them locally. The transport is expected to call Deliver.
func (h *Hub) SetPublisher(p Publisher) {
	h.mu.Lock()
	h.publisher = p
	h.mu.Unlock()
}

func (h *Hub) register(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	h.mu.Unlock()
	if ok {
		h.wg.Done()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Announce tells every other session that origin closed a deal.
func (h *Hub) Announce(ctx context.Context, origin string, deal models.Deal) {
	a := WonAnnouncement{Origin: origin, Deal: deal}
	h.mu.RLock()
	pub := h.publisher
	h.mu.RUnlock()

	if pub != nil {
		if err := pub.PublishWon(ctx, a); err != nil {
			h.log.Warn("[ws][won] publish failed, delivering locally", zap.Error(err))
			h.Deliver(a)
		}
		return
	}
	h.Deliver(a)
}

// announceAsync runs Announce off the board's confirmation goroutine, so a
// slow publisher does not hold up the next queued move. Close waits for it.
func (h *Hub) announceAsync(origin string, deal models.Deal) {
	h.announces.Add(1)
	go func() {
		defer h.announces.Done()
		ctx, cancel := context.WithTimeout(context.Background(), announceWait)
		defer cancel()
		h.Announce(ctx, origin, deal)
	}()
}

// Deliver pushes an announcement to the local sessions, skipping its origin.
func (h *Hub) Deliver(a WonAnnouncement) {
	deal := a.Deal
	msg := ServerMessage{Type: MsgDealWon, Deal: &deal, Announcement: true}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		if s.id == a.Origin {
			continue
		}
		s.push(msg)
	}
}

// ServeBoard upgrades the request and runs a board session until the client
// goes away or the hub is closed.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("[ws] upgrade failed", zap.Error(err))
		return
	}
	s := newSession(h, conn, userID)
	if !h.register(s) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	defer h.unregister(s)

	s.run(context.WithoutCancel(r.Context()))
}

// Close disconnects every session and waits for their boards to settle.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	h.wg.Wait()
	h.announces.Wait()
	h.log.Info("[ws] hub closed", zap.Int("sessions", len(sessions)))
}
