package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/guide"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // local-only server
	},
}

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types to client.
const (
	wsMsgProgress = "progress"
	wsMsgError    = "error"
)

// wsProgress is pushed after every review mutation so connected
// surfaces stay in sync without polling.
type wsProgress struct {
	Totals      aggregate.HunkStatus   `json:"totals"`
	Groups      []aggregate.HunkStatus `json:"groups,omitempty"`
	ActiveGroup int                    `json:"activeGroup"`
	CompletedAt string                 `json:"completedAt,omitempty"`
}

// hub tracks connected websocket clients.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

func (h *hub) send(msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("ws marshal: %v", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("ws write: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// broadcast pushes a progress snapshot to every connected client.
func (s *Server) broadcast() {
	st := s.session.State()
	hunks := s.session.Hunks()

	c := aggregate.SessionCounter(s.session)
	s.hub.send(wsMsgProgress, wsProgress{
		Totals:      c.Sum(hunks),
		Groups:      guide.SessionStatuses(s.session),
		ActiveGroup: s.guide.Active(),
		CompletedAt: st.CompletedAt,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	s.hub.add(conn)
	defer s.hub.remove(conn)

	// Initial snapshot so a client has state before the first mutation.
	s.broadcast()

	// The stream is server-to-client; reads only detect disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}
	}
}
