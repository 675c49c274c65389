package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rkot1/rtt-viewer/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const clientBuffer = 256

// wsMessage is the wire shape of render surface operations.
type wsMessage struct {
	Type      string           `json:"type"`
	Entry     *model.LogEntry  `json:"entry,omitempty"`
	Entries   []model.LogEntry `json:"entries,omitempty"`
	Tags      []string         `json:"tags,omitempty"`
	Terminals []int            `json:"terminals,omitempty"`
	Total     int              `json:"total,omitempty"`
}

// wsClients is the websocket fan-out. It implements the coordinator's render
// surface contract: every connected dashboard receives either a full rebuild
// or an incremental append, plus a scroll hint when auto-scroll is on.
type wsClients struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	logger  *zap.Logger
}

type wsClient struct {
	conn *websocket.Conn
	send chan wsMessage
}

func newWSClients(logger *zap.Logger) *wsClients {
	return &wsClients{
		clients: make(map[*wsClient]struct{}),
		logger:  logger,
	}
}

func (w *wsClients) count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

// RebuildAll replaces every client's view with the visible sequence.
func (w *wsClients) RebuildAll(entries []model.LogEntry) {
	w.broadcast(wsMessage{Type: "rebuild", Entries: entries})
}

// AppendOne streams one newly visible entry.
func (w *wsClients) AppendOne(e model.LogEntry) {
	w.broadcast(wsMessage{Type: "append", Entry: &e})
}

// ScrollToBottom hints clients to follow the tail.
func (w *wsClients) ScrollToBottom() {
	w.broadcast(wsMessage{Type: "scroll"})
}

func (w *wsClients) tagsChanged(tags []string) {
	w.broadcast(wsMessage{Type: "tags", Tags: tags})
}

func (w *wsClients) terminalsChanged(terminals []int) {
	w.broadcast(wsMessage{Type: "terminals", Terminals: terminals})
}

func (w *wsClients) countChanged(total int) {
	w.broadcast(wsMessage{Type: "count", Total: total})
}

// broadcast queues a message for every client. A full client queue drops
// the message for that client; a following rebuild resynchronizes it.
func (w *wsClients) broadcast(msg wsMessage) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for c := range w.clients {
		select {
		case c.send <- msg:
		default:
			w.logger.Warn("dropped websocket message for slow client")
		}
	}
}

func (w *wsClients) add(c *wsClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c] = struct{}{}
}

func (w *wsClients) remove(c *wsClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[c]; ok {
		delete(w.clients, c)
		close(c.send)
	}
}

// handleWebSocket upgrades the connection, sends the current visible
// sequence, then streams render operations. The read side accepts an
// auto-scroll toggle that the dashboard sends based on scroll position.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan wsMessage, clientBuffer),
	}
	s.clients.add(client)

	// Initial state so a late joiner sees the full visible sequence.
	client.send <- wsMessage{Type: "rebuild", Entries: s.coord.Visible()}
	client.send <- wsMessage{Type: "tags", Tags: s.coord.Tags()}
	client.send <- wsMessage{Type: "terminals", Terminals: s.coord.Terminals()}

	// Read pump: client control messages and disconnect detection.
	go func() {
		defer func() {
			s.clients.remove(client)
			conn.Close()
		}()
		for {
			var req struct {
				AutoScroll *bool `json:"auto_scroll"`
			}
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.AutoScroll != nil {
				s.coord.SetAutoScroll(*req.AutoScroll)
			}
		}
	}()

	// Write pump.
	for msg := range client.send {
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
			break
		}
	}
	s.clients.remove(client)
	conn.Close()
}
