package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dverbeek/callscribe/domain/entities"
	"github.com/dverbeek/callscribe/domain/repositories"
	"github.com/dverbeek/callscribe/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio fragments

	// Budget for the best-effort archive write after a session closes.
	archiveTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub is the session registry: the only state shared across connections. The
// lock guards only insert-on-connect and delete-on-disconnect.
type Hub struct {
	sessions map[string]*Client
	mu       sync.RWMutex

	processor *usecase.Processor
	archive   repositories.RecordingArchive // nil disables archiving

	logger *zap.Logger
}

// NewHub creates the session registry.
func NewHub(processor *usecase.Processor, archive repositories.RecordingArchive, logger *zap.Logger) *Hub {
	return &Hub{
		sessions:  make(map[string]*Client),
		processor: processor,
		archive:   archive,
		logger:    logger,
	}
}

// SessionCount reports how many sessions are currently registered.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.sessions[c.session.ID] = c
	h.mu.Unlock()
	h.logger.Info("Session registered", zap.String("sessionID", c.session.ID))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.sessions[c.session.ID]; ok {
		delete(h.sessions, c.session.ID)
		close(c.send)
	}
	h.mu.Unlock()
	c.session.State = entities.SessionStateClosed
	h.logger.Info("Session unregistered", zap.String("sessionID", c.session.ID))
}

// Client owns one connection and its session. All session mutation happens on
// the readPump goroutine.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames, drained by writePump in order.
	send chan []byte

	session *entities.Session
	logger  *zap.Logger
}

// HandleWebSocket upgrades the request and starts a new session.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		session: entities.NewSession(),
		logger:  logger,
	}

	client.hub.register(client)

	go client.writePump()
	go client.readPump()

	return nil
}

// readPump reads frames until disconnect. On exit it performs the Closing
// transition; registry removal is unconditional even when the flush fails.
func (c *Client) readPump() {
	defer func() {
		c.finalize()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ctx := context.Background()
	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error",
					zap.String("sessionID", c.session.ID),
					zap.Error(err))
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			c.handleControlMessage(message)
		case websocket.BinaryMessage:
			c.hub.processor.HandleFragment(ctx, c.session, message, c)
		default:
			c.logger.Warn("Received unknown frame type",
				zap.String("sessionID", c.session.ID),
				zap.Int("type", messageType))
		}
	}
}

// writePump drains the send channel, preserving event order on the wire.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Error("Failed to write frame",
					zap.String("sessionID", c.session.ID),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleControlMessage applies a config frame. Malformed JSON is logged and
// ignored without touching session state.
func (c *Client) handleControlMessage(message []byte) {
	var msg ConfigMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("Ignoring malformed control message",
			zap.String("sessionID", c.session.ID),
			zap.Error(err))
		return
	}

	switch msg.Type {
	case MessageTypeConfig:
		clientID := ""
		if msg.ClientID != nil {
			clientID = *msg.ClientID
		}
		c.session.SetClientContext(clientID, msg.Context)
		c.logger.Info("Session configured",
			zap.String("sessionID", c.session.ID),
			zap.String("clientID", clientID))
	default:
		c.logger.Warn("Unknown control message type",
			zap.String("sessionID", c.session.ID),
			zap.String("type", msg.Type))
	}
}

// finalize runs the forced flush and archives the finished session. Both are
// best-effort; nothing here may prevent registry cleanup.
func (c *Client) finalize() {
	c.hub.processor.Finalize(context.Background(), c.session, c)

	if c.hub.archive == nil || len(c.session.TranscriptSegments) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	recording := entities.RecordingFromSession(c.session)
	recordID, err := c.hub.archive.Save(ctx, recording)
	if err != nil {
		c.logger.Error("Failed to archive recording",
			zap.String("sessionID", c.session.ID),
			zap.Error(err))
		return
	}
	c.logger.Info("Recording archived",
		zap.String("sessionID", c.session.ID),
		zap.String("recordID", recordID))
}

// emit queues one outbound frame; a slow client that has filled its buffer
// gets the frame dropped rather than stalling the pipeline. It runs on the
// readPump goroutine, so blocking here would also block fragment ingestion
// and the disconnect flush. Frames that are queued reach the wire in order.
func (c *Client) emit(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Dropping event for slow client",
			zap.String("sessionID", c.session.ID))
	}
}

// Client implements usecase.Emitter.

func (c *Client) EmitTranscript(text string, timestamp float64) {
	c.emit(newTranscriptEvent(text, timestamp))
}

func (c *Client) EmitActionItem(item string) {
	c.emit(newActionItemEvent(item))
}

func (c *Client) EmitRecommendation(recommendation string) {
	c.emit(newRecommendationEvent(recommendation))
}

func (c *Client) EmitSummary(summary string) {
	c.emit(newSummaryUpdateEvent(summary))
}
