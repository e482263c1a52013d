// Package gateway terminates WebSocket connections and routes JSON client
// messages to lobby and table actors.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Aspandiyar933/poker/internal/codec"
	"github.com/Aspandiyar933/poker/internal/lobby"
	"github.com/Aspandiyar933/poker/internal/table"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection represents a WebSocket client connection.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	// Current table association.
	TableID  string
	Table    *table.Table
	PlayerID string
}

// Gateway manages WebSocket connections.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	lobby       *lobby.Lobby
}

// New creates a new Gateway instance.
func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	c := &Connection{
		ID:      uuid.NewString(),
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Gateway: g,
	}

	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s, total: %d", c.ID, total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.leaveTable()
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var msg codec.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[Gateway] Failed to unmarshal from %s: %v", c.ID, err)
		c.sendError("Invalid message format")
		return
	}

	log.Printf("[Gateway] Received from %s: type=%s game=%s", c.ID, msg.Type, msg.GameID)

	switch msg.Type {
	case codec.TypeCreateGame:
		c.handleCreateGame(msg)
	case codec.TypeJoinGame:
		c.handleJoinGame(msg)
	case codec.TypeBet:
		c.handleBet(msg)
	case codec.TypeFold:
		c.handleFold(msg)
	default:
		log.Printf("[Gateway] Unknown message type from %s: %q", c.ID, msg.Type)
		c.sendError("Unknown message type")
	}
}

func (c *Connection) handleCreateGame(msg codec.ClientMessage) {
	c.leaveTable()

	t, err := c.Gateway.lobby.Create(c.Gateway.broadcastToClient)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	seat, err := t.Join(c.ID, msg.PlayerName)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.TableID = t.ID
	c.Table = t
	c.PlayerID = seat.ID

	log.Printf("[Gateway] Client %s created game %s as player %s", c.ID, t.ID, seat.ID)
	c.sendJSON(codec.NewGameCreated(t.ID, seat.ID))
}

func (c *Connection) handleJoinGame(msg codec.ClientMessage) {
	t := c.Gateway.lobby.Get(msg.GameID)
	if t == nil {
		c.sendError("Game not found")
		return
	}
	c.leaveTable()

	seat, err := t.Join(c.ID, msg.PlayerName)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.TableID = t.ID
	c.Table = t
	c.PlayerID = seat.ID

	log.Printf("[Gateway] Client %s joined game %s as player %s", c.ID, t.ID, seat.ID)
	c.sendJSON(codec.NewGameJoined(t.ID, seat.ID))
}

func (c *Connection) handleBet(msg codec.ClientMessage) {
	if c.Table == nil {
		c.sendError("Not in a game")
		return
	}
	if err := c.Table.Bet(c.ID, msg.PlayerID, msg.Amount); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) handleFold(msg codec.ClientMessage) {
	if c.Table == nil {
		c.sendError("Not in a game")
		return
	}
	if err := c.Table.Fold(c.ID, msg.PlayerID); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Connection) leaveTable() {
	if c.Table == nil {
		return
	}
	if err := c.Table.Leave(c.ID); err != nil && err != table.ErrTableClosed {
		log.Printf("[Gateway] Leave table %s failed for %s: %v", c.TableID, c.ID, err)
	}
	c.Table = nil
	c.TableID = ""
	c.PlayerID = ""
}

func (c *Connection) sendError(msg string) {
	c.sendJSON(codec.NewError(msg))
}

func (c *Connection) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Gateway] Failed to marshal for %s: %v", c.ID, err)
		return
	}
	select {
	case c.Send <- data:
	default:
		// Drop if buffer full
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, len(g.connections))
}

// broadcastToClient sends a message to a specific client connection.
func (g *Gateway) broadcastToClient(clientID string, data []byte) {
	g.mu.RLock()
	c := g.connections[clientID]
	g.mu.RUnlock()

	if c != nil {
		select {
		case c.Send <- data:
		default:
			// Drop if buffer full
		}
	}
}

// ConnectionCount returns the number of open client connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
