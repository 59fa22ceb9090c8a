package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub is the connection registry and broadcast layer: it maps transient
// connection ids to live clients, tracks which room (session code) each
// connection is subscribed to, and fans out events to rooms. Delivery is
// fire-and-forget; a dropped client simply misses events until it rejoins
// and receives a fresh snapshot.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Client            // connID -> client
	rooms map[string]map[string]*Client // code -> connID -> client

	register   chan *Client
	unregister chan *Client

	gameService *GameService
}

func NewHub() *Hub {
	return &Hub{
		conns:      make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetGameService wires the lifecycle engine in after construction; the hub
// and the engine reference each other.
func (h *Hub) SetGameService(gs *GameService) {
	h.gameService = gs
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.conns[client.ID] = client
			total := len(h.conns)
			h.mu.Unlock()
			log.Printf("Client %s connected (%d total)", client.ID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			code := client.code
			if _, ok := h.conns[client.ID]; ok {
				delete(h.conns, client.ID)
				h.removeFromRoomLocked(client)
				close(client.send)
			}
			total := len(h.conns)
			h.mu.Unlock()
			log.Printf("Client %s disconnected (%d total)", client.ID, total)

			// Session mutation happens outside the hub lock; the engine
			// broadcasts back through ToRoom.
			if code != "" && h.gameService != nil {
				h.gameService.HandleDisconnect(client.ID, code)
			}
		}
	}
}

func (h *Hub) removeFromRoomLocked(client *Client) {
	if client.code == "" {
		return
	}
	if room, ok := h.rooms[client.code]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, client.code)
		}
	}
}

// Subscribe moves a connection into a session's room.
func (h *Hub) Subscribe(connID, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}
	h.removeFromRoomLocked(client)
	client.code = code
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]*Client)
	}
	h.rooms[code][connID] = client
}

// Unsubscribe detaches a connection from its room without closing it.
func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connID]
	if !ok {
		return
	}
	h.removeFromRoomLocked(client)
	client.code = ""
}

// ToRoom fans an event out to every connection subscribed to the session.
func (h *Hub) ToRoom(code, event string, payload interface{}) {
	data, err := json.Marshal(OutMessage{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Broadcast marshal failed for %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.rooms[code] {
		client.enqueue(data)
	}
}

// ToConn sends an event to exactly one connection. Used for replies that
// must not leak to the rest of the room.
func (h *Hub) ToConn(connID, event string, payload interface{}) {
	data, err := json.Marshal(OutMessage{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Send marshal failed for %s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.conns[connID]; ok {
		client.enqueue(data)
	}
}

// CloseRoom detaches every connection from a deleted session's room.
func (h *Hub) CloseRoom(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.rooms[code] {
		client.code = ""
	}
	delete(h.rooms, code)
}

// RoomSize reports how many connections are subscribed to a session.
func (h *Hub) RoomSize(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// Client is one websocket connection with its read/write pumps.
type Client struct {
	hub    *Hub
	ID     string
	socket *websocket.Conn
	send   chan []byte
	code   string // room subscription, managed by the hub
}

// RegisterClient wraps an upgraded connection, registers it and starts its
// pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		ID:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

// enqueue hands bytes to the write pump; a client whose buffer is full is
// considered dead and gets its socket torn down by the pumps.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("Client %s send buffer full, dropping connection", c.ID)
		c.socket.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", c.ID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendError(CodeInvalidPayload, "malformed message")
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// handleMessage decodes the event's typed payload and routes it into the
// lifecycle engine. Any domain error goes back to this connection only.
func (c *Client) handleMessage(msg Message) {
	gs := c.hub.gameService
	if gs == nil {
		c.SendError(CodeInternal, "server not ready")
		return
	}

	var err error
	switch msg.Type {
	case EventPing:
		c.hub.ToConn(c.ID, EventPong, nil)
		return

	case EventCreateGame:
		var p CreateGamePayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.CreateGame(c.ID, p)
		}

	case EventJoinGame:
		var p JoinGamePayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.JoinGame(c.ID, p)
		}

	case EventDeleteGame:
		var p GameIDPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.DeleteGame(c.ID, p.GameID)
		}

	case EventStartGame:
		var p GameIDPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.StartGame(c.ID, p.GameID)
		}

	case EventUpdateScore:
		var p UpdateScorePayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.UpdateScore(c.ID, p)
		}

	case EventRejoinAsHost:
		var p RejoinPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.RejoinAsHost(c.ID, p)
		}

	case EventRejoinAsPlayer:
		var p RejoinPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.RejoinAsPlayer(c.ID, p)
		}

	case EventLeaveRoom:
		var p GameIDPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.LeaveRoom(c.ID, p.GameID)
		}

	case EventNextQuestion:
		var p GameIDPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.NextQuestion(c.ID, p.GameID)
		}

	case EventSubmitAnswer:
		var p SubmitAnswerPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.SubmitAnswer(c.ID, p)
		}

	case EventPlayerFinished:
		var p PlayerFinishedPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.PlayerFinished(c.ID, p)
		}

	case EventEndGame:
		var p GameIDPayload
		if err = decodePayload(msg.Payload, &p); err == nil {
			err = gs.EndGame(c.ID, p.GameID)
		}

	default:
		log.Printf("Client %s sent unknown event %q", c.ID, msg.Type)
		c.SendError(CodeInvalidPayload, "unknown event type")
		return
	}

	if err != nil {
		c.SendError(errorCode(err), errorMessage(err))
	}
}

func decodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return ErrInvalidPayload
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidPayload
	}
	return nil
}

// SendError emits a scoped error event to this connection alone; errors
// are never broadcast to the room.
func (c *Client) SendError(code, message string) {
	data, err := json.Marshal(OutMessage{
		Type:    EventError,
		Payload: ErrorPayload{Code: code, Message: message},
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}
