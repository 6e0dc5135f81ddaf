package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 512

	// Размер буфера канала отправки сообщений клиенту
	clientBufferSize = 64
)

// Event - событие, доставляемое клиенту через WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client представляет одно WebSocket-соединение пользователя.
// У пользователя может быть несколько активных соединений (вкладки, устройства).
type Client struct {
	UserID       uint
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub хранит активные соединения и рассылает события прогресса
// подключённым клиентам. Реализует service.StatsNotifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

// NewHub создает новый hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
	}
}

// Register создает клиента для соединения и запускает его пампы
func (h *Hub) Register(conn *websocket.Conn, userID uint) *Client {
	client := &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, clientBufferSize),
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.mu.Unlock()

	log.Printf("[Hub] Клиент подключен: UserID=%d ConnID=%s", userID, client.ConnectionID)

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.send)

	log.Printf("[Hub] Клиент отключен: UserID=%d ConnID=%s", client.UserID, client.ConnectionID)
}

// NotifyUser отправляет событие всем соединениям пользователя.
// Соединения с переполненным буфером отключаются.
//
// Отправка выполняется под RLock: канал send закрывается в unregister
// только под полным Lock, поэтому запись в закрытый канал невозможна.
func (h *Hub) NotifyUser(userID uint, event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Payload: payload})
	if err != nil {
		log.Printf("[Hub] Ошибка сериализации события %s: %v", event, err)
		return
	}

	var overflowed []*Client

	h.mu.RLock()
	for client := range h.clients[userID] {
		select {
		case client.send <- data:
		default:
			overflowed = append(overflowed, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range overflowed {
		log.Printf("[Hub] Буфер переполнен, отключаем ConnID=%s", client.ConnectionID)
		h.unregister(client)
		client.conn.Close()
	}
}

// ConnectionCount возвращает число активных соединений
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

// Shutdown закрывает все активные соединения
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0)
	for _, conns := range h.clients {
		for client := range conns {
			clients = append(clients, client)
		}
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.unregister(client)
		client.conn.Close()
	}
}

// readPump вычитывает входящие сообщения. Клиенты ничего не отправляют,
// кроме pong-фреймов, но чтение необходимо для обработки close-фреймов.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Hub] Неожиданное закрытие соединения ConnID=%s: %v", c.ConnectionID, err)
			}
			return
		}
	}
}

// writePump отправляет события из канала send и поддерживает соединение ping-фреймами
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
