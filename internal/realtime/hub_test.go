package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Тесты для Hub
// ============================================================================

// addTestClient добавляет клиента без реального WebSocket-соединения:
// пампы не запускаются, проверяется только синхронизация hub-а
func addTestClient(h *Hub, userID uint, buffer int) *Client {
	client := &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          h,
		send:         make(chan []byte, buffer),
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.mu.Unlock()

	return client
}

func TestHub_NotifyUser_DeliversToAllUserConnections(t *testing.T) {
	// Arrange: два соединения одного пользователя и одно чужое
	h := NewHub()
	first := addTestClient(h, 1, 4)
	second := addTestClient(h, 1, 4)
	other := addTestClient(h, 2, 4)

	// Act
	h.NotifyUser(1, "stats:updated", map[string]interface{}{"totalScore": 120})

	// Assert
	for _, client := range []*Client{first, second} {
		var event Event
		require.NoError(t, json.Unmarshal(<-client.send, &event))
		assert.Equal(t, "stats:updated", event.Type)
	}
	assert.Empty(t, other.send, "Событие не доставляется чужим соединениям")
}

func TestHub_NotifyUser_UnknownUserIsNoop(t *testing.T) {
	// Arrange
	h := NewHub()

	// Act / Assert: отсутствие клиентов не приводит к панике
	h.NotifyUser(99, "stats:updated", nil)
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestHub_NotifyUser_ConcurrentWithUnregister(t *testing.T) {
	// Arrange: конкурентные NotifyUser и unregister не должны приводить
	// к записи в закрытый канал (падает под -race и паникой)
	h := NewHub()

	const clientCount = 16
	const notifyRounds = 500

	clients := make([]*Client, 0, clientCount)
	for i := 0; i < clientCount; i++ {
		// Буфер больше суммарного числа событий, чтобы не задеть
		// ветку отключения переполненных клиентов
		clients = append(clients, addTestClient(h, 1, 4*notifyRounds))
	}

	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < notifyRounds; i++ {
				h.NotifyUser(1, "stats:updated", map[string]interface{}{"round": i})
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, client := range clients {
			h.unregister(client)
		}
	}()

	wg.Wait()

	// Assert
	assert.Equal(t, 0, h.ConnectionCount(), "Все клиенты отключены")
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	// Arrange
	h := NewHub()
	client := addTestClient(h, 1, 4)

	// Act: повторный unregister того же клиента не паникует
	h.unregister(client)
	h.unregister(client)

	// Assert
	assert.Equal(t, 0, h.ConnectionCount())
}
