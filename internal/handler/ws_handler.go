package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/mozart-api/internal/realtime"
	"github.com/yourusername/mozart-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения для событий прогресса
type WSHandler struct {
	hub        *realtime.Hub
	jwtService *auth.JWTService
	upgrader   gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// allowedOrigins должен быть синхронизирован с CORS-конфигурацией в main.go.
func NewWSHandler(hub *realtime.Hub, jwtService *auth.JWTService, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// Пустой Origin - не браузерный клиент (мобильное приложение, curl)
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}

				log.Printf("[WSHandler] Отклонён неразрешённый origin: %s", origin)
				return false
			},
		},
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение.
// Токен передается query-параметром, т.к. браузерный WebSocket API
// не поддерживает произвольные заголовки.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token parameter", "error_type": "token_missing"})
		return
	}

	claims, err := h.jwtService.ParseToken(token)
	if err != nil {
		log.Printf("[WSHandler] Невалидный или истёкший токен: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения: %v", err)
		return
	}

	client := h.hub.Register(conn, claims.UserID)
	log.Printf("[WSHandler] Соединение установлено: UserID=%d ConnID=%s", claims.UserID, client.ConnectionID)
}
