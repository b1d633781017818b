package realtime

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

type WebSocketController struct {
	Hub    *Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{Hub: hub, Logger: logger}
}

// HandleWebSocket streams change notifications. Client messages are read
// only to notice the connection closing.
func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	entities, _ := c.Locals(entitiesKey).([]string)
	client := h.Hub.Register(entities...)
	defer h.Hub.Unregister(client)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-client.Send:
			if !ok {
				_ = c.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteJSON(msg); err != nil {
				h.Logger.Debug("Websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
