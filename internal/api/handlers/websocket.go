package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"secret_santa/internal/service"
)

// WebSocketHandler 處理 WebSocket 連接
type WebSocketHandler struct {
	wsService   *service.WebSocketService
	roomService *service.RoomService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例。
// allowedOrigins 為空或包含 "*" 時接受任何來源。
func NewWebSocketHandler(wsService *service.WebSocketService, roomService *service.RoomService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsService:   wsService,
		roomService: roomService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// HandleWebSocket 驗證參與者身分後升級連接並開始推送房間事件
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token, ok := requireToken(c, c.Query("token"))
	if !ok {
		return
	}
	roomID := c.Param("roomId")

	// 升級前先確認 token 屬於此房間
	self, err := h.roomService.GetSelf(c.Request.Context(), roomID, token)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失敗時已經寫回錯誤回應
		logrus.WithError(err).WithField("room_id", roomID).Warn("Failed to upgrade websocket")
		return
	}

	h.wsService.HandleConnection(conn, roomID, self.Participant.ID)
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(allowed) == 0 || origin == "" || allowed[origin]
	}
}
