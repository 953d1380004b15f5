package service

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"secret_santa/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBufferSize = 64
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn          *websocket.Conn
	RoomID        string
	ParticipantID string
	SendChan      chan models.RoomEvent // 事件發送通道，用於異步傳送

	done      chan struct{}
	closeOnce sync.Once
}

// close 通知 writePump 結束，可重複呼叫
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// WebSocketService 管理房間內的 WebSocket 連接並推送房間事件
type WebSocketService struct {
	clients    map[string]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex
}

// NewWebSocketService 創建並初始化新的 WebSocket 服務
func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		clients: make(map[string]map[*Client]bool),
	}
}

// HandleConnection 處理已通過驗證的連接，直到連線中斷才返回
func (s *WebSocketService) HandleConnection(conn *websocket.Conn, roomID, participantID string) {
	client := &Client{
		Conn:          conn,
		RoomID:        roomID,
		ParticipantID: participantID,
		SendChan:      make(chan models.RoomEvent, sendBufferSize),
		done:          make(chan struct{}),
	}

	s.addClient(client)
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "participant_id": participantID})
	logCtx.Debug("Websocket client connected")

	// 確保連接關閉時清理資源
	defer func() {
		s.removeClient(client)
		client.close()
		conn.Close()
		logCtx.Debug("Websocket client disconnected")
	}()

	go s.writePump(client)
	s.readPump(client)
}

// readPump 只用來處理 pong 與偵測斷線，客戶端送來的內容會被忽略
func (s *WebSocketService) readPump(client *Client) {
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("websocket unexpected close error")
			}
			return
		}
	}
}

// writePump 處理向客戶端發送事件與心跳
func (s *WebSocketService) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case event := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-client.done:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastRoomEvent 向房間內的所有客戶端廣播事件，隊列已滿的客戶端會被斷開
func (s *WebSocketService) BroadcastRoomEvent(roomID string, event models.RoomEvent) {
	for _, client := range s.roomClients(roomID) {
		select {
		case client.SendChan <- event:
		default:
			s.removeClient(client)
			client.close()
		}
	}
}

// CloseRoom 斷開房間內所有連接，房間被儲存層移除時呼叫
func (s *WebSocketService) CloseRoom(roomID string) {
	s.clientsMux.Lock()
	clients := s.clients[roomID]
	delete(s.clients, roomID)
	s.clientsMux.Unlock()

	for client := range clients {
		client.close()
	}
}

// CloseParticipant 斷開某位參與者在房間內的所有連接，參與者被移除時呼叫
func (s *WebSocketService) CloseParticipant(roomID, participantID string) {
	s.clientsMux.Lock()
	var closing []*Client
	for client := range s.clients[roomID] {
		if client.ParticipantID == participantID {
			closing = append(closing, client)
			delete(s.clients[roomID], client)
		}
	}
	if len(s.clients[roomID]) == 0 {
		delete(s.clients, roomID)
	}
	s.clientsMux.Unlock()

	for _, client := range closing {
		client.close()
	}
}

// GetRoomClients 獲取指定房間的在線客戶端數量
func (s *WebSocketService) GetRoomClients(roomID string) int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	return len(s.clients[roomID])
}

func (s *WebSocketService) roomClients(roomID string) []*Client {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	clients := make([]*Client, 0, len(s.clients[roomID]))
	for client := range s.clients[roomID] {
		clients = append(clients, client)
	}
	return clients
}

func (s *WebSocketService) addClient(client *Client) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	if s.clients[client.RoomID] == nil {
		s.clients[client.RoomID] = make(map[*Client]bool)
	}
	s.clients[client.RoomID][client] = true
}

func (s *WebSocketService) removeClient(client *Client) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	if clients, ok := s.clients[client.RoomID]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(s.clients, client.RoomID)
		}
	}
}

var _ RoomNotifier = (*WebSocketService)(nil)
