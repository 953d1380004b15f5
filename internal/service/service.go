package service

import (
	"secret_santa/internal/repository"
)

type Services struct {
	Room      *RoomService
	WebSocket *WebSocketService
}

func NewServices(repos *repository.Repositories) *Services {
	wsService := NewWebSocketService()
	roomService := NewRoomService(repos.Room, wsService)

	return &Services{
		Room:      roomService,
		WebSocket: wsService,
	}
}
