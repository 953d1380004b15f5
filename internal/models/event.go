package models

import "time"

// RoomEventType 房間事件類型
type RoomEventType string

const (
	EventParticipantJoined  RoomEventType = "participant_joined"
	EventParticipantRemoved RoomEventType = "participant_removed"
	EventRoomStarted        RoomEventType = "room_started"
	EventWishlistUpdated    RoomEventType = "wishlist_updated"
)

// RoomEvent 透過 WebSocket 推送給房間內的參與者，不含任何 token 或抽籤結果
type RoomEvent struct {
	Type        RoomEventType      `json:"type"`
	RoomID      string             `json:"roomId"`
	Participant *PublicParticipant `json:"participant,omitempty"`
	StartedAt   *time.Time         `json:"startedAt,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NewParticipantEvent 創建一個與參與者相關的事件
func NewParticipantEvent(eventType RoomEventType, roomID string, p Participant) RoomEvent {
	public := p.Public()
	return RoomEvent{
		Type:        eventType,
		RoomID:      roomID,
		Participant: &public,
		Timestamp:   time.Now(),
	}
}

// NewRoomStartedEvent 創建抽籤完成事件
func NewRoomStartedEvent(roomID string, startedAt time.Time) RoomEvent {
	return RoomEvent{
		Type:      EventRoomStarted,
		RoomID:    roomID,
		StartedAt: &startedAt,
		Timestamp: time.Now(),
	}
}
