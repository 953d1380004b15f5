package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"secret_santa/internal/models"
	"secret_santa/internal/repository"
)

// mockRoomRepository 是 RoomRepository 的 testify mock
type mockRoomRepository struct {
	mock.Mock
}

func (m *mockRoomRepository) Insert(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

func (m *mockRoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRoomRepository) AppendParticipant(ctx context.Context, roomID string, participant models.Participant) error {
	args := m.Called(ctx, roomID, participant)
	return args.Error(0)
}

func (m *mockRoomRepository) RemoveParticipant(ctx context.Context, roomID, participantID string) error {
	args := m.Called(ctx, roomID, participantID)
	return args.Error(0)
}

func (m *mockRoomRepository) SetAssignments(ctx context.Context, roomID string, expectedVersion int64, assignments map[string]string, startedAt time.Time) error {
	args := m.Called(ctx, roomID, expectedVersion, assignments, startedAt)
	return args.Error(0)
}

func (m *mockRoomRepository) UpdateWishlist(ctx context.Context, roomID, participantID string, wishlist []string) error {
	args := m.Called(ctx, roomID, participantID, wishlist)
	return args.Error(0)
}

var _ repository.RoomRepository = (*mockRoomRepository)(nil)

// recordingNotifier 記錄所有廣播的事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.RoomEvent
	closed []string // 被中斷訂閱的參與者 ID
}

func (n *recordingNotifier) BroadcastRoomEvent(roomID string, event models.RoomEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) CloseParticipant(roomID, participantID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, participantID)
}

func (n *recordingNotifier) types() []models.RoomEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.RoomEventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}
