package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"secret_santa/internal/models"
)

// DefaultMemoryCapacity 記憶體儲存預設保留的房間數量
const DefaultMemoryCapacity = 1000

// MemoryRoomRepository 是有容量上限的記憶體實作。
// 超過容量時移除最早建立的房間，order 串列讓移除操作為 O(1)。
type MemoryRoomRepository struct {
	mu       sync.Mutex
	capacity int
	rooms    map[string]*list.Element
	order    *list.List // 由舊到新，元素值為 *models.Room
	onEvict  func(roomID string)
}

// NewMemoryRoomRepository 創建記憶體儲存，capacity <= 0 時使用預設值
func NewMemoryRoomRepository(capacity int) *MemoryRoomRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRoomRepository{
		capacity: capacity,
		rooms:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// OnEvict 註冊房間被移除時的回呼，在鎖外呼叫
func (r *MemoryRoomRepository) OnEvict(fn func(roomID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = fn
}

// Len 回傳目前保留的房間數量
func (r *MemoryRoomRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

func (r *MemoryRoomRepository) Insert(ctx context.Context, room *models.Room) error {
	r.mu.Lock()
	if _, ok := r.rooms[room.ID]; ok {
		r.mu.Unlock()
		return ErrDuplicateEntry
	}
	r.rooms[room.ID] = r.order.PushBack(room.Clone())

	var evicted []string
	for r.order.Len() > r.capacity {
		oldest := r.order.Front()
		victim := r.order.Remove(oldest).(*models.Room)
		delete(r.rooms, victim.ID)
		evicted = append(evicted, victim.ID)
	}
	onEvict := r.onEvict
	r.mu.Unlock()

	if onEvict != nil {
		for _, id := range evicted {
			onEvict(id)
		}
	}
	return nil
}

func (r *MemoryRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.lookup(id)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (r *MemoryRoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[id]
	return ok, nil
}

func (r *MemoryRoomRepository) AppendParticipant(ctx context.Context, roomID string, participant models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.lookup(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if room.IsStarted() {
		return ErrRoomStarted
	}
	room.Participants = append(room.Participants, participant.Clone())
	room.Version++
	return nil
}

func (r *MemoryRoomRepository) RemoveParticipant(ctx context.Context, roomID, participantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.lookup(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if room.IsStarted() {
		return ErrRoomStarted
	}
	for i := range room.Participants {
		if room.Participants[i].ID == participantID {
			room.Participants = append(room.Participants[:i:i], room.Participants[i+1:]...)
			room.Version++
			return nil
		}
	}
	return ErrParticipantNotFound
}

func (r *MemoryRoomRepository) SetAssignments(ctx context.Context, roomID string, expectedVersion int64, assignments map[string]string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.lookup(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if room.IsStarted() {
		return ErrRoomStarted
	}
	if room.Version != expectedVersion {
		return ErrVersionConflict
	}
	copied := make(map[string]string, len(assignments))
	for k, v := range assignments {
		copied[k] = v
	}
	room.Assignments = copied
	room.StartedAt = &startedAt
	return nil
}

func (r *MemoryRoomRepository) UpdateWishlist(ctx context.Context, roomID, participantID string, wishlist []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.lookup(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	p, ok := room.Participant(participantID)
	if !ok {
		return ErrParticipantNotFound
	}
	p.Wishlist = append([]string(nil), wishlist...)
	return nil
}

// lookup 需在持有鎖時呼叫
func (r *MemoryRoomRepository) lookup(id string) (*models.Room, bool) {
	elem, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	return elem.Value.(*models.Room), true
}

var _ RoomRepository = (*MemoryRoomRepository)(nil)
