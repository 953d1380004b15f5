package repository

import (
	"context"
	"time"

	"secret_santa/internal/models"
)

// RoomRepository 定義房間資料的存取操作。
// 每個方法對單一房間都是原子操作，讀取回傳的是快照，呼叫端修改它不會影響儲存內容。
type RoomRepository interface {
	// Insert 新增房間，ID 已存在時回傳 ErrDuplicateEntry
	Insert(ctx context.Context, room *models.Room) error

	// FindByID 依 ID 查找房間，不存在時回傳 ErrRoomNotFound
	FindByID(ctx context.Context, id string) (*models.Room, error)

	// Exists 檢查房間 ID 是否已被使用
	Exists(ctx context.Context, id string) (bool, error)

	// AppendParticipant 在尚未開始的房間加入參與者並遞增版本。
	// 房間已開始時回傳 ErrRoomStarted。
	AppendParticipant(ctx context.Context, roomID string, participant models.Participant) error

	// RemoveParticipant 在尚未開始的房間移除參與者並遞增版本
	RemoveParticipant(ctx context.Context, roomID, participantID string) error

	// SetAssignments 只在 startedAt 尚未設定且版本等於 expectedVersion 時寫入抽籤結果。
	// 已開始回傳 ErrRoomStarted，版本不符回傳 ErrVersionConflict。
	SetAssignments(ctx context.Context, roomID string, expectedVersion int64, assignments map[string]string, startedAt time.Time) error

	// UpdateWishlist 覆寫參與者的願望清單
	UpdateWishlist(ctx context.Context, roomID, participantID string, wishlist []string) error
}
