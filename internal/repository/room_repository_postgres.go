package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"secret_santa/internal/models"
	records "secret_santa/internal/repository/models"
	"secret_santa/internal/storage"
)

// postgresRoomRepository 以 gorm 實作 RoomRepository。
// 每個寫入操作都在單一交易內完成，條件式 UPDATE 的列鎖負責同一房間的序列化。
type postgresRoomRepository struct {
	db *storage.PostgresDB
}

func NewPostgresRoomRepository(db *storage.PostgresDB) *postgresRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for postgresRoomRepository")
	}
	return &postgresRoomRepository{db: db}
}

// Migrate 建立房間相關的資料表
func (r *postgresRoomRepository) Migrate() error {
	return r.db.AutoMigrate(&records.Room{}, &records.Participant{}, &records.Assignment{})
}

func (r *postgresRoomRepository) Insert(ctx context.Context, room *models.Room) error {
	record := toRoomRecord(room)
	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: insert room %s: %w", room.ID, err)
	}
	return nil
}

func (r *postgresRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var record records.Room
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Assignments").
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room %s: %w", id, err)
	}
	return fromRoomRecord(&record), nil
}

func (r *postgresRoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&records.Room{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count rooms by id %s: %w", id, err)
	}
	return count > 0, nil
}

func (r *postgresRoomRepository) AppendParticipant(ctx context.Context, roomID string, participant models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := bumpVersion(tx, roomID)
		if err != nil {
			return err
		}
		record := toParticipantRecord(roomID, version, participant)
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("gorm: insert participant into room %s: %w", roomID, err)
		}
		return nil
	})
}

func (r *postgresRoomRepository) RemoveParticipant(ctx context.Context, roomID, participantID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := bumpVersion(tx, roomID); err != nil {
			return err
		}
		result := tx.Where("room_id = ? AND id = ?", roomID, participantID).Delete(&records.Participant{})
		if result.Error != nil {
			return fmt.Errorf("gorm: delete participant %s: %w", participantID, result.Error)
		}
		if result.RowsAffected == 0 {
			// 回滾版本遞增
			return ErrParticipantNotFound
		}
		return nil
	})
}

func (r *postgresRoomRepository) SetAssignments(ctx context.Context, roomID string, expectedVersion int64, assignments map[string]string, startedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&records.Room{}).
			Where("id = ? AND version = ? AND started_at IS NULL", roomID, expectedVersion).
			Update("started_at", startedAt)
		if result.Error != nil {
			return fmt.Errorf("gorm: start room %s: %w", roomID, result.Error)
		}
		if result.RowsAffected == 0 {
			return explainRejectedWrite(tx, roomID)
		}

		rows := make([]records.Assignment, 0, len(assignments))
		for giver, recipient := range assignments {
			rows = append(rows, records.Assignment{RoomID: roomID, GiverID: giver, RecipientID: recipient})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("gorm: insert assignments for room %s: %w", roomID, err)
			}
		}
		return nil
	})
}

func (r *postgresRoomRepository) UpdateWishlist(ctx context.Context, roomID, participantID string, wishlist []string) error {
	result := r.db.WithContext(ctx).Model(&records.Participant{}).
		Where("room_id = ? AND id = ?", roomID, participantID).
		Select("wishlist").
		Updates(&records.Participant{Wishlist: wishlist})
	if result.Error != nil {
		return fmt.Errorf("gorm: update wishlist of %s: %w", participantID, result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.Exists(ctx, roomID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRoomNotFound
		}
		return ErrParticipantNotFound
	}
	return nil
}

// PurgeBefore 刪除在 cutoff 之前建立的房間，回傳刪除數量
func (r *postgresRoomRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&records.Room{}).Select("id").Where("created_at < ?", cutoff)
		if err := tx.Where("room_id IN (?)", expired).Delete(&records.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id IN (?)", expired).Delete(&records.Participant{}).Error; err != nil {
			return err
		}
		result := tx.Where("created_at < ?", cutoff).Delete(&records.Room{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("gorm: purge rooms before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return purged, nil
}

// bumpVersion 只對尚未開始的房間遞增版本並回傳新版本，同時鎖住該房間的資料列
func bumpVersion(tx *gorm.DB, roomID string) (int64, error) {
	result := tx.Model(&records.Room{}).
		Where("id = ? AND started_at IS NULL", roomID).
		UpdateColumn("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: bump version of room %s: %w", roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, explainRejectedWrite(tx, roomID)
	}
	var version int64
	if err := tx.Model(&records.Room{}).Where("id = ?", roomID).Pluck("version", &version).Error; err != nil {
		return 0, fmt.Errorf("gorm: read version of room %s: %w", roomID, err)
	}
	return version, nil
}

// explainRejectedWrite 在條件式 UPDATE 沒有影響任何列時找出原因
func explainRejectedWrite(tx *gorm.DB, roomID string) error {
	var record records.Room
	err := tx.Select("id", "started_at", "version").First(&record, "id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("gorm: reload room %s: %w", roomID, err)
	}
	if record.StartedAt != nil {
		return ErrRoomStarted
	}
	return ErrVersionConflict
}

func toRoomRecord(room *models.Room) records.Room {
	record := records.Room{
		ID:         room.ID,
		Name:       room.Name,
		OwnerToken: room.OwnerToken,
		StartedAt:  room.StartedAt,
		Version:    room.Version,
		CreatedAt:  room.CreatedAt,
	}
	// 建立時的參與者使用負數位置，之後加入者以遞增後的版本號為位置，順序因此保持不變
	for i, p := range room.Participants {
		record.Participants = append(record.Participants, toParticipantRecord(room.ID, int64(i)-int64(len(room.Participants)), p))
	}
	for giver, recipient := range room.Assignments {
		record.Assignments = append(record.Assignments, records.Assignment{RoomID: room.ID, GiverID: giver, RecipientID: recipient})
	}
	return record
}

func toParticipantRecord(roomID string, position int64, p models.Participant) records.Participant {
	return records.Participant{
		ID:       p.ID,
		RoomID:   roomID,
		Position: position,
		Name:     p.Name,
		Token:    p.Token,
		JoinedAt: p.JoinedAt,
		Wishlist: p.Wishlist,
	}
}

func fromRoomRecord(record *records.Room) *models.Room {
	room := &models.Room{
		ID:         record.ID,
		Name:       record.Name,
		CreatedAt:  record.CreatedAt,
		OwnerToken: record.OwnerToken,
		StartedAt:  record.StartedAt,
		Version:    record.Version,
	}
	room.Participants = make([]models.Participant, len(record.Participants))
	for i, p := range record.Participants {
		room.Participants[i] = models.Participant{
			ID:       p.ID,
			Name:     p.Name,
			JoinedAt: p.JoinedAt,
			Token:    p.Token,
			Wishlist: p.Wishlist,
		}
	}
	if record.StartedAt != nil {
		room.Assignments = make(map[string]string, len(record.Assignments))
		for _, a := range record.Assignments {
			room.Assignments[a.GiverID] = a.RecipientID
		}
	}
	return room
}

var _ RoomRepository = (*postgresRoomRepository)(nil)
