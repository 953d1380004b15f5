package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"secret_santa/internal/draw"
	"secret_santa/internal/models"
	"secret_santa/internal/repository"
	"secret_santa/internal/utils"
)

const (
	maxNameLength       = 80
	maxRoomNameLength   = 40
	maxWishlistItems    = 20
	maxWishlistItemSize = 200
	maxStartAttempts    = 3
	maxCreateAttempts   = 3
)

// RoomNotifier 接收房間事件，通常由 WebSocketService 實作
type RoomNotifier interface {
	BroadcastRoomEvent(roomID string, event models.RoomEvent)
	// CloseParticipant 中斷已被移除的參與者的訂閱
	CloseParticipant(roomID, participantID string)
}

type noopNotifier struct{}

func (noopNotifier) BroadcastRoomEvent(string, models.RoomEvent) {}
func (noopNotifier) CloseParticipant(string, string)             {}

// CreateRoomInput 創建房間的參數
type CreateRoomInput struct {
	RoomName string
	HostName string
}

// JoinRoomInput 加入房間的參數
type JoinRoomInput struct {
	Name string
}

// RemoveParticipantInput 房主移除參與者的參數
type RemoveParticipantInput struct {
	RoomID        string
	OwnerToken    string
	ParticipantID string
}

// UpdateWishlistInput 更新願望清單的參數
type UpdateWishlistInput struct {
	RoomID   string
	Token    string
	Wishlist []string
}

type CreateRoomResult struct {
	Room        models.PublicRoom
	OwnerToken  string
	Participant models.ParticipantRef
}

type JoinRoomResult struct {
	Room        models.PublicRoom
	Participant models.ParticipantRef
	Token       string
}

type StartRoomResult struct {
	StartedAt        time.Time
	AssignmentsCount int
}

// RoomService 負責房間生命週期與抽籤。
// 同一房間的所有寫入操作在 locks 之下序列化，跨程序的安全性則由儲存層的條件式寫入保證。
type RoomService struct {
	roomRepo repository.RoomRepository
	notifier RoomNotifier
	ids      *IdentifierGenerator
	locks    *roomLocks
	now      func() time.Time
	intn     draw.IntN
}

func NewRoomService(roomRepo repository.RoomRepository, notifier RoomNotifier) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &RoomService{
		roomRepo: roomRepo,
		notifier: notifier,
		ids:      NewIdentifierGenerator(roomRepo),
		locks:    newRoomLocks(),
		now:      time.Now,
	}
}

// CreateRoom 創建房間並自動加入房主
func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*CreateRoomResult, error) {
	hostName, err := normalizeName(input.HostName, "hostName")
	if err != nil {
		return nil, err
	}
	roomName, err := normalizeRoomName(input.RoomName, hostName)
	if err != nil {
		return nil, err
	}

	ownerToken := s.ids.NewSecret()
	now := s.now()
	host := models.Participant{
		ID:       s.ids.NewParticipantID(),
		Name:     hostName,
		JoinedAt: now,
		Token:    ownerToken,
		Wishlist: []string{},
	}

	for attempt := 1; ; attempt++ {
		roomID, err := s.ids.NewRoomID(ctx)
		if err != nil {
			logrus.WithError(err).Error("Failed to generate room id")
			return nil, mapRepoError(err)
		}
		logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "participant_id": host.ID})

		room := &models.Room{
			ID:           roomID,
			Name:         roomName,
			CreatedAt:    now,
			OwnerToken:   ownerToken,
			Participants: []models.Participant{host},
		}
		err = s.roomRepo.Insert(ctx, room)
		if errors.Is(err, repository.ErrDuplicateEntry) && attempt < maxCreateAttempts {
			// Exists 與 Insert 之間被其他請求搶先
			logCtx.Warn("Room id taken between check and insert, retrying")
			continue
		}
		if err != nil {
			logCtx.WithError(err).Error("Failed to save new room")
			return nil, mapRepoError(err)
		}

		logCtx.Info("Room created")
		return &CreateRoomResult{
			Room:        room.Public(),
			OwnerToken:  ownerToken,
			Participant: models.ParticipantRef{ID: host.ID, Name: host.Name},
		}, nil
	}
}

// JoinRoom 以新的參與者身分加入尚未開始的房間，名稱可以重複
func (s *RoomService) JoinRoom(ctx context.Context, roomID string, input JoinRoomInput) (*JoinRoomResult, error) {
	name, err := normalizeName(input.Name, "name")
	if err != nil {
		return nil, err
	}
	logCtx := logrus.WithField("room_id", roomID)

	unlock := s.locks.lock(roomID)
	defer unlock()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if room.IsStarted() {
		return nil, ErrRoomAlreadyStarted
	}

	participant := models.Participant{
		ID:       s.ids.NewParticipantID(),
		Name:     name,
		JoinedAt: s.now(),
		Token:    s.ids.NewSecret(),
		Wishlist: []string{},
	}
	if err := s.roomRepo.AppendParticipant(ctx, roomID, participant); err != nil {
		logCtx.WithError(err).Warn("Failed to append participant")
		return nil, mapRepoError(err)
	}
	room.Participants = append(room.Participants, participant)

	logCtx.WithField("participant_id", participant.ID).Info("Participant joined")
	s.notifier.BroadcastRoomEvent(roomID, models.NewParticipantEvent(models.EventParticipantJoined, roomID, participant))

	return &JoinRoomResult{
		Room:        room.Public(),
		Participant: models.ParticipantRef{ID: participant.ID, Name: participant.Name},
		Token:       participant.Token,
	}, nil
}

// RemoveParticipant 由房主移除一位參與者，回傳剩餘的參與者。
// 目標是房主本人時，不論 token 是否正確都回傳 ErrCannotRemoveOwner。
func (s *RoomService) RemoveParticipant(ctx context.Context, input RemoveParticipantInput) ([]models.PublicParticipant, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"room_id":        input.RoomID,
		"participant_id": input.ParticipantID,
		"token_fp":       utils.Fingerprint(input.OwnerToken),
	})

	unlock := s.locks.lock(input.RoomID)
	defer unlock()

	room, err := s.roomRepo.FindByID(ctx, input.RoomID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if owner, ok := room.Owner(); ok && owner.ID == input.ParticipantID {
		return nil, ErrCannotRemoveOwner
	}
	if !room.IsOwnerToken(input.OwnerToken) {
		logCtx.Warn("Remove participant rejected: owner token mismatch")
		return nil, ErrNotAuthorized
	}
	if room.IsStarted() {
		return nil, ErrRoomAlreadyStarted
	}
	target, ok := room.Participant(input.ParticipantID)
	if !ok {
		return nil, ErrParticipantNotFound
	}
	removed := *target

	if err := s.roomRepo.RemoveParticipant(ctx, input.RoomID, input.ParticipantID); err != nil {
		logCtx.WithError(err).Warn("Failed to remove participant")
		return nil, mapRepoError(err)
	}

	remaining := make([]models.PublicParticipant, 0, len(room.Participants)-1)
	for _, p := range room.Participants {
		if p.ID != input.ParticipantID {
			remaining = append(remaining, p.Public())
		}
	}

	logCtx.Info("Participant removed")
	s.notifier.BroadcastRoomEvent(input.RoomID, models.NewParticipantEvent(models.EventParticipantRemoved, input.RoomID, removed))
	s.notifier.CloseParticipant(input.RoomID, input.ParticipantID)
	return remaining, nil
}

// StartRoom 進行抽籤並固定結果，每個房間只會成功一次
func (s *RoomService) StartRoom(ctx context.Context, roomID, ownerToken string) (*StartRoomResult, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "token_fp": utils.Fingerprint(ownerToken)})

	unlock := s.locks.lock(roomID)
	defer unlock()

	var lastErr error
	for attempt := 1; attempt <= maxStartAttempts; attempt++ {
		room, err := s.roomRepo.FindByID(ctx, roomID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		if !room.IsOwnerToken(ownerToken) {
			logCtx.Warn("Start rejected: owner token mismatch")
			return nil, ErrNotAuthorized
		}
		if room.IsStarted() {
			return nil, ErrRoomAlreadyStarted
		}
		if len(room.Participants) < 2 {
			return nil, ErrInsufficientParticipants
		}

		assignments, err := draw.Derange(room.ParticipantIDs(), s.intn)
		if err != nil {
			logCtx.WithError(err).Error("Failed to compute assignments")
			return nil, ErrInsufficientParticipants
		}

		// 以毫秒精度保存，各儲存後端讀回的時間才會一致
		startedAt := s.now().UTC().Truncate(time.Millisecond)
		err = s.roomRepo.SetAssignments(ctx, roomID, room.Version, assignments, startedAt)
		if errors.Is(err, repository.ErrVersionConflict) {
			// 其他程序在讀取後修改了成員，重新讀取再抽一次
			logCtx.WithField("attempt", attempt).Warn("Participants changed during start, retrying")
			lastErr = err
			continue
		}
		if err != nil {
			if !errors.Is(err, repository.ErrRoomStarted) {
				logCtx.WithError(err).Error("Failed to save assignments")
			}
			return nil, mapRepoError(err)
		}

		logCtx.WithField("participants", len(assignments)).Info("Room started")
		s.notifier.BroadcastRoomEvent(roomID, models.NewRoomStartedEvent(roomID, startedAt))
		return &StartRoomResult{StartedAt: startedAt, AssignmentsCount: len(assignments)}, nil
	}

	logCtx.WithError(lastErr).Error("Giving up start after repeated conflicts")
	return nil, mapRepoError(lastErr)
}

// GetSelf 以 token 查詢自己的資訊，抽籤後一併回傳收禮者
func (s *RoomService) GetSelf(ctx context.Context, roomID, token string) (*models.SelfInfo, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	participant, ok := room.ParticipantByToken(token)
	if !ok {
		return nil, ErrParticipantNotFound
	}

	info := &models.SelfInfo{
		Participant: models.SelfParticipant{
			ID:       participant.ID,
			Name:     participant.Name,
			IsOwner:  room.IsOwnerToken(participant.Token),
			Wishlist: copyWishlist(participant.Wishlist),
		},
	}
	if recipientID, ok := room.Assignments[participant.ID]; ok {
		if recipient, ok := room.Participant(recipientID); ok {
			info.AssignedTo = &models.AssignedTo{
				ID:       recipient.ID,
				Name:     recipient.Name,
				Wishlist: copyWishlist(recipient.Wishlist),
			}
		}
	}
	return info, nil
}

// GetRoom 回傳房間公開資訊，房間不存在時回傳 nil 而不是錯誤
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.PublicRoom, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRepoError(err)
	}
	public := room.Public()
	return &public, nil
}

// GetParticipants 回傳參與者公開資訊
func (s *RoomService) GetParticipants(ctx context.Context, roomID string) ([]models.PublicParticipant, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return room.Public().Participants, nil
}

// UpdateWishlist 覆寫自己的願望清單，抽籤後仍可修改
func (s *RoomService) UpdateWishlist(ctx context.Context, input UpdateWishlistInput) ([]string, error) {
	wishlist, err := normalizeWishlist(input.Wishlist)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(input.RoomID)
	defer unlock()

	room, err := s.roomRepo.FindByID(ctx, input.RoomID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	participant, ok := room.ParticipantByToken(input.Token)
	if !ok {
		return nil, ErrParticipantNotFound
	}
	if err := s.roomRepo.UpdateWishlist(ctx, input.RoomID, participant.ID, wishlist); err != nil {
		return nil, mapRepoError(err)
	}

	participant.Wishlist = wishlist
	s.notifier.BroadcastRoomEvent(input.RoomID, models.NewParticipantEvent(models.EventWishlistUpdated, input.RoomID, *participant))
	return copyWishlist(wishlist), nil
}

func normalizeName(raw, field string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalidInput("%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", invalidInput("%s must be at most %d characters", field, maxNameLength)
	}
	return name, nil
}

// normalizeRoomName 空白房名改用「房主名稱's room」並截斷至 40 字
func normalizeRoomName(raw, hostName string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return truncateRunes(hostName+"'s room", maxRoomNameLength), nil
	}
	if utf8.RuneCountInString(name) > maxRoomNameLength {
		return "", invalidInput("roomName must be at most %d characters", maxRoomNameLength)
	}
	return name, nil
}

func normalizeWishlist(raw []string) ([]string, error) {
	wishlist := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if utf8.RuneCountInString(item) > maxWishlistItemSize {
			return nil, invalidInput("wishlist items must be at most %d characters", maxWishlistItemSize)
		}
		wishlist = append(wishlist, item)
	}
	if len(wishlist) > maxWishlistItems {
		return nil, invalidInput("wishlist must have at most %d items", maxWishlistItems)
	}
	return wishlist, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func copyWishlist(wishlist []string) []string {
	out := make([]string, len(wishlist))
	copy(out, wishlist)
	return out
}
