package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	roomIDAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
	roomIDLength      = 6
	roomIDMaxAttempts = 10
)

// roomExistenceChecker 是產生房間 ID 時唯一需要的儲存能力
type roomExistenceChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// IdentifierGenerator 產生房間 ID、參與者 ID 與秘密 token
type IdentifierGenerator struct {
	rooms roomExistenceChecker
}

func NewIdentifierGenerator(rooms roomExistenceChecker) *IdentifierGenerator {
	return &IdentifierGenerator{rooms: rooms}
}

// NewRoomID 產生 6 碼小寫英數的房間 ID，連續碰撞 10 次後改用 UUID。
// 房間 ID 會出現在邀請連結中，只需不與現存房間重複，不需要無法猜測。
func (g *IdentifierGenerator) NewRoomID(ctx context.Context) (string, error) {
	b := make([]byte, roomIDLength)
	for attempt := 0; attempt < roomIDMaxAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = roomIDAlphabet[int(b[i])%len(roomIDAlphabet)]
		}
		id := string(b)

		exists, err := g.rooms.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check room id %s: %w", id, err)
		}
		if !exists {
			return id, nil
		}
		logrus.WithField("room_id", id).Debugf("Room id already taken, retrying (attempt %d)", attempt+1)
	}

	id := uuid.NewString()
	logrus.WithField("room_id", id).Warnf("No free short room id after %d attempts, falling back to uuid", roomIDMaxAttempts)
	return id, nil
}

// NewSecret 產生無法猜測的 token（UUID v4，來源為 crypto/rand）
func (g *IdentifierGenerator) NewSecret() string {
	return uuid.NewString()
}

// NewParticipantID 產生參與者 ID
func (g *IdentifierGenerator) NewParticipantID() string {
	return uuid.NewString()
}
