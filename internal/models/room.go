package models

import (
	"crypto/subtle"
	"time"
)

// Room 表示一個交換禮物的抽籤房間
type Room struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	OwnerToken   string        // 與房主參與者的 token 相同
	Participants []Participant // 依加入順序
	StartedAt    *time.Time    // 抽籤完成時間，nil 表示尚未開始
	Assignments  map[string]string
	Version      int64 // 每次成員變動遞增
}

// IsStarted 抽籤是否已完成
func (r *Room) IsStarted() bool {
	return r.StartedAt != nil
}

// IsOwnerToken 以常數時間比對房主 token
func (r *Room) IsOwnerToken(token string) bool {
	return TokenEqual(r.OwnerToken, token)
}

// Owner 回傳房主參與者
func (r *Room) Owner() (*Participant, bool) {
	return r.ParticipantByToken(r.OwnerToken)
}

// Participant 依 ID 查找參與者
func (r *Room) Participant(id string) (*Participant, bool) {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return &r.Participants[i], true
		}
	}
	return nil, false
}

// ParticipantByToken 依 token 查找參與者
func (r *Room) ParticipantByToken(token string) (*Participant, bool) {
	if token == "" {
		return nil, false
	}
	for i := range r.Participants {
		if TokenEqual(r.Participants[i].Token, token) {
			return &r.Participants[i], true
		}
	}
	return nil, false
}

// ParticipantIDs 依加入順序回傳所有參與者 ID
func (r *Room) ParticipantIDs() []string {
	ids := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Clone 深拷貝房間，儲存層回傳快照時使用
func (r *Room) Clone() *Room {
	c := *r
	c.Participants = make([]Participant, len(r.Participants))
	for i, p := range r.Participants {
		c.Participants[i] = p.Clone()
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.Assignments != nil {
		c.Assignments = make(map[string]string, len(r.Assignments))
		for k, v := range r.Assignments {
			c.Assignments[k] = v
		}
	}
	return &c
}

// Public 轉換為對外公開的房間資訊，不含任何 token 與抽籤結果
func (r *Room) Public() PublicRoom {
	participants := make([]PublicParticipant, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = p.Public()
	}
	room := PublicRoom{
		ID:           r.ID,
		Name:         r.Name,
		CreatedAt:    r.CreatedAt,
		Participants: participants,
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		room.StartedAt = &t
	}
	return room
}

// PublicRoom 是房間的公開投影
type PublicRoom struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	CreatedAt    time.Time           `json:"createdAt"`
	StartedAt    *time.Time          `json:"startedAt,omitempty"`
	Participants []PublicParticipant `json:"participants"`
}

// TokenEqual 以常數時間比較兩個 token，空字串永遠不相等
func TokenEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
