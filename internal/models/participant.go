package models

import "time"

// Participant 表示房間中的一位參與者
type Participant struct {
	ID       string
	Name     string
	JoinedAt time.Time
	Token    string   // 只會回傳給本人
	Wishlist []string // 願望清單，抽到此人的參與者可以看到
}

// Clone 深拷貝參與者
func (p Participant) Clone() Participant {
	if p.Wishlist != nil {
		p.Wishlist = append([]string(nil), p.Wishlist...)
	}
	return p
}

// Public 轉換為公開資訊
func (p Participant) Public() PublicParticipant {
	return PublicParticipant{ID: p.ID, Name: p.Name, JoinedAt: p.JoinedAt}
}

// PublicParticipant 是參與者的公開投影
type PublicParticipant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ParticipantRef 只帶 ID 與名稱
type ParticipantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SelfInfo 是參與者以自己的 token 查詢到的資訊
type SelfInfo struct {
	Participant SelfParticipant `json:"participant"`
	AssignedTo  *AssignedTo     `json:"assignedTo,omitempty"`
}

type SelfParticipant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	IsOwner  bool     `json:"isOwner"`
	Wishlist []string `json:"wishlist"`
}

type AssignedTo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Wishlist []string `json:"wishlist"`
}
