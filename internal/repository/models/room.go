package models

import (
	"time"
)

// Room 是房間在 PostgreSQL 中的資料列
type Room struct {
	ID           string        `gorm:"primaryKey;size:64"`
	Name         string        `gorm:"not null"`
	OwnerToken   string        `gorm:"size:64;not null"`
	StartedAt    *time.Time    // NULL 表示尚未抽籤
	Version      int64         `gorm:"not null;default:0"`
	CreatedAt    time.Time     `gorm:"index;not null"` // 保留策略依此欄位清除
	Participants []Participant `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	Assignments  []Assignment  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

func (Room) TableName() string { return "rooms" }

// Participant 是參與者資料列，Position 保存加入順序
type Participant struct {
	ID       string    `gorm:"primaryKey;size:64"`
	RoomID   string    `gorm:"index;size:64;not null"`
	Position int64     `gorm:"not null"`
	Name     string    `gorm:"not null"`
	Token    string    `gorm:"size:64;not null"`
	JoinedAt time.Time `gorm:"not null"`
	Wishlist []string  `gorm:"serializer:json"`
}

func (Participant) TableName() string { return "participants" }

// Assignment 是一筆送禮者 → 收禮者的紀錄
type Assignment struct {
	RoomID      string `gorm:"primaryKey;size:64"`
	GiverID     string `gorm:"primaryKey;size:64"`
	RecipientID string `gorm:"size:64;not null"`
}

func (Assignment) TableName() string { return "assignments" }
