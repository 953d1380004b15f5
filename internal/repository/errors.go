package repository

import "errors"

// 儲存層錯誤，服務層以 errors.Is 判斷
var (
	// ErrRoomNotFound 房間不存在或已被保留策略移除
	ErrRoomNotFound = errors.New("repository: room not found")
	// ErrParticipantNotFound 房間中沒有該參與者
	ErrParticipantNotFound = errors.New("repository: participant not found")
	// ErrDuplicateEntry 房間 ID 已存在
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrRoomStarted 房間已完成抽籤，成員與抽籤結果都不可再變更
	ErrRoomStarted = errors.New("repository: room already started")
	// ErrVersionConflict 成員在讀取之後已被修改
	ErrVersionConflict = errors.New("repository: version conflict")
)
