package repository

// Repositories 集中所有儲存庫，由 main 建立後注入服務層
type Repositories struct {
	Room      RoomRepository
	RateLimit RateLimitRepository // 未啟用 Redis 時為 nil
}

func NewRepositories(room RoomRepository, rateLimit RateLimitRepository) *Repositories {
	return &Repositories{
		Room:      room,
		RateLimit: rateLimit,
	}
}
