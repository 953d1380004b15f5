package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"secret_santa/internal/api/handlers"
	"secret_santa/internal/middleware"
	"secret_santa/internal/repository"
	"secret_santa/internal/service"
	"secret_santa/internal/utils"
)

// RouteOptions 路由需要的外部設定
type RouteOptions struct {
	AllowedOrigins  []string
	RateLimiter     repository.RateLimitRepository // 為 nil 時不限流
	RateLimitCount  int
	RateLimitWindow time.Duration
}

func SetupRoutes(r *gin.Engine, services *service.Services, signer *utils.SessionSigner, opts RouteOptions) {
	// 初始化 handlers
	roomHandler := handlers.NewRoomHandler(services.Room, signer)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocket, services.Room, opts.AllowedOrigins)

	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
		})
	})

	// API 路由群組
	api := r.Group("/api")

	// 基本的健康檢查
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	rooms := api.Group("/rooms")
	rooms.Use(middleware.RateLimit(opts.RateLimiter, opts.RateLimitCount, opts.RateLimitWindow))
	rooms.Use(middleware.SessionAuth(signer))
	{
		rooms.POST("", roomHandler.CreateRoom)    // 創建房間
		rooms.GET("/:roomId", roomHandler.GetRoom) // 獲取房間信息

		// 成員
		rooms.POST("/:roomId/join", roomHandler.JoinRoom)
		rooms.GET("/:roomId/participants", roomHandler.GetParticipants)
		rooms.DELETE("/:roomId/participants/:participantId", roomHandler.RemoveParticipant)

		// 抽籤
		rooms.POST("/:roomId/start", roomHandler.StartRoom)
		rooms.GET("/:roomId/self", roomHandler.GetSelf)
		rooms.POST("/:roomId/wishlist", roomHandler.UpdateWishlist)

		// WebSocket 連接
		rooms.GET("/:roomId/ws", wsHandler.HandleWebSocket)
	}
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}

	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = allowedOrigins
	return config
}
