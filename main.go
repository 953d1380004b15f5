package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"secret_santa/internal/api"
	"secret_santa/internal/repository"
	"secret_santa/internal/service"
	"secret_santa/internal/storage"
	"secret_santa/internal/utils"
	"secret_santa/pkg/config"
)

const (
	purgeInterval   = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg.Log)
	logrus.WithField("storage", cfg.Storage.Driver).Info("Starting secret santa server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化房間儲存
	roomRepo, closeStorage, err := openRoomRepository(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeStorage()

	// Redis 只用於限流，未啟用時不連線
	var rateLimitRepo repository.RateLimitRepository
	if cfg.Redis.Enabled {
		rdb, err := storage.NewRedisClient(ctx, storage.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logrus.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		rateLimitRepo = repository.NewRedisRateLimitRepository(rdb, cfg.Redis.KeyPrefix)
		logrus.Info("Redis rate limiting enabled")
	}

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(roomRepo, rateLimitRepo)
	services := service.NewServices(repos)

	// 記憶體中的房間被淘汰時，中斷還連著的 WebSocket
	if memRepo, ok := roomRepo.(*repository.MemoryRoomRepository); ok {
		memRepo.OnEvict(services.WebSocket.CloseRoom)
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = uuid.NewString()
		logrus.Warn("session.secret is not set, using a random secret; sessions will not survive a restart")
	}
	signer, err := utils.NewSessionSigner(secret, cfg.Session.TTL)
	if err != nil {
		logrus.Fatalf("Failed to create session signer: %v", err)
	}

	// 設置 Gin 路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	api.SetupRoutes(r, services, signer, api.RouteOptions{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		RateLimiter:     rateLimitRepo,
		RateLimitCount:  cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		logrus.Infof("Server listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	logrus.Info("Server exited")
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Invalid log level %q, falling back to info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
}

// openRoomRepository 依設定建立房間儲存，回傳的 close 函數負責釋放連線
func openRoomRepository(ctx context.Context, cfg *config.Config) (repository.RoomRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := storage.NewPostgresDB(storage.PostgresOptions{
			Host:     cfg.DB.Host,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Name:     cfg.DB.Name,
			Port:     cfg.DB.Port,
			SSLMode:  cfg.DB.SSLMode,
			TimeZone: cfg.DB.TimeZone,
		})
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewPostgresRoomRepository(db)
		// 自動遷移資料庫結構
		if err := repo.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		go purgeExpiredRooms(ctx, repo, cfg.Storage.Retention)

		return repo, func() { db.Close() }, nil

	case config.DriverMongo:
		db, err := storage.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewMongoRoomRepository(db, cfg.Mongo.Collection)
		if err := repo.EnsureIndexes(ctx, cfg.Storage.Retention); err != nil {
			db.Close(context.Background())
			return nil, nil, err
		}

		return repo, func() { db.Close(context.Background()) }, nil

	default:
		repo := repository.NewMemoryRoomRepository(cfg.Storage.MemoryCapacity)
		return repo, func() {}, nil
	}
}

type roomPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// purgeExpiredRooms 定期刪除超過保存期限的房間，直到 ctx 結束
func purgeExpiredRooms(ctx context.Context, purger roomPurger, retention time.Duration) {
	if retention <= 0 {
		return
	}

	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := purger.PurgeBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				logrus.WithError(err).Error("Failed to purge expired rooms")
				continue
			}
			if purged > 0 {
				logrus.WithField("rooms", purged).Info("Purged expired rooms")
			}
		}
	}
}
