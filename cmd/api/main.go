package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carebridge-chat/internal/config"
	"carebridge-chat/internal/events"
	"carebridge-chat/internal/repository"
	"carebridge-chat/internal/server"
	"carebridge-chat/internal/services"
	"carebridge-chat/internal/storage"
	"carebridge-chat/internal/websocket"
	"carebridge-chat/pkg/database"
	"carebridge-chat/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(log)
	defer log.Logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Errorf("connect database: %v", err)
		os.Exit(1)
	}
	if err := database.ApplyRawMigrations(db, "migrations"); err != nil {
		log.Errorf("apply migrations: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var uploads services.Uploader
	if cfg.Storage.Bucket != "" {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.Storage.Region,
			Bucket:     cfg.Storage.Bucket,
			AccessKey:  cfg.Storage.AccessKey,
			SecretKey:  cfg.Storage.SecretKey,
			Endpoint:   cfg.Storage.Endpoint,
			PublicBase: cfg.Storage.PublicBase,
		})
		if err != nil {
			log.Errorf("init object storage: %v", err)
			os.Exit(1)
		}
		uploads = services.NewUploadService(s3Client, cfg.Storage.MaxBytes)
	} else {
		log.Infof("object storage not configured, attachment sends will fail")
		uploads = services.NewUploadService(nil, cfg.Storage.MaxBytes)
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	publisher := events.NewRedisPublisher(redisClient)
	subscriber := events.NewRedisSubscriber(redisClient)

	authService := services.NewAuthService(userRepo, cfg)
	chatService := services.NewChatService(messageRepo, reactionRepo, groupRepo, uploads, publisher, log)
	groupService := services.NewGroupService(groupRepo, userRepo, publisher, log)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(subscriber, hub)
	go func() {
		if err := bridge.Run(ctx, []string{events.ChannelPatternAll}); err != nil && ctx.Err() == nil {
			log.Errorf("redis bridge stopped: %v", err)
		}
	}()

	router := server.NewRouter(server.Deps{
		Auth:    authService,
		Chat:    chatService,
		Groups:  groupService,
		Uploads: uploads,
		Hub:     hub,
		WSAuth:  websocket.NewChannelAuthorizer(groupRepo),
		Logger:  log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server error: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	cancel()
}
