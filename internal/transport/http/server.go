package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"desiiseb/internal/cache"
	"desiiseb/internal/config"
	"desiiseb/internal/database"
	"desiiseb/internal/handler"
	"desiiseb/internal/queue"
	"desiiseb/internal/redis"
	"desiiseb/internal/repository"
	"desiiseb/internal/service"
	"desiiseb/internal/worker"
)

// Run wires the whole application together and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	followRepo := repository.NewFollowRepository(db)
	hashtagRepo := repository.NewHashtagRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	moderationRepo := repository.NewModerationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Shared infrastructure
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	resolver := service.NewResolverService(interactionRepo)
	assembler := service.NewAssemblerService(postRepo, profileRepo, resolver)
	profileService := service.NewProfileService(profileRepo, followRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	postService := service.NewPostService(postRepo, profileRepo, hashtagRepo, assembler, publisher)
	feedService := service.NewFeedService(feedCache, postRepo, followRepo, assembler)
	interactionService := service.NewInteractionService(db, postRepo, interactionRepo, assembler, publisher)
	followService := service.NewFollowService(db, followRepo, profileRepo, publisher)
	notificationService := service.NewNotificationService(notificationRepo)
	moderationService := service.NewModerationService(db, moderationRepo, followRepo, profileRepo, postRepo, publisher)
	giphyService := service.NewGiphyService(cfg)
	hashtagService := service.NewHashtagService(hashtagRepo)

	// Stream worker: fan-out, cache maintenance and notification writes
	workerHandler := worker.NewHandler(feedCache, followRepo, postRepo, notificationRepo)
	workerManager := worker.NewManager(consumer, workerHandler, worker.DefaultManagerConfig())
	if err := workerManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start feed workers: %w", err)
	}
	defer workerManager.Stop()

	// HTTP layer
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(profileService, authService),
		UserHandler:         handler.NewUserHandler(profileService, mediaService),
		FollowHandler:       handler.NewFollowHandler(followService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		PostHandler:         handler.NewPostHandler(postService),
		InteractionHandler:  handler.NewInteractionHandler(interactionService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		MediaHandler:        handler.NewMediaHandler(mediaService),
		GiphyHandler:        handler.NewGiphyHandler(giphyService),
		ModerationHandler:   handler.NewModerationHandler(moderationService),
		HashtagHandler:      handler.NewHashtagHandler(hashtagService),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
