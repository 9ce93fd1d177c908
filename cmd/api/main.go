package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/novel-reader/internal/api/http"
	"github.com/spec-kit/novel-reader/internal/api/http/handlers"
	"github.com/spec-kit/novel-reader/internal/auth"
	"github.com/spec-kit/novel-reader/internal/config"
	"github.com/spec-kit/novel-reader/internal/events"
	"github.com/spec-kit/novel-reader/internal/observability"
	"github.com/spec-kit/novel-reader/internal/persistence"
	"github.com/spec-kit/novel-reader/internal/repository"
	"github.com/spec-kit/novel-reader/internal/service"
	"github.com/spec-kit/novel-reader/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	storyRepo := repository.NewStoryRepository(pool)
	chapterRepo := repository.NewChapterRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	viewRepo := repository.NewViewRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService := service.NewAuthService(*cfg, userRepo)
	chapterService := service.NewChapterService(service.ChapterDependencies{
		ChapterRepo:  chapterRepo,
		StoryRepo:    storyRepo,
		PurchaseRepo: purchaseRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
		PreviewRunes: cfg.Reading.PreviewRunes,
	})
	viewService := service.NewViewService(viewRepo, dispatcher, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:             handlers.NewAuthHandler(authService),
		Chapters:         handlers.NewChaptersHandler(chapterService),
		Stories:          handlers.NewStoriesHandler(viewService),
		Admin:            handlers.NewAdminHandler(userRepo, viewRepo),
		AuthMiddleware:   authMiddleware,
		Roles:            userRepo,
		VerboseAdminGate: cfg.Auth.VerboseGate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
