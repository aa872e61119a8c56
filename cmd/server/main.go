package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/qolzam/telar/apps/social/hashtags"
	hashtagHandlers "github.com/qolzam/telar/apps/social/hashtags/handlers"
	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/database/postgres"
	"github.com/qolzam/telar/apps/social/internal/database/schema"
	"github.com/qolzam/telar/apps/social/internal/middleware/requestid"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	"github.com/qolzam/telar/apps/social/internal/platform"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/qolzam/telar/apps/social/internal/platform/errors"
	"github.com/qolzam/telar/apps/social/internal/store"
	"github.com/qolzam/telar/apps/social/lists"
	listHandlers "github.com/qolzam/telar/apps/social/lists/handlers"
	"github.com/qolzam/telar/apps/social/posts"
	postHandlers "github.com/qolzam/telar/apps/social/posts/handlers"
	"github.com/qolzam/telar/apps/social/rooms"
	roomHandlers "github.com/qolzam/telar/apps/social/rooms/handlers"
	"github.com/qolzam/telar/apps/social/users"
	userHandlers "github.com/qolzam/telar/apps/social/users/handlers"
)

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load platform config: %v", err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg, connectPostgres); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func connectPostgres(ctx context.Context, cfg *platformconfig.Config) (*postgres.Client, error) {
	return postgres.NewClient(ctx, cfg.Database.Postgres.Client(), cfg.Database.Postgres.Database)
}

// run owns every resource it opens and releases them before returning.
func run(ctx context.Context, cfg *platformconfig.Config, connect func(context.Context, *platformconfig.Config) (*postgres.Client, error)) error {
	pgClient, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create postgres client: %w", err)
	}
	defer pgClient.Close()

	registry := schema.Default()
	// With prefork only the parent provisions, children share the result.
	if cfg.Database.Provision && !fiber.IsChild() {
		if err := schema.Provision(ctx, pgClient.DB(), registry); err != nil {
			return fmt.Errorf("failed to provision schema: %w", err)
		}
		log.Info("Schema %q provisioned", cfg.Database.Postgres.Schema)
	}

	cacheService, err := cache.NewFromConfig(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache service: %w", err)
	}
	defer cacheService.Close()

	app := newApp(cfg, pgClient, store.New(pgClient, registry), cacheService)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("Shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting Telar Social API on %s (base route %q)", addr, cfg.Server.BaseRoute)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func newApp(cfg *platformconfig.Config, pgClient *postgres.Client, st *store.Store, cacheService *cache.GenericCacheService) *fiber.App {
	baseService := platform.NewBaseService(st, cacheService, cfg)

	app := fiber.New(fiber.Config{
		Prefork:      cfg.Server.Prefork,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: errors.ErrorHandler,
	})

	app.Use(requestid.New())
	// CORS Configuration for Browser Direct Access
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pgClient.HealthCheck(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		health := fiber.Map{"status": "ok", "transactions": st.TxStats()}
		if cacheService.IsEnabled() {
			health["cache"] = cacheService.GetStats()
		}
		return c.JSON(health)
	})

	api := app.Group(cfg.Server.BaseRoute)

	posts.RegisterRoutes(api, &posts.PostsHandlers{
		PostHandler: postHandlers.NewPostHandler(baseService),
	}, cfg)
	users.RegisterRoutes(api, &users.UsersHandlers{
		UserHandler: userHandlers.NewUserHandler(baseService),
	}, cfg)
	lists.RegisterRoutes(api, &lists.ListsHandlers{
		ListHandler: listHandlers.NewListHandler(baseService),
	}, cfg)
	rooms.RegisterRoutes(api, &rooms.RoomsHandlers{
		RoomHandler: roomHandlers.NewRoomHandler(baseService),
	}, cfg)
	hashtags.RegisterRoutes(api, &hashtags.HashtagsHandlers{
		HashtagHandler: hashtagHandlers.NewHashtagHandler(baseService, cfg.Cache.TrendsTTL),
	}, cfg)

	return app
}
