package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/favourites"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes a hex secret, accepts any other value as raw bytes and
// generates one when nothing is configured.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated CSRF secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

func newRedisClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	healthChecks := map[string]http_controllers.Pinger{
		"database": db,
		"redis":    nil,
		"tasks":    nil,
	}

	// Sessions
	storeDeps := auth.StoreDeps{RedisPrefix: cfg.Redis.Prefix}
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisClient := newRedisClient(cfg.Redis)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", cfg.Redis.Addr, err)
		}

		storeDeps.RedisClient = redisClient
		healthChecks["redis"] = http_controllers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	case config.SessionStoreSQLite, "":
		if db.Driver != config.DriverSQLite {
			log.Fatalf("SQLite session store requires the sqlite database driver, got %q", db.Driver)
		}
		storeDeps.SQLDB, err = db.SQLDB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
	}

	sessionStore, err := auth.NewStore(cfg.Session.Store, storeDeps)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	log.Printf("Session store: %s", cfg.Session.Store)
	sessionManager := auth.NewSessionManager(sessionStore, cfg.Auth)

	// Services
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	catalogService := catalog.NewService(
		books.NewRepository(db.DB, books.Limits{
			MaxCoverBytes: cfg.Upload.MaxCoverBytes,
			MaxPDFBytes:   cfg.Upload.MaxPDFBytes,
		}),
		favourites.NewRepository(db.DB),
		auditService,
		cfg.Catalog.PageSize,
	)

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
	authController := auth.NewAuthController(authService, sessionManager, auditService, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	if hasUsers, err := authService.HasUsers(); err == nil && !hasUsers {
		log.Printf("No users found. Register through POST /api/auth/register or the create-user command.")
	}

	// Background work
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	var cleanupEnqueuer scheduler.CleanupEnqueuer = tasks.InlineAuditCleanup{Cleaner: auditService}
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled && db.Driver == config.DriverSQLite {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))
		go taskClient.Start(bgCtx)

		cleanupEnqueuer = taskClient
		healthChecks["tasks"] = taskClient
	} else if cfg.Tasks.Enabled {
		log.Printf("Task queue needs a SQLite database; audit cleanup runs inline")
	}

	auditScheduler := scheduler.NewAuditCleanupScheduler(cleanupEnqueuer, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	if err := auditScheduler.Start(bgCtx); err != nil {
		log.Printf("WARNING: audit cleanup disabled: %v", err)
	}

	var secret []byte
	if cfg.Auth.CSRFEnabled {
		secret, err = csrfSecret(cfg.Auth.SessionSecret)
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
	}

	if cfg.ReadOnly.Enabled {
		log.Printf("Read-only mode enabled - catalog writes will be blocked")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:        catalogService,
		Activity:       auditService,
		AuthController: authController,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Uploads:        cfg.Upload,
		ReadOnly:       readonly.NewMiddleware(cfg.ReadOnly.Enabled),
		HealthChecks:   healthChecks,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		auditScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
		authController.Stop()
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}
