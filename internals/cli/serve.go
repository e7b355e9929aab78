package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"fcehub_backend/internals/configs"
	database "fcehub_backend/internals/databases"
	appScheduler "fcehub_backend/internals/features/applications/scheduler"
	authScheduler "fcehub_backend/internals/features/users/auth/scheduler"
	helper "fcehub_backend/internals/helpers"
	middlewares "fcehub_backend/internals/middlewares"
	routes "fcehub_backend/internals/route"
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and in-process schedulers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default $PORT or 3000)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "auto-migrate on start (overridden by DB_AUTO_MIGRATE)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 🔌 DB connect + pool + warm-up
	if err := openDB(configs.GetEnvBool("DB_AUTO_MIGRATE", serveMigrate)); err != nil {
		return err
	}
	defer closeDB()
	database.WarmUpQueries()

	// shared limiter counters when several instances run behind a balancer
	if configs.RedisURL != "" {
		store, err := middlewares.NewRedisStorage(configs.RedisURL)
		if err != nil {
			return fmt.Errorf("rate limit storage: %w", err)
		}
		defer store.Close()
		middlewares.UseLimiterStorage(store)
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               configs.GetEnvInt("HTTP_BODY_LIMIT", 12<<20),
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ReadTimeout:             15 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             90 * time.Second,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing + per-request deadline
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("requestid", id)
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	svc := routes.NewServices(database.DB)
	routes.SetupRoutes(app, svc)

	// ⏱ schedulers after the DB is ready
	jobs := cron.New()
	if _, err := authScheduler.RegisterBlacklistCleanup(jobs, svc.Auth); err != nil {
		return fmt.Errorf("blacklist cleanup schedule: %w", err)
	}
	if _, err := appScheduler.RegisterExpireSweep(jobs, svc.Manager, configs.ExpireSweepCron); err != nil {
		return fmt.Errorf("expire sweep schedule: %w", err)
	}
	jobs.Start()

	port := servePort
	if port == "" {
		port = configs.GetEnv("PORT", "3000")
	}
	listenErr := make(chan error, 1)
	go func() {
		log.Printf("✅ Listening on :%s", port)
		listenErr <- app.Listen("0.0.0.0:" + port)
	}()

	// graceful shutdown: stop accepting, finish jobs and queued emails, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var err error
	select {
	case <-quit:
	case err = <-listenErr:
		log.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	<-jobs.Stop().Done()
	svc.Mailer.Wait()
	log.Println("👋 bye")
	return err
}
