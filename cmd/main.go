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

	_ "time/tzdata" // Load timezone data

	"github.com/redis/go-redis/v9"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/Patator33/Gestion-locative/internal/app"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/internal/server"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-middleware"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func main() {
	utils.InitLogger(config.AppName)
	if err := rootCmd().Execute(); err != nil {
		utils.Logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Rental management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	cmd.AddCommand(serveCmd(), migrateCmd(), remindCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			return app.MigrateUp(cfg.DBUrl)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			return app.MigrateDown(cfg.DBUrl, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one scheduled reminder pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			application, err := app.NewApp(cfg)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			defer application.Close()

			notifications := services.NewNotificationService(cfg, application.Store)
			reminders := services.NewReminderService(cfg, application.Store, notifications,
				services.NewDelivery(cfg), utils.RealClock())

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ReminderRunTimeout)
			defer cancel()
			summary, err := reminders.RunScheduledReminders(ctx)
			if err != nil {
				return err
			}
			utils.Logger.Infof("Reminder pass done: owners=%d due=%d sent=%d sms=%d failed=%d",
				summary.Owners, summary.Due, summary.Sent, summary.SMSSent, summary.Failed)
			return nil
		},
	}
}

func serve() error {
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer application.Close()

	// Conditionally seed demo data if the feature flag is enabled.
	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedDemoData(context.Background(), application.Store, time.Now().UTC()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	blobs, err := services.NewLocalBlobStore(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("init uploads dir: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitBurst)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter.WithShared(middleware.NewRedisCounter(rdb, cfg.AppName+":auth"))
		utils.Logger.Info("Auth rate limit shared through Redis")
	}

	srv := server.New(application, server.Deps{
		Clock:       utils.RealClock(),
		Delivery:    services.NewDelivery(cfg),
		Blobs:       blobs,
		AuthLimiter: limiter,
	})

	// Reminder pass and rate limiter housekeeping via cron
	c := cron.New(cron.WithLocation(cfg.Location))
	if _, err := c.AddFunc(cfg.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ReminderRunTimeout)
		defer cancel()
		if _, err := srv.Reminders.RunScheduledReminders(ctx); err != nil {
			utils.Logger.WithError(err).Error("Scheduled reminder run failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule reminders (%q): %w", cfg.ReminderCron, err)
	}
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", constants.RateLimiterCleanupEvery), func() {
		if n := limiter.Cleanup(constants.RateLimiterMaxIdle); n > 0 {
			utils.Logger.Debugf("Dropped %d idle rate limit buckets", n)
		}
	}); err != nil {
		return fmt.Errorf("schedule rate limiter cleanup: %w", err)
	}
	c.Start()

	allowedOrigins := append([]string{cfg.AppUrl}, cfg.CORSOrigins...)
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	// CORS config
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      co.Handler(srv.Handler),
		ReadTimeout:  constants.ServerReadTimeout,
		WriteTimeout: constants.ServerWriteTimeout,
		IdleTimeout:  constants.ServerIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		<-c.Stop().Done()
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		utils.Logger.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		utils.Logger.WithError(err).Error("Graceful shutdown failed")
	}
	// Wait for a running reminder pass.
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		utils.Logger.Warn("Reminder job still running at shutdown")
	}
	return nil
}
