package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/motogp-standings/internal/api/http"
	"github.com/i474232898/motogp-standings/internal/scheduler"
)

const appName = "motogp-standings"

func NewServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the web front-end and the cache warm-up job",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()
			if port != "" {
				rt.cfg.Port = port
			}
			return serve(rt)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides MOTOGP_PORT)")
	return cmd
}

func serve(rt *deps) error {
	sched := scheduler.New(rt.cfg.WarmSeasons, rt.cfg.WarmInterval, rt.service, rt.logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := newServer(rt)

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("listening", zap.String("port", rt.cfg.Port))
		errCh <- app.Listen(":" + rt.cfg.Port)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		rt.logger.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}

func newServer(rt *deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, rt.service, rt.logger)
	return app
}
