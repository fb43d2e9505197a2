package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-pipeline/internal/api/http"
)

func dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the read-only weather dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			app := fiber.New(fiber.Config{
				AppName:               "weather-pipeline",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          10 * time.Second,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					code := fiber.StatusInternalServerError
					var e *fiber.Error
					if errors.As(err, &e) {
						code = e.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			app.Use(logger.New())
			app.Use(recover.New())

			s, err := a.openStore()
			if err != nil {
				return err
			}

			dashboard := httpapi.NewDashboard(s, a.cfg.CacheTTL, a.metrics, a.log)
			httpapi.RegisterRoutes(app, dashboard, a.registry)

			listenErr := make(chan error, 1)
			go func() {
				a.log.Info().Str("port", a.cfg.Port).Msg("dashboard listening")
				listenErr <- app.Listen(":" + a.cfg.Port)
			}()

			ctx := cmd.Context()
			select {
			case err := <-listenErr:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("error during shutdown")
			}
			return nil
		},
	}
}
