package main

import (
	"fmt"
	"os"

	_ "workflo/docs"
	"workflo/internal/config"
	"workflo/internal/logger"
	"workflo/internal/migrations"
	"workflo/internal/server"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// @title           Workflo API
// @version         1.0
// @description     API for Workflo boards, contributors, invitations and tasks.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	app := &cli.App{
		Name:  "workflo",
		Usage: "Serve the Workflo API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Value:   "dev",
				Usage:   "environment: 'dev' logs in color, anything else in JSON",
				EnvVars: []string{"ENV"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file to load before reading the environment",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "port",
						Usage: "port to listen on, overrides SERVER_PORT",
					},
				},
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back the database schema",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply pending migrations",
						Action: func(cCtx *cli.Context) error {
							return withConfig(cCtx, func(cfg *config.Config, log *zap.Logger) error {
								return migrations.Up(cfg.MigrateURL(), log)
							})
						},
					},
					{
						Name:  "down",
						Usage: "roll back every migration",
						Action: func(cCtx *cli.Context) error {
							return withConfig(cCtx, func(cfg *config.Config, log *zap.Logger) error {
								return migrations.Down(cfg.MigrateURL(), log)
							})
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(cCtx *cli.Context) error {
	return withConfig(cCtx, func(cfg *config.Config, log *zap.Logger) error {
		if port := cCtx.String("port"); port != "" {
			cfg.ServerPort = port
		}

		s, err := server.Init(cfg, log)
		if err != nil {
			log.Error("Server initialization failed", zap.Error(err))
			return err
		}
		return s.Run(cCtx.Context)
	})
}

func withConfig(cCtx *cli.Context, fn func(*config.Config, *zap.Logger) error) error {
	log, err := logger.New(cCtx.String("env"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load(cCtx.String("env-file"), log)
	return fn(cfg, log)
}
