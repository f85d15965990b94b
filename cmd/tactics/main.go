package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/IsoTactics/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	app := &cli.Command{
		Name:  "tactics",
		Usage: "isometric turn-based tactics engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to config file",
				Sources: cli.EnvVars("ISO_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error); empty uses config",
			},
		},
		Commands: []*cli.Command{
			demoCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("tactics failed")
	}
}

// initConfig loads the config file named by --config and configures the
// global logger from it
func initConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.Init(cmd.String("config")); err != nil {
		return nil, err
	}
	cfg := config.Get()

	level := cmd.String("log-level")
	if level == "" {
		level = cfg.Server.LogLevel
	}
	setupLogging(level, cfg.Server.LogFormat)
	return cfg, nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func setupLogging(level, format string) {
	zerolog.SetGlobalLevel(parseLevel(level))

	if os.Getenv("APP_ENV") == "production" || format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

var errUsage = errors.New("invalid arguments")
