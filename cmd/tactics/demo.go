package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/IsoTactics/internal/config"
	"github.com/mitchelldurbincs/IsoTactics/internal/game"
)

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "play a headless match between two random players",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seed", Usage: "match seed; 0 picks one from the clock"},
			&cli.IntFlag{Name: "width", Usage: "board width; 0 uses config"},
			&cli.IntFlag{Name: "height", Usage: "board height; 0 uses config"},
			&cli.IntFlag{Name: "max-turns", Usage: "stop after this many turns; 0 uses config"},
			&cli.BoolFlag{Name: "no-color", Usage: "print the board without ANSI colors"},
			&cli.BoolFlag{Name: "quiet", Usage: "only print the final board"},
		},
		Action: runDemo,
	}
}

func runDemo(ctx context.Context, cmd *cli.Command) error {
	cfg, err := initConfig(cmd)
	if err != nil {
		return err
	}

	width, height := int(cmd.Int("width")), int(cmd.Int("height"))
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: width and height must not be negative", errUsage)
	}
	maxTurns := int(cmd.Int("max-turns"))
	if maxTurns <= 0 {
		maxTurns = cfg.Server.Demo.MaxTurns
	}
	seed := int64(cmd.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine, err := game.NewEngine(ctx, game.GameConfig{
		Rules:  config.RulesFromConfig(cfg, width, height),
		Seed:   seed,
		Logger: log.Logger,
	})
	if err != nil {
		return err
	}

	color := !cmd.Bool("no-color")
	quiet := cmd.Bool("quiet")
	rng := rand.New(rand.NewSource(seed))

	log.Info().
		Str("match_id", engine.MatchID()).
		Int64("seed", seed).
		Int("max_turns", maxTurns).
		Msg("Starting demo match")

	for engine.TurnCount() < maxTurns && !engine.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return err
		}
		player := engine.CurrentPlayer()
		applied, rejected := game.PlayRandomTurn(engine, rng)
		if !quiet {
			fmt.Printf("Round %d, player %d (%d applied, %d rejected):\n%s\n",
				engine.Round(), player, applied, rejected, engine.Board(color))
		}
	}

	fmt.Println(engine.Board(color))
	if engine.IsGameOver() {
		fmt.Printf("Player %d wins after %d turns\n", engine.GetWinner(), engine.TurnCount())
	} else {
		fmt.Printf("No winner after %d turns\n", engine.TurnCount())
	}
	return nil
}
