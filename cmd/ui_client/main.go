package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/IsoTactics/internal/config"
	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	seed := flag.Int64("seed", 0, "Match seed (0 picks one from the clock)")
	player := flag.Int("player", -1, "Seat of the human player (-1 to use config default)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *player == -1 {
		*player = cfg.UI.Game.HumanPlayer
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	engine, err := game.NewEngine(context.Background(), game.GameConfig{
		Rules:  config.RulesFromConfig(cfg, 0, 0),
		Seed:   *seed,
		Logger: log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create match")
	}

	rng := rand.New(rand.NewSource(*seed + 1))
	tacticsGame := ui.NewTacticsGame(engine, *player, rng, log.Logger)

	ebiten.SetWindowSize(ui.ScreenWidth(), ui.ScreenHeight())
	ebiten.SetWindowTitle(cfg.UI.Window.Title)

	if err := ebiten.RunGame(tacticsGame); err != nil {
		log.Fatal().Err(err).Msg("UI exited")
	}
}
