package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// Config holds all configuration for the application
type Config struct {
	Game   GameConfig   `mapstructure:"game"`
	Server ServerConfig `mapstructure:"server"`
	UI     UIConfig     `mapstructure:"ui"`
}

// GameConfig holds match rules
type GameConfig struct {
	Map      MapConfig      `mapstructure:"map"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Units    UnitsConfig    `mapstructure:"units"`
	Tower    TowerConfig    `mapstructure:"tower"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Spawn    SpawnConfig    `mapstructure:"spawn"`
	Monster  CreatureConfig `mapstructure:"monster"`
	Boss     CreatureConfig `mapstructure:"boss"`
	Movement MovementConfig `mapstructure:"movement"`
}

// MapConfig holds map generation settings
type MapConfig struct {
	Width           int              `mapstructure:"width"`
	Height          int              `mapstructure:"height"`
	MinSpawnSpacing int              `mapstructure:"min_spawn_spacing"`
	MaxRetries      int              `mapstructure:"max_retries"`
	ObstacleVeins   ObstacleVeinConf `mapstructure:"obstacle_veins"`
}

// ObstacleVeinConf holds obstacle ridge generation settings
type ObstacleVeinConf struct {
	Ratio          int     `mapstructure:"ratio"`
	MinLength      int     `mapstructure:"min_length"`
	MaxLengthRatio float64 `mapstructure:"max_length_ratio"`
}

// EconomyConfig holds treasury settings
type EconomyConfig struct {
	StartingTreasury int `mapstructure:"starting_treasury"`
	EndTurnBonus     int `mapstructure:"end_turn_bonus"`
}

// UnitsConfig holds the stat line of every buildable unit kind
type UnitsConfig struct {
	Soldier UnitConfig `mapstructure:"soldier"`
	Archer  UnitConfig `mapstructure:"archer"`
	Mage    UnitConfig `mapstructure:"mage"`
	Cavalry UnitConfig `mapstructure:"cavalry"`
}

// UnitConfig is one unit kind's stats
type UnitConfig struct {
	HP              int `mapstructure:"hp"`
	Attack          int `mapstructure:"attack"`
	MoveRange       int `mapstructure:"move_range"`
	AttackRange     int `mapstructure:"attack_range"`
	TowerBuildRange int `mapstructure:"tower_build_range"`
	Cost            int `mapstructure:"cost"`
}

// TowerConfig holds tower settings
type TowerConfig struct {
	Cost        int `mapstructure:"cost"`
	HP          int `mapstructure:"hp"`
	Attack      int `mapstructure:"attack"`
	AttackRange int `mapstructure:"attack_range"`
}

// CaptureConfig holds capture point settings
type CaptureConfig struct {
	Count             int `mapstructure:"count"`
	MinValue          int `mapstructure:"min_value"`
	MaxValue          int `mapstructure:"max_value"`
	Speed             int `mapstructure:"speed"`
	MinSpacing        int `mapstructure:"min_spacing"`
	PlacementAttempts int `mapstructure:"placement_attempts"`
}

// SpawnConfig holds neutral creature cadence
type SpawnConfig struct {
	MonsterCap          int `mapstructure:"monster_cap"`
	MonsterInterval     int `mapstructure:"monster_interval"`
	MonsterMinDistance  int `mapstructure:"monster_min_distance"`
	MonsterMoveInterval int `mapstructure:"monster_move_interval"`
	BossFirstRound      int `mapstructure:"boss_first_round"`
	BossRespawnRounds   int `mapstructure:"boss_respawn_rounds"`
	BossMoveInterval    int `mapstructure:"boss_move_interval"`
	Attempts            int `mapstructure:"attempts"`
}

// CreatureConfig holds the stats of a neutral creature
type CreatureConfig struct {
	HP     int `mapstructure:"hp"`
	Attack int `mapstructure:"attack"`
	Bounty int `mapstructure:"bounty"`
}

// MovementConfig holds walk animation settings
type MovementConfig struct {
	UnitSpeed float64 `mapstructure:"unit_speed"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	LogLevel   string           `mapstructure:"log_level"`
	LogFormat  string           `mapstructure:"log_format"`
	GRPCServer GRPCServerConfig `mapstructure:"grpc_server"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Demo       DemoConfig       `mapstructure:"demo"`
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	MaxMatches            int    `mapstructure:"max_matches"`
	IdleTimeout           int    `mapstructure:"idle_timeout"`
	CleanupInterval       int    `mapstructure:"cleanup_interval"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// WebSocketConfig holds spectator hub configuration
type WebSocketConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	PingInterval    int    `mapstructure:"ping_interval"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	SendBufferSize  int    `mapstructure:"send_buffer_size"`
	ReadBufferSize  int    `mapstructure:"read_buffer_size"`
	WriteBufferSize int    `mapstructure:"write_buffer_size"`
}

// DemoConfig holds headless demo settings
type DemoConfig struct {
	MaxTurns int `mapstructure:"max_turns"`
}

// UIConfig holds UI/client configuration
type UIConfig struct {
	Window WindowConfig `mapstructure:"window"`
	Game   UIGameConfig `mapstructure:"game"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// UIGameConfig holds isometric rendering settings
type UIGameConfig struct {
	TileWidth   int  `mapstructure:"tile_width"`
	TileHeight  int  `mapstructure:"tile_height"`
	ShowCoords  bool `mapstructure:"show_coords"`
	HumanPlayer int  `mapstructure:"human_player"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Map defaults
	v.SetDefault("game.map.width", 20)
	v.SetDefault("game.map.height", 20)
	v.SetDefault("game.map.min_spawn_spacing", 0) // 0 = (width+height)/2
	v.SetDefault("game.map.max_retries", 20)
	v.SetDefault("game.map.obstacle_veins.ratio", 60)
	v.SetDefault("game.map.obstacle_veins.min_length", 3)
	v.SetDefault("game.map.obstacle_veins.max_length_ratio", 0.2)

	// Economy defaults
	v.SetDefault("game.economy.starting_treasury", 250)
	v.SetDefault("game.economy.end_turn_bonus", 100)

	// Unit defaults
	for kind, s := range core.DefaultUnitStats() {
		prefix := "game.units." + kind.String() + "."
		v.SetDefault(prefix+"hp", s.MaxHP)
		v.SetDefault(prefix+"attack", s.Attack)
		v.SetDefault(prefix+"move_range", s.MoveRange)
		v.SetDefault(prefix+"attack_range", s.AttackRange)
		v.SetDefault(prefix+"tower_build_range", s.TowerBuildRange)
		v.SetDefault(prefix+"cost", s.Cost)
	}

	v.SetDefault("game.tower.cost", 100)
	v.SetDefault("game.tower.hp", 100)
	v.SetDefault("game.tower.attack", 10)
	v.SetDefault("game.tower.attack_range", 3)

	v.SetDefault("game.capture.count", 3)
	v.SetDefault("game.capture.min_value", 50)
	v.SetDefault("game.capture.max_value", 100)
	v.SetDefault("game.capture.speed", 1)
	v.SetDefault("game.capture.min_spacing", 5)
	v.SetDefault("game.capture.placement_attempts", 1000)

	// Neutral creature defaults
	v.SetDefault("game.spawn.monster_cap", 5)
	v.SetDefault("game.spawn.monster_interval", 2)
	v.SetDefault("game.spawn.monster_min_distance", 3)
	v.SetDefault("game.spawn.monster_move_interval", 1)
	v.SetDefault("game.spawn.boss_first_round", 3)
	v.SetDefault("game.spawn.boss_respawn_rounds", 3)
	v.SetDefault("game.spawn.boss_move_interval", 2)
	v.SetDefault("game.spawn.attempts", 200)
	v.SetDefault("game.monster.hp", 100)
	v.SetDefault("game.monster.attack", 10)
	v.SetDefault("game.monster.bounty", 50)
	v.SetDefault("game.boss.hp", 500)
	v.SetDefault("game.boss.attack", 40)
	v.SetDefault("game.boss.bounty", 1200)

	v.SetDefault("game.movement.unit_speed", 1.0)

	// Server defaults
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.demo.max_turns", 40)

	v.SetDefault("server.grpc_server.host", "0.0.0.0")
	v.SetDefault("server.grpc_server.port", 50061)
	v.SetDefault("server.grpc_server.max_matches", 100)
	v.SetDefault("server.grpc_server.idle_timeout", 1800)
	v.SetDefault("server.grpc_server.cleanup_interval", 60)
	v.SetDefault("server.grpc_server.enable_reflection", true)
	v.SetDefault("server.grpc_server.graceful_shutdown_delay", 5)

	v.SetDefault("server.websocket.enabled", true)
	v.SetDefault("server.websocket.host", "0.0.0.0")
	v.SetDefault("server.websocket.port", 8088)
	v.SetDefault("server.websocket.ping_interval", 30)
	v.SetDefault("server.websocket.write_timeout", 10)
	v.SetDefault("server.websocket.send_buffer_size", 16)
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 4096)

	// UI defaults
	v.SetDefault("ui.window.width", 1280)
	v.SetDefault("ui.window.height", 800)
	v.SetDefault("ui.window.title", "IsoTactics")
	v.SetDefault("ui.game.tile_width", 64)
	v.SetDefault("ui.game.tile_height", 32)
	v.SetDefault("ui.game.show_coords", false)
	v.SetDefault("ui.game.human_player", 0)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/isotactics")
	}

	v.SetEnvPrefix("ISO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A named file that is missing falls back to defaults; for the
		// search path only ConfigFileNotFoundError is tolerated
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	v.Unmarshal(cfg)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. New values apply to
// matches created after the change.
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil || Validate(next) != nil {
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange()
		}
	})
}

// IdleTimeoutDuration is how long a match may sit untouched before cleanup
func (c GRPCServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Second
}

// CleanupIntervalDuration is how often idle matches are swept
func (c GRPCServerConfig) CleanupIntervalDuration() time.Duration {
	return time.Duration(c.CleanupInterval) * time.Second
}

// Validate validates the configuration values
func Validate(c *Config) error {
	g := c.Game
	if g.Map.Width < 4 || g.Map.Height < 2 {
		return fmt.Errorf("game.map must be at least 4x2")
	}
	if g.Map.Width > game.MaxMapDimension || g.Map.Height > game.MaxMapDimension {
		return fmt.Errorf("game.map must be at most %dx%d", game.MaxMapDimension, game.MaxMapDimension)
	}
	if g.Map.MinSpawnSpacing < 0 {
		return fmt.Errorf("game.map.min_spawn_spacing must be non-negative")
	}
	if g.Map.MaxRetries <= 0 {
		return fmt.Errorf("game.map.max_retries must be positive")
	}
	if g.Map.ObstacleVeins.Ratio < 0 {
		return fmt.Errorf("game.map.obstacle_veins.ratio must be non-negative")
	}
	if g.Map.ObstacleVeins.MaxLengthRatio < 0 || g.Map.ObstacleVeins.MaxLengthRatio > 1 {
		return fmt.Errorf("game.map.obstacle_veins.max_length_ratio must be between 0 and 1")
	}
	if g.Economy.StartingTreasury < 0 || g.Economy.EndTurnBonus < 0 {
		return fmt.Errorf("game.economy values must be non-negative")
	}

	units := map[string]UnitConfig{
		"soldier": g.Units.Soldier,
		"archer":  g.Units.Archer,
		"mage":    g.Units.Mage,
		"cavalry": g.Units.Cavalry,
	}
	for name, u := range units {
		if u.HP <= 0 {
			return fmt.Errorf("game.units.%s.hp must be positive", name)
		}
		if u.Attack < 0 || u.MoveRange < 0 || u.AttackRange < 0 || u.TowerBuildRange < 0 || u.Cost < 0 {
			return fmt.Errorf("game.units.%s values must be non-negative", name)
		}
	}

	if g.Tower.Cost < 0 || g.Tower.HP <= 0 {
		return fmt.Errorf("game.tower.cost must be non-negative and game.tower.hp positive")
	}
	if g.Capture.Count < 0 {
		return fmt.Errorf("game.capture.count must be non-negative")
	}
	if g.Capture.MinValue > g.Capture.MaxValue {
		return fmt.Errorf("game.capture.min_value must not exceed game.capture.max_value")
	}
	if g.Capture.Speed <= 0 || g.Capture.Speed > 100 {
		return fmt.Errorf("game.capture.speed must be between 1 and 100")
	}
	if g.Spawn.MonsterInterval <= 0 || g.Spawn.BossRespawnRounds <= 0 {
		return fmt.Errorf("game.spawn intervals must be positive")
	}
	if g.Monster.HP <= 0 || g.Boss.HP <= 0 {
		return fmt.Errorf("game.monster.hp and game.boss.hp must be positive")
	}
	if g.Movement.UnitSpeed <= 0 {
		return fmt.Errorf("game.movement.unit_speed must be positive")
	}

	if c.Server.GRPCServer.Port <= 0 || c.Server.GRPCServer.Port > 65535 {
		return fmt.Errorf("server.grpc_server.port must be between 1 and 65535")
	}
	if c.Server.GRPCServer.MaxMatches <= 0 {
		return fmt.Errorf("server.grpc_server.max_matches must be positive")
	}
	if c.Server.GRPCServer.IdleTimeout < 0 || c.Server.GRPCServer.CleanupInterval <= 0 {
		return fmt.Errorf("server.grpc_server idle_timeout must be non-negative and cleanup_interval positive")
	}
	if c.Server.WebSocket.Port <= 0 || c.Server.WebSocket.Port > 65535 {
		return fmt.Errorf("server.websocket.port must be between 1 and 65535")
	}
	if c.Server.WebSocket.PingInterval <= 0 || c.Server.WebSocket.SendBufferSize <= 0 {
		return fmt.Errorf("server.websocket ping_interval and send_buffer_size must be positive")
	}

	if c.UI.Window.Width <= 0 || c.UI.Window.Height <= 0 {
		return fmt.Errorf("ui.window dimensions must be positive")
	}
	if c.UI.Game.TileWidth <= 0 || c.UI.Game.TileHeight <= 0 {
		return fmt.Errorf("ui.game tile size must be positive")
	}
	if c.UI.Game.HumanPlayer < -1 || c.UI.Game.HumanPlayer >= core.NumPlayers {
		return fmt.Errorf("ui.game.human_player must be -1 or a valid player index")
	}

	return nil
}

// RulesFromConfig builds match rules for a w x h map from the loaded
// config. Zero dimensions use game.map.width/height.
func RulesFromConfig(c *Config, w, h int) game.Rules {
	g := c.Game
	if w <= 0 {
		w = g.Map.Width
	}
	if h <= 0 {
		h = g.Map.Height
	}

	r := game.DefaultRules(w, h)
	r.Map.VeinRatio = g.Map.ObstacleVeins.Ratio
	r.Map.VeinMinLength = g.Map.ObstacleVeins.MinLength
	r.Map.VeinMaxLengthRatio = g.Map.ObstacleVeins.MaxLengthRatio
	r.Map.MaxRetries = g.Map.MaxRetries
	if g.Map.MinSpawnSpacing > 0 {
		r.Map.MinSpawnSpacing = g.Map.MinSpawnSpacing
	}

	r.Economy.StartingTreasury = g.Economy.StartingTreasury
	r.Economy.EndTurnBonus = g.Economy.EndTurnBonus
	r.Economy.UnitStats = map[core.UnitKind]core.UnitStats{
		core.Soldier: g.Units.Soldier.stats(),
		core.Archer:  g.Units.Archer.stats(),
		core.Mage:    g.Units.Mage.stats(),
		core.Cavalry: g.Units.Cavalry.stats(),
	}
	r.Economy.TowerCost = g.Tower.Cost
	r.Economy.TowerHP = g.Tower.HP
	r.Economy.TowerAttack = g.Tower.Attack
	r.Economy.TowerAttackRange = g.Tower.AttackRange
	r.Economy.CapturePointMinValue = g.Capture.MinValue
	r.Economy.CapturePointMaxValue = g.Capture.MaxValue
	r.Economy.CaptureSpeed = g.Capture.Speed
	r.Economy.MinPointSpacing = g.Capture.MinSpacing
	r.Economy.PlacementAttempts = g.Capture.PlacementAttempts
	r.CapturePoints = g.Capture.Count

	r.Spawn.MonsterCap = g.Spawn.MonsterCap
	r.Spawn.MonsterSpawnInterval = g.Spawn.MonsterInterval
	r.Spawn.MonsterMinDistance = g.Spawn.MonsterMinDistance
	r.Spawn.MonsterMoveInterval = g.Spawn.MonsterMoveInterval
	r.Spawn.MonsterHP = g.Monster.HP
	r.Spawn.MonsterAttack = g.Monster.Attack
	r.Spawn.MonsterBounty = g.Monster.Bounty
	r.Spawn.BossFirstRound = g.Spawn.BossFirstRound
	r.Spawn.BossRespawnRounds = g.Spawn.BossRespawnRounds
	r.Spawn.BossMoveInterval = g.Spawn.BossMoveInterval
	r.Spawn.BossHP = g.Boss.HP
	r.Spawn.BossAttack = g.Boss.Attack
	r.Spawn.BossBounty = g.Boss.Bounty
	r.Spawn.SpawnAttempts = g.Spawn.Attempts

	r.UnitSpeed = g.Movement.UnitSpeed
	return r
}

func (u UnitConfig) stats() core.UnitStats {
	return core.UnitStats{
		MaxHP:           u.HP,
		Attack:          u.Attack,
		MoveRange:       u.MoveRange,
		AttackRange:     u.AttackRange,
		TowerBuildRange: u.TowerBuildRange,
		Cost:            u.Cost,
	}
}
