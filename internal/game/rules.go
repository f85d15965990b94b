package game

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/economy"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/mapgen"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/spawn"
)

// MaxMapDimension bounds the width and height of a match map
const MaxMapDimension = 256

// ErrInvalidRules wraps every rules validation failure
var ErrInvalidRules = errors.New("invalid rules")

// Rules is the full balance sheet of a match. The engine reads nothing
// global; callers build Rules from config or start from DefaultRules.
type Rules struct {
	Map     mapgen.MapConfig
	Economy economy.Config
	Spawn   spawn.Config

	// UnitSpeed is the walk animation speed in tiles per second
	UnitSpeed float64

	// CapturePoints placed at match setup
	CapturePoints int
}

// DefaultRules returns the stock rules for a w x h map
func DefaultRules(w, h int) Rules {
	return Rules{
		Map:           mapgen.DefaultMapConfig(w, h),
		Economy:       economy.DefaultConfig(),
		Spawn:         spawn.DefaultConfig(),
		UnitSpeed:     1.0,
		CapturePoints: 3,
	}
}

// Validate checks the values the engine relies on
func (r Rules) Validate() error {
	if r.Map.Width < 4 || r.Map.Height < 2 {
		return fmt.Errorf("map %dx%d is too small", r.Map.Width, r.Map.Height)
	}
	if r.Map.Width > MaxMapDimension || r.Map.Height > MaxMapDimension {
		return fmt.Errorf("map %dx%d exceeds %d tiles per side", r.Map.Width, r.Map.Height, MaxMapDimension)
	}
	if r.UnitSpeed <= 0 {
		return fmt.Errorf("unit speed must be positive, got %v", r.UnitSpeed)
	}
	if r.CapturePoints < 0 {
		return fmt.Errorf("capture point count must not be negative")
	}
	if len(r.Economy.UnitStats) == 0 {
		return fmt.Errorf("no unit kinds configured")
	}
	for kind, s := range r.Economy.UnitStats {
		if s.MaxHP <= 0 || s.Cost < 0 || s.MoveRange < 0 || s.AttackRange < 0 {
			return fmt.Errorf("invalid stats for %s", kind)
		}
	}
	if r.Economy.CapturePointMinValue > r.Economy.CapturePointMaxValue {
		return fmt.Errorf("capture point value range [%d,%d] is empty",
			r.Economy.CapturePointMinValue, r.Economy.CapturePointMaxValue)
	}
	if r.Economy.CaptureSpeed <= 0 {
		return fmt.Errorf("capture speed must be positive")
	}
	return nil
}
