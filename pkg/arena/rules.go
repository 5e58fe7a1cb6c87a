package arena

import (
	"fmt"
	"time"
)

// Rules holds the arena geometry and combat constants. They are policy
// values, loaded from config and fixed for the lifetime of a match.
type Rules struct {
	Width          float64       `yaml:"width"`
	Height         float64       `yaml:"height"`
	TankSize       float64       `yaml:"tank_size"`
	TankSpeed      float64       `yaml:"tank_speed"`      // units per tick
	RotationSpeed  float64       `yaml:"rotation_speed"`  // degrees per tick
	BulletSpeed    float64       `yaml:"bullet_speed"`    // units per tick
	BulletLifetime int           `yaml:"bullet_lifetime"` // ticks
	MuzzleMargin   float64       `yaml:"muzzle_margin"`
	ShotCooldown   time.Duration `yaml:"shot_cooldown"`
	MaxHealth      int           `yaml:"max_health"`
	DamagePerHit   int           `yaml:"damage_per_hit"`
	HitPoints      int           `yaml:"hit_points"`
	KillBonus      int           `yaml:"kill_bonus"`
	NudgeDistance  float64       `yaml:"nudge_distance"`
	TankLogLimit   int           `yaml:"tank_log_limit"`
	BattleLogLimit int           `yaml:"battle_log_limit"`
	StatusTail     int           `yaml:"status_tail"`
	MaxTanks       int           `yaml:"max_tanks"`
}

// Settings are the per-match values that Start may override
type Settings struct {
	MaxRounds    int           `yaml:"max_rounds"`
	RoundTime    time.Duration `yaml:"round_time"`
	ThinkTimeout time.Duration `yaml:"think_timeout"`
}

// DefaultRules returns the stock arena
func DefaultRules() Rules {
	return Rules{
		Width:          800,
		Height:         600,
		TankSize:       20,
		TankSpeed:      2,
		RotationSpeed:  3,
		BulletSpeed:    5,
		BulletLifetime: 120,
		MuzzleMargin:   5,
		ShotCooldown:   500 * time.Millisecond,
		MaxHealth:      100,
		DamagePerHit:   25,
		HitPoints:      10,
		KillBonus:      50,
		NudgeDistance:  0.1,
		TankLogLimit:   200,
		BattleLogLimit: 200,
		StatusTail:     100,
		MaxTanks:       64,
	}
}

// DefaultSettings returns the stock match settings
func DefaultSettings() Settings {
	return Settings{
		MaxRounds:    10,
		RoundTime:    60 * time.Second,
		ThinkTimeout: 50 * time.Millisecond,
	}
}

// HalfSize is the tank radius
func (r Rules) HalfSize() float64 {
	return r.TankSize / 2
}

// Validate checks the rules for values the engine cannot run with
func (r Rules) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("arena dimensions must be positive")
	}
	if r.TankSize <= 0 || r.TankSize*2 >= r.Width || r.TankSize*2 >= r.Height {
		return fmt.Errorf("tank size must be positive and fit the arena twice over")
	}
	if r.MaxHealth <= 0 {
		return fmt.Errorf("max health must be positive")
	}
	if r.DamagePerHit <= 0 {
		return fmt.Errorf("damage per hit must be positive")
	}
	if r.BulletLifetime <= 0 {
		return fmt.Errorf("bullet lifetime must be positive")
	}
	if r.TankLogLimit <= 0 || r.BattleLogLimit <= 0 {
		return fmt.Errorf("log limits must be positive")
	}
	if r.MaxTanks < 2 {
		return fmt.Errorf("max tanks must allow at least two tanks")
	}
	return nil
}

// Validate checks the match settings
func (s Settings) Validate() error {
	if s.MaxRounds <= 0 {
		return fmt.Errorf("max rounds must be positive")
	}
	if s.RoundTime <= 0 {
		return fmt.Errorf("round time must be positive")
	}
	if s.ThinkTimeout <= 0 {
		return fmt.Errorf("think timeout must be positive")
	}
	return nil
}
