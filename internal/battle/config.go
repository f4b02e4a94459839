package battle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// --- Mechanic configuration ---

// ChargeConfig tunes the cavalry momentum mechanic.
type ChargeConfig struct {
	Enabled            bool    `yaml:"enabled"`
	MomentumPerCell    float64 `yaml:"momentum_per_cell"`
	MaxMomentum        float64 `yaml:"max_momentum"`
	MinChargeDistance  int     `yaml:"min_charge_distance"`
	ShockResolveDamage int     `yaml:"shock_resolve_damage"`
	CounterMultiplier  float64 `yaml:"counter_multiplier"`
}

// InterceptConfig tunes spear-wall interception.
type InterceptConfig struct {
	Enabled           bool    `yaml:"enabled"`
	DefaultIntercepts int     `yaml:"default_intercepts"`
	DamageMultiplier  float64 `yaml:"damage_multiplier"`
}

// PhalanxConfig tunes formation bonuses.
type PhalanxConfig struct {
	Enabled         bool `yaml:"enabled"`
	PerAllyArmor    int  `yaml:"per_ally_armor"`
	PerAllyResolve  int  `yaml:"per_ally_resolve"`
	MaxArmorBonus   int  `yaml:"max_armor_bonus"`
	MaxResolveBonus int  `yaml:"max_resolve_bonus"`
}

// LoSConfig tunes line-of-sight targeting.
type LoSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OverwatchConfig tunes reactive fire.
type OverwatchConfig struct {
	Enabled      bool `yaml:"enabled"`
	DefaultShots int  `yaml:"default_shots"`
	DefaultRange int  `yaml:"default_range"`
}

// AmmoConfig tunes the ammunition/cooldown resource tracker.
type AmmoConfig struct {
	Enabled             bool `yaml:"enabled"`
	DefaultAmmo         int  `yaml:"default_ammo"`
	DefaultCooldown     int  `yaml:"default_cooldown"`
	ReloadAmount        int  `yaml:"reload_amount"` // 0 = reload to full
	EnableMageCooldowns bool `yaml:"enable_mage_cooldowns"`
}

// MechanicsConfig aggregates every mechanic's tuning. Treat as immutable
// once built; processors copy the piece they own at construction.
type MechanicsConfig struct {
	Charge    ChargeConfig    `yaml:"charge"`
	Intercept InterceptConfig `yaml:"intercept"`
	Phalanx   PhalanxConfig   `yaml:"phalanx"`
	LoS       LoSConfig       `yaml:"line_of_sight"`
	Overwatch OverwatchConfig `yaml:"overwatch"`
	Ammo      AmmoConfig      `yaml:"ammunition"`
}

// DefaultConfig returns every mechanic enabled with baseline tunables.
func DefaultConfig() MechanicsConfig {
	return MechanicsConfig{
		Charge: ChargeConfig{
			Enabled:            true,
			MomentumPerCell:    0.2,
			MaxMomentum:        1.0,
			MinChargeDistance:  3,
			ShockResolveDamage: 5,
			CounterMultiplier:  1.5,
		},
		Intercept: InterceptConfig{
			Enabled:           true,
			DefaultIntercepts: 2,
			DamageMultiplier:  1.5,
		},
		Phalanx: PhalanxConfig{
			Enabled:         true,
			PerAllyArmor:    1,
			PerAllyResolve:  5,
			MaxArmorBonus:   5,
			MaxResolveBonus: 25,
		},
		LoS: LoSConfig{Enabled: true},
		Overwatch: OverwatchConfig{
			Enabled:      true,
			DefaultShots: 2,
			DefaultRange: 5,
		},
		Ammo: AmmoConfig{
			Enabled:             true,
			DefaultAmmo:         6,
			DefaultCooldown:     3,
			ReloadAmount:        0,
			EnableMageCooldowns: true,
		},
	}
}

// MVPPreset disables every mechanic while keeping the baseline tunables. A
// battle run under it is byte-identical to one run with no mechanics
// engine registered at all.
func MVPPreset() MechanicsConfig {
	cfg := DefaultConfig()
	cfg.Charge.Enabled = false
	cfg.Intercept.Enabled = false
	cfg.Phalanx.Enabled = false
	cfg.LoS.Enabled = false
	cfg.Overwatch.Enabled = false
	cfg.Ammo.Enabled = false
	return cfg
}

// LoadConfig reads a YAML mechanics file. Omitted fields keep their
// DefaultConfig values, so a file only needs the tunables it changes.
func LoadConfig(path string) (MechanicsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MechanicsConfig{}, fmt.Errorf("read mechanics config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MechanicsConfig{}, fmt.Errorf("parse mechanics config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return MechanicsConfig{}, fmt.Errorf("mechanics config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects malformed tuning. The engine itself never re-checks:
// a config that passes here is trusted by every processor.
func (c MechanicsConfig) Validate() error {
	if c.Charge.MomentumPerCell < 0 {
		return fmt.Errorf("charge: momentum_per_cell %v is negative", c.Charge.MomentumPerCell)
	}
	if c.Charge.MaxMomentum < 0 {
		return fmt.Errorf("charge: max_momentum %v is negative", c.Charge.MaxMomentum)
	}
	if c.Charge.MinChargeDistance < 0 {
		return fmt.Errorf("charge: min_charge_distance %d is negative", c.Charge.MinChargeDistance)
	}
	if c.Charge.ShockResolveDamage < 0 {
		return fmt.Errorf("charge: shock_resolve_damage %d is negative", c.Charge.ShockResolveDamage)
	}
	if c.Charge.CounterMultiplier < 0 {
		return fmt.Errorf("charge: counter_multiplier %v is negative", c.Charge.CounterMultiplier)
	}
	if c.Intercept.DefaultIntercepts < 0 {
		return fmt.Errorf("intercept: default_intercepts %d is negative", c.Intercept.DefaultIntercepts)
	}
	if c.Intercept.DamageMultiplier < 0 {
		return fmt.Errorf("intercept: damage_multiplier %v is negative", c.Intercept.DamageMultiplier)
	}
	if c.Phalanx.PerAllyArmor < 0 || c.Phalanx.PerAllyResolve < 0 {
		return fmt.Errorf("phalanx: per-ally bonuses must not be negative")
	}
	if c.Phalanx.MaxArmorBonus < 0 || c.Phalanx.MaxResolveBonus < 0 {
		return fmt.Errorf("phalanx: bonus caps must not be negative")
	}
	if c.Overwatch.DefaultShots < 0 {
		return fmt.Errorf("overwatch: default_shots %d is negative", c.Overwatch.DefaultShots)
	}
	if c.Overwatch.DefaultRange < 0 {
		return fmt.Errorf("overwatch: default_range %d is negative", c.Overwatch.DefaultRange)
	}
	if c.Ammo.DefaultAmmo < 0 {
		return fmt.Errorf("ammunition: default_ammo %d is negative", c.Ammo.DefaultAmmo)
	}
	if c.Ammo.DefaultCooldown < 0 {
		return fmt.Errorf("ammunition: default_cooldown %d is negative", c.Ammo.DefaultCooldown)
	}
	if c.Ammo.ReloadAmount < 0 {
		return fmt.Errorf("ammunition: reload_amount %d is negative", c.Ammo.ReloadAmount)
	}
	return nil
}
