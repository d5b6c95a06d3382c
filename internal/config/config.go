package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/example/bastion/internal/core/vitals"
)

// Settings are the runtime knobs read from the environment.
type Settings struct {
	DBPath     string `env:"BASTION_DB_PATH"`
	Timezone   string `env:"BASTION_TIMEZONE"    envDefault:"Europe/Paris"`
	MidnightAt string `env:"BASTION_MIDNIGHT_AT" envDefault:"00:00"`
	MorningAt  string `env:"BASTION_MORNING_AT"  envDefault:"08:00"`
	TuningPath string `env:"BASTION_TUNING_PATH"`
	RNGSeed    uint64 `env:"BASTION_RNG_SEED"` // 0 means seed from crypto/rand
	User       string `env:"BASTION_USER"`     // default actor for user-scoped commands
}

// Tuning holds the game-balance constants (tuning.yaml).
type Tuning struct {
	MaxHP     int `yaml:"max_hp"`
	MaxPM     int `yaml:"max_pm"`
	MaxHunger int `yaml:"max_hunger"`
	MaxPA     int `yaml:"max_pa"`

	PARegen           int `yaml:"pa_regen"`
	PARegenStarving   int `yaml:"pa_regen_starving"`
	StarvingThreshold int `yaml:"starving_threshold"`
	AgonyDeathDays    int `yaml:"agony_death_days"`

	DailyExpeditionCost int     `yaml:"daily_expedition_cost"`
	EmergencyVoteRatio  float64 `yaml:"emergency_vote_ratio"`
	MaxExpeditionDays   int     `yaml:"max_expedition_days"`
}

// Config is the fully resolved configuration.
type Config struct {
	Settings
	Tuning   Tuning
	Location *time.Location
}

// DefaultTuning returns the stock balance constants.
func DefaultTuning() Tuning {
	lim := vitals.DefaultLimits()
	return Tuning{
		MaxHP:               lim.MaxHP,
		MaxPM:               lim.MaxPM,
		MaxHunger:           lim.MaxHunger,
		MaxPA:               lim.MaxPA,
		PARegen:             lim.PARegen,
		PARegenStarving:     lim.PARegenStarving,
		StarvingThreshold:   lim.StarvingThreshold,
		AgonyDeathDays:      lim.AgonyDeathDays,
		DailyExpeditionCost: 2,
		EmergencyVoteRatio:  0.5,
		MaxExpeditionDays:   14,
	}
}

// Limits converts the tuning into the vitals engine's limits.
func (t Tuning) Limits() vitals.Limits {
	return vitals.Limits{
		MaxHP:             t.MaxHP,
		MaxPM:             t.MaxPM,
		MaxHunger:         t.MaxHunger,
		MaxPA:             t.MaxPA,
		PARegen:           t.PARegen,
		PARegenStarving:   t.PARegenStarving,
		StarvingThreshold: t.StarvingThreshold,
		AgonyDeathDays:    t.AgonyDeathDays,
	}
}

// LoadTuning reads a tuning file over the defaults.
// Keys absent from the file keep their default value.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	if s.DBPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return s, err
		}
		s.DBPath = p
	}
	return s, nil
}

// Load merges defaults, the tuning file (when configured) and the
// environment, then validates the result.
func Load() (*Config, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	tuning := DefaultTuning()
	if settings.TuningPath != "" {
		tuning, err = LoadTuning(settings.TuningPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{Settings: settings, Tuning: tuning}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and resolves the reference timezone.
func (c *Config) Validate() error {
	var errs []error

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err))
	} else {
		c.Location = loc
	}
	if _, _, err := ParseClock(c.MidnightAt); err != nil {
		errs = append(errs, fmt.Errorf("BASTION_MIDNIGHT_AT: %w", err))
	}
	if _, _, err := ParseClock(c.MorningAt); err != nil {
		errs = append(errs, fmt.Errorf("BASTION_MORNING_AT: %w", err))
	}

	t := c.Tuning
	for name, v := range map[string]int{
		"max_hp":                t.MaxHP,
		"max_pm":                t.MaxPM,
		"max_hunger":            t.MaxHunger,
		"max_pa":                t.MaxPA,
		"agony_death_days":      t.AgonyDeathDays,
		"daily_expedition_cost": t.DailyExpeditionCost,
		"max_expedition_days":   t.MaxExpeditionDays,
	} {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1 (got %d)", name, v))
		}
	}
	if t.MaxHP < 2 {
		errs = append(errs, fmt.Errorf("max_hp must leave room above agony (got %d)", t.MaxHP))
	}
	if t.PARegen < 0 || t.PARegenStarving < 0 || t.StarvingThreshold < 0 {
		errs = append(errs, errors.New("pa regen amounts and starving threshold must not be negative"))
	}
	if t.EmergencyVoteRatio <= 0 || t.EmergencyVoteRatio > 1 {
		errs = append(errs, fmt.Errorf("emergency_vote_ratio must be in (0, 1] (got %v)", t.EmergencyVoteRatio))
	}

	return errors.Join(errs...)
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// DefaultDBPath returns ~/.bastion/bastion.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".bastion", "bastion.db"), nil
}
