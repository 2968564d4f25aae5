package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ming-00/elonpet"
)

// Config is the whole elonpet configuration
type Config struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Seed         int64         `yaml:"seed"`
	Surface      SurfaceConfig `yaml:"surface"`
	Pet          PetConfig     `yaml:"pet"`
	Speech       SpeechConfig  `yaml:"speech"`
	Log          LogConfig     `yaml:"log"`
	Memento      MementoConfig `yaml:"memento"`
	SpeciesFiles []string      `yaml:"species_files"`
}

// SurfaceConfig describes the host surface
type SurfaceConfig struct {
	Width float64 `yaml:"width"`
}

// PetConfig holds the defaults of spawned pets
type PetConfig struct {
	Size         string  `yaml:"size"` // nano, medium or large
	Floor        float64 `yaml:"floor"`
	Speed        string  `yaml:"speed"` // "" keeps the species speed
	DefaultType  string  `yaml:"default_type"`
	DefaultColor string  `yaml:"default_color"`
	RandomNames  bool    `yaml:"random_names"`
}

// SpeechConfig holds how long speech bubbles stay visible
type SpeechConfig struct {
	FriendDuration   time.Duration `yaml:"friend_duration"`
	SwipeDuration    time.Duration `yaml:"swipe_duration"`
	RollCallDuration time.Duration `yaml:"roll_call_duration"`
}

// LogConfig is logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// MementoConfig locates the saved population
type MementoConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML config at path. A missing file yields the defaults.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if env := os.Getenv("ELONPET_LOG_LEVEL"); env != "" {
		cfg.Log.Level = env
	}
	if env := os.Getenv("ELONPET_MEMENTO_PATH"); env != "" {
		cfg.Memento.Path = env
	}
	if env := os.Getenv("ELONPET_SURFACE_WIDTH"); env != "" {
		width, err := strconv.ParseFloat(strings.TrimSpace(env), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing ELONPET_SURFACE_WIDTH: %w", err)
		}
		cfg.Surface.Width = width
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		TickInterval: 100 * time.Millisecond,
		Surface: SurfaceConfig{
			Width: 800,
		},
		Pet: PetConfig{
			Size:         string(elonpet.SizeMedium),
			DefaultType:  string(elonpet.PetTypeElon),
			DefaultColor: string(elonpet.ColorClassic),
			RandomNames:  true,
		},
		Speech: SpeechConfig{
			FriendDuration:   2 * time.Second,
			SwipeDuration:    3 * time.Second,
			RollCallDuration: 3 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Memento: MementoConfig{
			Path: "pets.json",
		},
	}
}

func validate(cfg *Config) error {
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.Surface.Width <= 0 {
		return fmt.Errorf("surface.width must be positive, got %v", cfg.Surface.Width)
	}
	switch elonpet.Size(cfg.Pet.Size) {
	case elonpet.SizeNano, elonpet.SizeMedium, elonpet.SizeLarge:
	default:
		return fmt.Errorf("unknown pet.size '%s'", cfg.Pet.Size)
	}
	if cfg.Pet.Speed != "" {
		if _, ok := elonpet.ParseSpeed(cfg.Pet.Speed); !ok {
			return fmt.Errorf("unknown pet.speed '%s'", cfg.Pet.Speed)
		}
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// LoadSpecies registers the species declared in the species files
func (c *Config) LoadSpecies() error {
	for _, path := range c.SpeciesFiles {
		list, err := elonpet.LoadSpeciesFile(path)
		if err != nil {
			return err
		}
		for _, s := range list {
			if err := elonpet.RegisterSpecies(s); err != nil {
				return err
			}
			log.WithField("type", s.Type).Debug("Species registered")
		}
	}
	return nil
}

// PlaygroundOptions converts the config to playground options
func (c *Config) PlaygroundOptions() elonpet.Options {
	opts := elonpet.Options{
		Surface:                elonpet.Surface{Width: c.Surface.Width},
		TickInterval:           c.TickInterval,
		Size:                   elonpet.Size(c.Pet.Size),
		Floor:                  c.Pet.Floor,
		DefaultType:            elonpet.PetType(c.Pet.DefaultType),
		DefaultColor:           elonpet.Color(c.Pet.DefaultColor),
		RandomNames:            c.Pet.RandomNames,
		FriendSpeechDuration:   c.Speech.FriendDuration,
		SwipeSpeechDuration:    c.Speech.SwipeDuration,
		RollCallSpeechDuration: c.Speech.RollCallDuration,
		Seed:                   c.Seed,
	}
	if speed, ok := elonpet.ParseSpeed(c.Pet.Speed); ok {
		opts.Speed = &speed
	}
	return opts
}
