package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ming-00/elonpet"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elonpet.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("Expected 100ms ticks, got %s", cfg.TickInterval)
	}
	if cfg.Surface.Width != 800 || cfg.Pet.Size != "medium" || !cfg.Pet.RandomNames {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
	if cfg.Speech.FriendDuration != 2*time.Second {
		t.Errorf("Expected 2s friend speech, got %s", cfg.Speech.FriendDuration)
	}
	if cfg.LogLevel() != log.InfoLevel {
		t.Errorf("Expected info level, got %s", cfg.LogLevel())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
tick_interval: 50ms
seed: 7
surface:
  width: 1200
pet:
  size: large
  speed: fast
  default_color: wario
  random_names: false
speech:
  friend_duration: 1s
log:
  level: debug
memento:
  path: /tmp/pets.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.TickInterval != 50*time.Millisecond || cfg.Seed != 7 {
		t.Errorf("Unexpected tick settings %s %d", cfg.TickInterval, cfg.Seed)
	}
	if cfg.Pet.Size != "large" || cfg.Pet.RandomNames {
		t.Errorf("Unexpected pet settings %+v", cfg.Pet)
	}
	// keys absent from the file keep their defaults
	if cfg.Pet.DefaultType != "elon" || cfg.Speech.SwipeDuration != 3*time.Second {
		t.Errorf("Defaults lost: %+v", cfg)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("Expected debug level, got %s", cfg.LogLevel())
	}

	opts := cfg.PlaygroundOptions()
	if opts.Surface.Width != 1200 || opts.Size != elonpet.SizeLarge || opts.DefaultColor != elonpet.ColorWario {
		t.Errorf("Unexpected playground options %+v", opts)
	}
	if opts.Speed == nil || *opts.Speed != elonpet.SpeedFast {
		t.Errorf("Expected fast speed override, got %v", opts.Speed)
	}
	if opts.FriendSpeechDuration != time.Second {
		t.Errorf("Expected 1s friend speech, got %s", opts.FriendSpeechDuration)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\nsurface:\n  width: 1200\n")
	t.Setenv("ELONPET_LOG_LEVEL", "warn")
	t.Setenv("ELONPET_SURFACE_WIDTH", "640")
	t.Setenv("ELONPET_MEMENTO_PATH", "elsewhere.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" || cfg.Surface.Width != 640 || cfg.Memento.Path != "elsewhere.json" {
		t.Errorf("Environment not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Unknown size", "pet:\n  size: huge\n"},
		{"Unknown speed", "pet:\n  speed: warp\n"},
		{"Zero width", "surface:\n  width: 0\n"},
		{"Negative tick", "tick_interval: -1s\n"},
		{"Bad level", "log:\n  level: loud\n"},
		{"Not YAML", "pet: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadRejectsBadEnvWidth(t *testing.T) {
	t.Setenv("ELONPET_SURFACE_WIDTH", "wide")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a non numeric width")
	}
}

func TestLoadSpecies(t *testing.T) {
	speciesPath := filepath.Join(t.TempDir(), "species.yaml")
	species := `
- type: rocket
  colors: [silver]
  sequence:
    starting_state: sit-idle
    states:
      - state: sit-idle
        possible_next_states: [run-right]
      - state: run-right
        possible_next_states: [sit-idle]
`
	if err := os.WriteFile(speciesPath, []byte(species), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(writeConfig(t, "species_files: [\""+speciesPath+"\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.LoadSpecies(); err != nil {
		t.Fatal(err)
	}
	if _, err := elonpet.LookupSpecies("rocket"); err != nil {
		t.Errorf("Expected rocket to be registered, got %v", err)
	}
}
