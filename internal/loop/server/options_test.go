package server

import (
	"strings"
	"testing"
	"time"

	"github.com/tomz197/asteroid-waves/internal/loop/config"
)

func TestOptionsFromEnvDefaults(t *testing.T) {
	opts, err := OptionsFromEnv(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts != DefaultOptions() {
		t.Fatalf("expected defaults, got %+v", opts)
	}
	if opts.Wave.StartingTokens != config.WaveStartingTokens || opts.SpawnPoints != config.SpawnPointCount {
		t.Fatalf("defaults not taken from config: %+v", opts)
	}
}

func TestOptionsFromEnvOverrides(t *testing.T) {
	t.Setenv("WAVE_STARTING_TOKENS", "40")
	t.Setenv("WAVE_GROWTH", "1.5")
	t.Setenv("WAVE_ADVANCE_DELAY", "250ms")
	t.Setenv("WAVE_SPAWN_POINTS", "3")

	opts, err := OptionsFromEnv(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Wave.StartingTokens != 40 || opts.Wave.GrowthFactor != 1.5 {
		t.Fatalf("overrides not applied: %+v", opts.Wave)
	}
	if opts.Wave.AdvanceDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms delay, got %v", opts.Wave.AdvanceDelay)
	}
	if opts.SpawnPoints != 3 {
		t.Fatalf("expected 3 spawn points, got %d", opts.SpawnPoints)
	}
}

func TestOptionsFromEnvReportsBadKeys(t *testing.T) {
	t.Setenv("WAVE_MAX_ACTIVE", "lots")
	t.Setenv("WAVE_KILL_THRESHOLD", "most")

	opts, err := OptionsFromEnv(nil)
	if err == nil {
		t.Fatalf("expected an error for unparsable values")
	}
	for _, key := range []string{"WAVE_MAX_ACTIVE", "WAVE_KILL_THRESHOLD"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error %q", key, err)
		}
	}
	if opts.Wave.MaxActiveEnemies != config.WaveMaxActiveAsteroids {
		t.Fatalf("expected default max active on error, got %d", opts.Wave.MaxActiveEnemies)
	}
}
