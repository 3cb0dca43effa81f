package server

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/tomz197/asteroid-waves/internal/config"
)

// OptionsFromEnv starts from DefaultOptions and applies WAVE_* overrides:
//
//	WAVE_STARTING_TOKENS  WAVE_GROWTH        WAVE_KILL_THRESHOLD
//	WAVE_MAX_ACTIVE       WAVE_ADVANCE_DELAY WAVE_LOW_TOKENS
//	WAVE_SPAWN_POINTS
//
// Unparsable values keep their default; the joined error lists every bad key.
func OptionsFromEnv(logger *log.Logger) (Options, error) {
	opts := DefaultOptions()
	opts.Logger = logger

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	opts.Wave.StartingTokens, err = config.GetEnvInt("WAVE_STARTING_TOKENS", opts.Wave.StartingTokens)
	collect(err)
	opts.Wave.GrowthFactor, err = config.GetEnvFloat("WAVE_GROWTH", opts.Wave.GrowthFactor)
	collect(err)
	opts.Wave.KillThreshold, err = config.GetEnvFloat("WAVE_KILL_THRESHOLD", opts.Wave.KillThreshold)
	collect(err)
	opts.Wave.MaxActiveEnemies, err = config.GetEnvInt("WAVE_MAX_ACTIVE", opts.Wave.MaxActiveEnemies)
	collect(err)
	opts.Wave.AdvanceDelay, err = config.GetEnvDuration("WAVE_ADVANCE_DELAY", opts.Wave.AdvanceDelay)
	collect(err)
	opts.Wave.LowTokenThreshold, err = config.GetEnvInt("WAVE_LOW_TOKENS", opts.Wave.LowTokenThreshold)
	collect(err)
	opts.SpawnPoints, err = config.GetEnvInt("WAVE_SPAWN_POINTS", opts.SpawnPoints)
	collect(err)

	return opts, errors.Join(errs...)
}
