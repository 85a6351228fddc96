package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrueSkillDefaults(t *testing.T) {
	for _, key := range []string{
		"TRUESKILL_INITIAL_MEAN", "TRUESKILL_INITIAL_STDEV", "TRUESKILL_BETA",
		"TRUESKILL_DYNAMICS_FACTOR", "TRUESKILL_DRAW_PROBABILITY",
		"TRUESKILL_CONVERGENCE_TOLERANCE", "TRUESKILL_MAX_ITERATIONS",
	} {
		t.Setenv(key, "")
	}

	assert.Equal(t, 25.0, TrueSkillInitialMean())
	assert.InDelta(t, 25.0/3, TrueSkillInitialStdev(), 1e-12)
	assert.InDelta(t, 25.0/6, TrueSkillBeta(), 1e-12)
	assert.InDelta(t, 25.0/300, TrueSkillDynamicsFactor(), 1e-12)
	assert.Equal(t, 0.10, TrueSkillDrawProbability())
	assert.Equal(t, 0.0001, TrueSkillConvergenceTolerance())
	assert.Equal(t, 200, TrueSkillMaxIterations())
}

func TestTrueSkillDerivedFromMean(t *testing.T) {
	t.Setenv("TRUESKILL_INITIAL_MEAN", "1200")
	t.Setenv("TRUESKILL_INITIAL_STDEV", "")
	t.Setenv("TRUESKILL_BETA", "")
	t.Setenv("TRUESKILL_DYNAMICS_FACTOR", "0")

	assert.Equal(t, 400.0, TrueSkillInitialStdev())
	assert.Equal(t, 200.0, TrueSkillBeta())
	assert.Equal(t, 0.0, TrueSkillDynamicsFactor())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TRUESKILL_DRAW_PROBABILITY", "1.5")
	t.Setenv("TRUESKILL_MAX_ITERATIONS", "-3")
	t.Setenv("INACTIVITY_INTERVAL", "soon")
	t.Setenv("INACTIVITY_AFTER_DAYS", "x")
	t.Setenv("SERVER_PORT", "")

	assert.Equal(t, 0.10, TrueSkillDrawProbability())
	assert.Equal(t, 200, TrueSkillMaxIterations())
	assert.Equal(t, time.Hour, InactivityInterval())
	assert.Equal(t, 30, InactivityAfterDays())
	assert.Equal(t, ":8080", ServerAddr())
}
