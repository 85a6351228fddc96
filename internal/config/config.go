package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SKILLGRAPH_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SKILLGRAPH_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	return positiveFloat("RATE_LIMIT_RPS", 100)
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	return positiveInt("RATE_LIMIT_BURST", 20)
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// TrueSkillInitialMean is the mean every new player starts at.
func TrueSkillInitialMean() float64 {
	return envFloat("TRUESKILL_INITIAL_MEAN", 25)
}

// TrueSkillInitialStdev defaults to a third of the initial mean.
func TrueSkillInitialStdev() float64 {
	return positiveFloat("TRUESKILL_INITIAL_STDEV", TrueSkillInitialMean()/3)
}

// TrueSkillBeta is the performance noise. Defaults to half the initial stdev.
func TrueSkillBeta() float64 {
	return positiveFloat("TRUESKILL_BETA", TrueSkillInitialStdev()/2)
}

// TrueSkillDynamicsFactor is the skill drift added before every match.
// Defaults to a hundredth of the initial stdev.
func TrueSkillDynamicsFactor() float64 {
	tau, err := strconv.ParseFloat(os.Getenv("TRUESKILL_DYNAMICS_FACTOR"), 64)
	if err != nil || tau < 0 {
		return TrueSkillInitialStdev() / 100
	}
	return tau
}

func TrueSkillDrawProbability() float64 {
	p, err := strconv.ParseFloat(os.Getenv("TRUESKILL_DRAW_PROBABILITY"), 64)
	if err != nil || p < 0 || p >= 1 {
		return 0.10
	}
	return p
}

// TrueSkillConservativeMultiplier is k in mean - k*stdev.
func TrueSkillConservativeMultiplier() float64 {
	return positiveFloat("TRUESKILL_CONSERVATIVE_MULTIPLIER", 3)
}

// TrueSkillConvergenceTolerance bounds the message delta at which the
// multi-team sweep stops. Defaults to 0.0001.
func TrueSkillConvergenceTolerance() float64 {
	return positiveFloat("TRUESKILL_CONVERGENCE_TOLERANCE", 0.0001)
}

// TrueSkillMaxIterations caps the multi-team sweep. Defaults to 200.
func TrueSkillMaxIterations() int {
	return positiveInt("TRUESKILL_MAX_ITERATIONS", 200)
}

// InactivityInterval is how often idle players are widened.
// Defaults to 1h if not set.
func InactivityInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("INACTIVITY_INTERVAL"))
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// InactivityAfterDays is how long a player may go without a match before
// their uncertainty grows. Defaults to 30.
func InactivityAfterDays() int {
	return positiveInt("INACTIVITY_AFTER_DAYS", 30)
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func positiveFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func positiveInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
