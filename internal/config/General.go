package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/state"
	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

// Safety gate gas ceiling bounds; configured values outside are clamped.
const (
	minSafetyMaxGasEth = 0.0001
	maxSafetyMaxGasEth = 0.5
)

// Config holds the complete application configuration.
type Config struct {
	Engine types.EngineParameters `yaml:"engine"`
	Log    LogConfig              `yaml:"log"`
	DB     state.DBConfig         `yaml:"db"`
	Web    WebConfig              `yaml:"web"`
	Model  ModelConfig            `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

type WebConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"` // sustained /api/decide requests per second
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// ModelConfig points at an optional estimator artifact.
type ModelConfig struct {
	Path            string        `yaml:"path"`
	AllowUnverified bool          `yaml:"allow_unverified"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"` // how long the breaker stays open
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		Engine: DefaultEngineParameters(),
		Log:    LogConfig{Level: "info", Format: "console"},
		DB: state.DBConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			User:         "clmm",
			DBName:       "clmm",
			SSLMode:      "disable",
			QueryTimeout: 5 * time.Second,
		},
		Web:   WebConfig{Port: 8080, RateLimitPerSec: 20, RateLimitBurst: 40},
		Model: ModelConfig{BreakerTimeout: 60 * time.Second},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if any),
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("log_level", cfg.Log.Level).
		Bool("db_enabled", cfg.DB.Enabled).
		Int("web_port", cfg.Web.Port).
		Str("model_path", cfg.Model.Path).
		Float64("safety_max_gas_eth", cfg.Engine.SafetyMaxGasEth).
		Msg("Configuration loaded successfully.")

	return cfg, nil
}

// normalize clamps values that have a documented safe range instead of rejecting them.
func (c *Config) normalize() {
	e := &c.Engine
	if e.SafetyMaxGasEth < minSafetyMaxGasEth {
		e.SafetyMaxGasEth = minSafetyMaxGasEth
	}
	if e.SafetyMaxGasEth > maxSafetyMaxGasEth {
		e.SafetyMaxGasEth = maxSafetyMaxGasEth
	}
	if e.GasLimits == nil {
		e.GasLimits = DefaultEngineParameters().GasLimits
	}
	if e.MinConfidence <= 0 {
		e.MinConfidence = 0.05
	}
}

// Validate reports every out of range setting at once.
func (c *Config) Validate() error {
	var errs []error
	e := c.Engine
	if e.HistoryCapacity <= 0 {
		errs = append(errs, errors.New("engine.history_capacity must be positive"))
	}
	if e.RecentActionsWindow <= 0 || e.RecentActionsWindow > e.HistoryCapacity {
		errs = append(errs, errors.New("engine.recent_actions_window must be in (0, history_capacity]"))
	}
	if e.RepeatDampening <= 0 || e.RepeatDampening > 1 {
		errs = append(errs, errors.New("engine.repeat_dampening must be in (0, 1]"))
	}
	if e.TickSpacing <= 0 {
		errs = append(errs, errors.New("engine.tick_spacing must be positive"))
	}
	if e.FeatureClip <= 0 {
		errs = append(errs, errors.New("engine.feature_clip must be positive"))
	}
	if e.MinTickRange < 1 {
		errs = append(errs, errors.New("engine.min_tick_range must be at least 1"))
	}
	if e.DefaultGasGwei <= 0 {
		errs = append(errs, errors.New("engine.default_gas_gwei must be positive"))
	}
	if e.MinPoolLiquidity <= 0 {
		errs = append(errs, errors.New("engine.min_pool_liquidity must be positive"))
	}
	if e.EthPriceUSD < 0 {
		errs = append(errs, errors.New("engine.eth_price_usd must not be negative"))
	}
	if e.ReducePercentage <= 0 || e.ReducePercentage > 1 {
		errs = append(errs, errors.New("engine.reduce_percentage must be in (0, 1]"))
	}
	if e.EstimatorTimeout <= 0 {
		errs = append(errs, errors.New("engine.estimator_timeout must be positive"))
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port %d is out of range", c.Web.Port))
	}
	if c.DB.Enabled && c.DB.Host == "" {
		errs = append(errs, errors.New("db.host is required when db.enabled is set"))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides overwrites values with environment variables when present.
func applyEnvOverrides(cfg *Config) error {
	var errs []error
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok, err := getEnvAsFloat64(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok, err := getEnvAsInt(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok, err := getEnvAsBool(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok, err := getEnvAsDuration(key); err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	setFloat("CLMM_ETH_PRICE_USD", &cfg.Engine.EthPriceUSD)
	setFloat("CLMM_DEFAULT_GAS_GWEI", &cfg.Engine.DefaultGasGwei)
	setFloat("CLMM_BASE_THRESHOLD_PCT", &cfg.Engine.BaseThresholdPct)
	setFloat("CLMM_SAFETY_MAX_GAS_ETH", &cfg.Engine.SafetyMaxGasEth)
	setFloat("CLMM_SAFETY_MAX_GAS_GWEI", &cfg.Engine.SafetyMaxGasGwei)
	setFloat("CLMM_MIN_ROI_PCT", &cfg.Engine.MinROIPct)
	setInt("CLMM_TICK_SPACING", &cfg.Engine.TickSpacing)
	setInt("CLMM_HISTORY_CAPACITY", &cfg.Engine.HistoryCapacity)
	setDuration("CLMM_ESTIMATOR_TIMEOUT", &cfg.Engine.EstimatorTimeout)

	setBool("DB_ENABLED", &cfg.DB.Enabled)
	setString("DB_HOST", &cfg.DB.Host)
	setInt("DB_PORT", &cfg.DB.Port)
	setString("DB_USER", &cfg.DB.User)
	setString("DB_PASSWORD", &cfg.DB.Password)
	setString("DB_NAME", &cfg.DB.DBName)
	setString("DB_SSLMODE", &cfg.DB.SSLMode)

	setInt("WEB_PORT", &cfg.Web.Port)
	setFloat("WEB_RATE_LIMIT_PER_SEC", &cfg.Web.RateLimitPerSec)

	setString("MODEL_PATH", &cfg.Model.Path)
	setBool("ALLOW_UNVERIFIED_MODEL", &cfg.Model.AllowUnverified)

	return errors.Join(errs...)
}

// getEnvAsFloat64 retrieves an optional environment variable as a float64.
func getEnvAsFloat64(key string) (float64, bool, error) {
	valueStr, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(valueStr) == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		return 0, false, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, true, nil
}

// getEnvAsInt retrieves an optional environment variable as an int.
func getEnvAsInt(key string) (int, bool, error) {
	valueStr, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(valueStr) == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, false, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, true, nil
}

// getEnvAsBool retrieves an optional environment variable as a bool.
func getEnvAsBool(key string) (bool, bool, error) {
	valueStr, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(valueStr) == "" {
		return false, false, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return false, false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, true, nil
}

// getEnvAsDuration retrieves an optional environment variable as a time.Duration.
func getEnvAsDuration(key string) (time.Duration, bool, error) {
	valueStr, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(valueStr) == "" {
		return 0, false, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, false, errors.New("environment variable " + key + " must be a valid duration, got: " + valueStr)
	}
	return value, true, nil
}
