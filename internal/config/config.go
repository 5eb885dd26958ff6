package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/progression"
)

// LoadedConfig is the server configuration after defaults, file and
// environment have been merged and validated.
type LoadedConfig struct {
	ServerAddress string
	DatabasePath  string
	// CatalogPath is a YAML catalog file; empty means the embedded default.
	CatalogPath   string
	LogLevel      string
	TurnTimeout   time.Duration
	QueueSize     int
	MaxAIActions  int
	AIThinkScale  float64
	FailurePolicy progression.FailurePolicy
	// Seed makes fusion rolls reproducible; zero means time based.
	Seed        int64
	MatchRetain time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.path", "elemental.db")
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("match.turn_timeout", "90s")
	v.SetDefault("match.queue_size", 16)
	v.SetDefault("match.max_ai_actions", 30)
	v.SetDefault("match.retain", "10m")
	v.SetDefault("ai.think_scale", 1.0)
	v.SetDefault("fusion.failure_policy", string(progression.MaterialsLost))
	v.SetDefault("fusion.seed", 0)
}

// LoadConfig reads the optional config file at path (or ELEMENTAL_CONFIG,
// or ./elemental.yaml when present) and overlays ELEMENTAL_* environment
// variables, e.g. ELEMENTAL_SERVER_ADDRESS or ELEMENTAL_MATCH_TURN_TIMEOUT.
func LoadConfig(path string) (*LoadedConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(constants.EnvConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("elemental")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	policy, err := progression.ParseFailurePolicy(v.GetString("fusion.failure_policy"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := &LoadedConfig{
		ServerAddress: strings.TrimSpace(v.GetString("server.address")),
		DatabasePath:  strings.TrimSpace(v.GetString("database.path")),
		CatalogPath:   strings.TrimSpace(v.GetString("catalog.path")),
		LogLevel:      strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		TurnTimeout:   v.GetDuration("match.turn_timeout"),
		QueueSize:     v.GetInt("match.queue_size"),
		MaxAIActions:  v.GetInt("match.max_ai_actions"),
		MatchRetain:   v.GetDuration("match.retain"),
		AIThinkScale:  v.GetFloat64("ai.think_scale"),
		FailurePolicy: policy,
		Seed:          v.GetInt64("fusion.seed"),
	}

	switch {
	case cfg.ServerAddress == "":
		return nil, errors.New("config: server.address must not be empty")
	case cfg.DatabasePath == "":
		return nil, errors.New("config: database.path must not be empty")
	case cfg.TurnTimeout < 0:
		return nil, fmt.Errorf("config: match.turn_timeout must not be negative, got %s", cfg.TurnTimeout)
	case cfg.QueueSize < 1:
		return nil, fmt.Errorf("config: match.queue_size must be at least 1, got %d", cfg.QueueSize)
	case cfg.MaxAIActions < 1:
		return nil, fmt.Errorf("config: match.max_ai_actions must be at least 1, got %d", cfg.MaxAIActions)
	case cfg.AIThinkScale < 0:
		return nil, fmt.Errorf("config: ai.think_scale must not be negative, got %v", cfg.AIThinkScale)
	}
	return cfg, nil
}
