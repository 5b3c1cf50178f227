package tool

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/claimdesk/types"
)

const EnvPrefix = "CLAIMDESK"

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		Port:            8090,
		BackendURL:      "http://localhost:8000",
		VerifyPath:      "/verify-date/",
		AssessPath:      "/claimability/",
		Model:           "gpt-4.1-mini",
		USDToTHBRate:    35.0,
		RequestTimeout:  0,
		SessionTTL:      60,
		ThumbnailSize:   320,
		PreviewWorkers:  4,
		SubmitPerMinute: 6,
		AllowRemote:     false,
	}
}

// LoadConfig reads config.yaml (writing defaults when it does not exist yet),
// then applies CLAIMDESK_* environment overrides.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
			return cfg, fmt.Errorf("config file not found, and failed to generate default config: %w", writeErr)
		}
		DefaultLogger.Infof("Created new config file at %s", path)
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	case info.IsDir():
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	normalizeConfig(&cfg)

	CurrentConfig = cfg
	return cfg, nil
}

// ApplyEnvOverrides overlays non-zero CLAIMDESK_* values on cfg.
func ApplyEnvOverrides(cfg *types.AppConfig) error {
	var env types.EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}
	if env.BackendURL != "" {
		cfg.BackendURL = env.BackendURL
	}
	if env.Model != "" {
		cfg.Model = env.Model
	}
	if env.USDToTHBRate > 0 {
		cfg.USDToTHBRate = env.USDToTHBRate
	}
	if env.Port > 0 {
		cfg.Port = env.Port
	}
	return nil
}

// ApplyFlagOverrides overlays CLI flags, which take precedence over file and env.
func ApplyFlagOverrides(cfg *types.AppConfig, flags types.Config) {
	if flags.UseBackendURL != "" {
		cfg.BackendURL = flags.UseBackendURL
	}
	if flags.UsePort > 0 {
		cfg.Port = flags.UsePort
	}
	if flags.UseModel != "" {
		cfg.Model = flags.UseModel
	}
	if flags.UseAllowRemote {
		cfg.AllowRemote = true
	}
	normalizeConfig(cfg)
	CurrentConfig = *cfg
}

func normalizeConfig(cfg *types.AppConfig) {
	def := DefaultConfig()
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")
	if cfg.BackendURL == "" {
		cfg.BackendURL = def.BackendURL
	}
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = def.VerifyPath
	}
	if cfg.AssessPath == "" {
		cfg.AssessPath = def.AssessPath
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.USDToTHBRate <= 0 {
		cfg.USDToTHBRate = def.USDToTHBRate
	}
	if cfg.Port <= 0 {
		cfg.Port = def.Port
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.ThumbnailSize <= 0 {
		cfg.ThumbnailSize = def.ThumbnailSize
	}
	if cfg.PreviewWorkers <= 0 {
		cfg.PreviewWorkers = def.PreviewWorkers
	}
	if cfg.SubmitPerMinute <= 0 {
		cfg.SubmitPerMinute = def.SubmitPerMinute
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}

// RequestTimeoutDuration converts the configured seconds; zero disables the timeout.
func RequestTimeoutDuration(cfg *types.AppConfig) time.Duration {
	return time.Duration(cfg.RequestTimeout) * time.Second
}

// SessionTTLDuration converts the configured minutes.
func SessionTTLDuration(cfg *types.AppConfig) time.Duration {
	return time.Duration(cfg.SessionTTL) * time.Minute
}
