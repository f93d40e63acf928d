// Package config loads runstatus configuration from defaults, an optional
// config file, RUNSTATUS_* environment variables, and runtime overrides.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppName names the config directory and env prefix.
const AppName = "runstatus"

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "RUNSTATUS"

var (
	configMu sync.RWMutex

	// configFile, when set, replaces the user config search.
	configFile string
)

// envSpec maps an environment variable to a config key.
type envSpec struct {
	Name string
	Key  string
}

// SetConfigFile sets an explicit config file for subsequent loads.
func SetConfigFile(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFile = path
}

// Load resolves configuration. Precedence, highest first: overrides,
// environment, config file, defaults.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	for _, spec := range getEnvSpecs() {
		if err := v.BindEnv(spec.Key, spec.Name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", spec.Name, err)
		}
	}

	for _, o := range overrides {
		applyOverrides(v, "", o)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Report.Color = strings.ToLower(cfg.Report.Color)
	cfg.Report.Output = strings.ToLower(cfg.Report.Output)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyOverrides sets nested override maps as dotted keys. viper.Set sits
// above the environment in viper's precedence, unlike MergeConfigMap.
func applyOverrides(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			applyOverrides(v, key, nested)
			continue
		}
		v.Set(key, val)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("report.color", ColorAuto)
	v.SetDefault("report.max_width", 0)
	v.SetDefault("report.verbose", false)
	v.SetDefault("report.output", OutputText)

	v.SetDefault("watch.interval", "30s")

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.force_path_style", false)
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.session_token", "")
}

func getEnvSpecs() []envSpec {
	return []envSpec{
		{Name: EnvPrefix + "_LOG_LEVEL", Key: "logging.level"},
		{Name: EnvPrefix + "_COLOR", Key: "report.color"},
		{Name: EnvPrefix + "_MAX_WIDTH", Key: "report.max_width"},
		{Name: EnvPrefix + "_VERBOSE", Key: "report.verbose"},
		{Name: EnvPrefix + "_OUTPUT", Key: "report.output"},
		{Name: EnvPrefix + "_WATCH_INTERVAL", Key: "watch.interval"},
		{Name: EnvPrefix + "_S3_REGION", Key: "s3.region"},
		{Name: EnvPrefix + "_S3_ENDPOINT", Key: "s3.endpoint"},
		{Name: EnvPrefix + "_S3_PROFILE", Key: "s3.profile"},
		{Name: EnvPrefix + "_S3_FORCE_PATH_STYLE", Key: "s3.force_path_style"},
		{Name: EnvPrefix + "_S3_ACCESS_KEY_ID", Key: "s3.access_key_id"},
		{Name: EnvPrefix + "_S3_SECRET_ACCESS_KEY", Key: "s3.secret_access_key"},
		{Name: EnvPrefix + "_S3_SESSION_TOKEN", Key: "s3.session_token"},
	}
}

// getUserConfigPaths lists candidate config files in search order.
func getUserConfigPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", AppName, "config.yaml"))
	}
	return paths
}

func readConfigFile(v *viper.Viper) error {
	configMu.RLock()
	explicit := configFile
	configMu.RUnlock()

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	for _, path := range getUserConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat config %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	return nil
}
