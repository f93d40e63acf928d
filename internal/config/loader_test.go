package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config discovery at an empty home and clears any explicit file.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	SetConfigFile("")
	t.Cleanup(func() { SetConfigFile("") })
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		isolate(t)

		cfg, err := Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, ColorAuto, cfg.Report.Color)
		assert.Equal(t, 0, cfg.Report.MaxWidth)
		assert.False(t, cfg.Report.Verbose)
		assert.Equal(t, OutputText, cfg.Report.Output)
		assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
		assert.Empty(t, cfg.S3.Region)
		assert.False(t, cfg.S3.ForcePathStyle)
	})

	t.Run("RuntimeOverrides", func(t *testing.T) {
		isolate(t)

		overrides := map[string]any{
			"report": map[string]any{
				"verbose":   true,
				"max_width": 120,
			},
			"logging": map[string]any{
				"level": "debug",
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)

		assert.True(t, cfg.Report.Verbose)
		assert.Equal(t, 120, cfg.Report.MaxWidth)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, OutputText, cfg.Report.Output)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		isolate(t)
		t.Setenv("RUNSTATUS_LOG_LEVEL", "warn")
		t.Setenv("RUNSTATUS_COLOR", "NEVER")
		t.Setenv("RUNSTATUS_WATCH_INTERVAL", "2m")
		t.Setenv("RUNSTATUS_S3_FORCE_PATH_STYLE", "true")
		t.Setenv("RUNSTATUS_S3_ENDPOINT", "http://localhost:9000")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, ColorNever, cfg.Report.Color)
		assert.Equal(t, 2*time.Minute, cfg.Watch.Interval)
		assert.True(t, cfg.S3.ForcePathStyle)
		assert.Equal(t, "http://localhost:9000", cfg.S3.Endpoint)
	})

	t.Run("ConfigPrecedence", func(t *testing.T) {
		isolate(t)
		t.Setenv("RUNSTATUS_OUTPUT", "json")

		cfg, err := Load(ctx, map[string]any{"report": map[string]any{"output": "jsonl"}})
		require.NoError(t, err)
		assert.Equal(t, OutputJSONL, cfg.Report.Output)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "runstatus.yaml")
		require.NoError(t, os.WriteFile(path, []byte("report:\n  verbose: true\nwatch:\n  interval: 10s\n"), 0o644))
		SetConfigFile(path)
		t.Setenv("RUNSTATUS_WATCH_INTERVAL", "15s")

		cfg, err := Load(ctx)
		require.NoError(t, err)
		assert.True(t, cfg.Report.Verbose)
		// Environment outranks the file.
		assert.Equal(t, 15*time.Second, cfg.Watch.Interval)
	})

	t.Run("UserConfigFile", func(t *testing.T) {
		isolate(t)
		dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), AppName)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("report:\n  color: always\n"), 0o644))

		cfg, err := Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, ColorAlways, cfg.Report.Color)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		isolate(t)
		SetConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Load(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantErr   string
	}{
		{name: "log level", overrides: map[string]any{"logging": map[string]any{"level": "loud"}}, wantErr: "logging.level"},
		{name: "color", overrides: map[string]any{"report": map[string]any{"color": "sometimes"}}, wantErr: "report.color"},
		{name: "output", overrides: map[string]any{"report": map[string]any{"output": "xml"}}, wantErr: "report.output"},
		{name: "width", overrides: map[string]any{"report": map[string]any{"max_width": -1}}, wantErr: "report.max_width"},
		{name: "interval", overrides: map[string]any{"watch": map[string]any{"interval": "10ms"}}, wantErr: "watch.interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(context.Background(), tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvSpecs(t *testing.T) {
	specs := getEnvSpecs()
	require.NotEmpty(t, specs)

	v := viper.New()
	setDefaults(v)

	names := make(map[string]bool)
	for _, spec := range specs {
		names[spec.Name] = true
		assert.True(t, v.IsSet(spec.Key), "%s maps to unknown key %s", spec.Name, spec.Key)
	}
	assert.True(t, names["RUNSTATUS_LOG_LEVEL"])
	assert.True(t, names["RUNSTATUS_WATCH_INTERVAL"])
	assert.True(t, names["RUNSTATUS_S3_ENDPOINT"])
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, "info", v.GetString("logging.level"))
	assert.Equal(t, "auto", v.GetString("report.color"))
	assert.Equal(t, "text", v.GetString("report.output"))
	assert.Equal(t, "30s", v.GetString("watch.interval"))
	assert.Equal(t, 30*time.Second, v.GetDuration("watch.interval"))
}

func TestGetUserConfigPaths(t *testing.T) {
	t.Setenv("HOME", "/home/ops")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	assert.Equal(t, []string{
		filepath.Join("/xdg", "runstatus", "config.yaml"),
		filepath.Join("/home/ops", ".config", "runstatus", "config.yaml"),
	}, getUserConfigPaths())

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Equal(t, []string{filepath.Join("/home/ops", ".config", "runstatus", "config.yaml")}, getUserConfigPaths())
}
