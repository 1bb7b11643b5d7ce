package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoad_NormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("week_start: friday\nlocale: en_US\nbasic_auth:\n  username: admin\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "sunday", cfg.WeekStart)
	require.Equal(t, "en_US", cfg.Locale)
	require.Equal(t, defaultListen, cfg.Listen)
	require.Nil(t, cfg.BasicAuth)
	require.Equal(t, time.Sunday, cfg.FirstWeekday())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	require.ErrorIs(t, err, ErrEmptyPath)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))
	_, err = Load(path)
	require.Error(t, err)

	require.ErrorIs(t, Save(path, nil), ErrNilConfig)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Snapshot.Cron = "*/30 * * * *"
	require.NoError(t, cfg.Validate())

	bad := DefaultConfig()
	bad.Rollover = "every midnight"
	require.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Timezone = "Mars/Olympus"
	require.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Listen = "not an address"
	require.Error(t, bad.Validate())

	var nilCfg *Config
	require.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MEDCAL_LISTEN", "0.0.0.0:9090")
	t.Setenv("MEDCAL_WEEK_START", "monday")
	t.Setenv("MEDCAL_LOCALE", "en_US")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	require.Equal(t, "0.0.0.0:9090", cfg.Listen)
	require.Equal(t, time.Monday, cfg.FirstWeekday())
	require.Equal(t, "en_US", cfg.Locale)
	require.Equal(t, defaultTimezone, cfg.Timezone)
}

func TestLocation_FallsBackToLocal(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "Asia/Seoul", cfg.Location().String())

	cfg.Timezone = "Nowhere/Special"
	require.Equal(t, time.Local, cfg.Location())
}
