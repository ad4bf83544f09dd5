package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(envHome, home)
	t.Setenv(envAPIBase, "")
	return home
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	home := setupHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultProfileName, cfg.ActiveProfile)
	assert.Equal(t, DefaultBaseURL, cfg.GetBaseURL())
	assert.Equal(t, 30*time.Second, cfg.GetHealthInterval())
	assert.Equal(t, DefaultRecentLimit, cfg.GetRecentLimit())
	assert.True(t, cfg.IsValid())

	_, err = os.Stat(filepath.Join(home, ".medisaarthi", "config.json"))
	assert.NoError(t, err)
}

func TestLoadConfig_ReadsExistingProfiles(t *testing.T) {
	home := setupHome(t)
	dir := filepath.Join(home, ".medisaarthi")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{
		"profiles": {
			"lab": {"base_url": "https://lab.example.com", "health_interval_seconds": 5, "recent_limit": 25}
		},
		"active_profile": "lab"
	}`), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://lab.example.com", cfg.GetBaseURL())
	assert.Equal(t, 5*time.Second, cfg.GetHealthInterval())
	assert.Equal(t, 25, cfg.GetRecentLimit())
}

func TestLoadConfig_MissingActiveFallsBackByName(t *testing.T) {
	home := setupHome(t)
	dir := filepath.Join(home, ".medisaarthi")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{
		"profiles": {
			"zeta": {"base_url": "http://zeta:8000"},
			"alpha": {"base_url": "http://alpha:8000"}
		},
		"active_profile": "gone"
	}`), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "alpha", cfg.ActiveProfile)
	assert.Equal(t, "http://alpha:8000", cfg.GetBaseURL())
}

func TestLoadConfig_EnvOverridesBaseURL(t *testing.T) {
	setupHome(t)
	t.Setenv(envAPIBase, "http://override:9000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", cfg.GetBaseURL())
}

func TestConfig_UseAndSave(t *testing.T) {
	setupHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Profiles["staging"] = Profile{BaseURL: "http://staging:8000"}
	require.NoError(t, cfg.Use("staging"))
	require.NoError(t, cfg.Save())
	assert.Error(t, cfg.Use("missing"))

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", reloaded.ActiveProfile)
	assert.Equal(t, "http://staging:8000", reloaded.GetBaseURL())
	assert.Equal(t, []string{"default", "staging"}, reloaded.ProfileNames())
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "http://localhost:8000", wantErr: false},
		{raw: "https://api.example.com/v1", wantErr: false},
		{raw: "localhost:8000", wantErr: true},
		{raw: "http://", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
