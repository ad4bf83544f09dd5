package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultProfileName    = "default"
	DefaultBaseURL        = "http://localhost:8000"
	DefaultHealthInterval = 30
	DefaultRecentLimit    = 10

	envHome    = "MEDISAARTHI_HOME"
	envAPIBase = "MEDISAARTHI_API_BASE"
)

type Profile struct {
	BaseURL        string `json:"base_url"`
	HealthInterval int    `json:"health_interval_seconds,omitempty"`
	RecentLimit    int    `json:"recent_limit,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
	baseOverride   string
}

// DefaultProfile is the profile written on first run
func DefaultProfile() Profile {
	return Profile{
		BaseURL:        DefaultBaseURL,
		HealthInterval: DefaultHealthInterval,
		RecentLimit:    DefaultRecentLimit,
	}
}

func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	config.baseOverride = strings.TrimSpace(os.Getenv(envAPIBase))
	return config, nil
}

// IsValid reports whether the effective base URL is usable
func (c *Config) IsValid() bool {
	return ValidateBaseURL(c.GetBaseURL()) == nil
}

func (c *Config) GetBaseURL() string {
	if c.baseOverride != "" {
		return c.baseOverride
	}
	if c.currentProfile == nil || c.currentProfile.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.currentProfile.BaseURL
}

func (c *Config) GetHealthInterval() time.Duration {
	if c.currentProfile == nil || c.currentProfile.HealthInterval <= 0 {
		return DefaultHealthInterval * time.Second
	}
	return time.Duration(c.currentProfile.HealthInterval) * time.Second
}

func (c *Config) GetRecentLimit() int {
	if c.currentProfile == nil || c.currentProfile.RecentLimit <= 0 {
		return DefaultRecentLimit
	}
	return c.currentProfile.RecentLimit
}

// ProfileNames returns the profile names sorted
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Use switches the active profile
func (c *Config) Use(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	return c.setCurrentProfile()
}

// ValidateBaseURL checks that raw is an absolute http(s) URL
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("base url has no host")
	}
	return nil
}

func getConfigPath() (string, error) {
	var configDir string

	if home := os.Getenv(envHome); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".medisaarthi", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			DefaultProfileName: DefaultProfile(),
		},
		ActiveProfile: DefaultProfileName,
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile by name
		name := c.ProfileNames()[0]
		c.ActiveProfile = name
		profile = c.Profiles[name]
	}

	c.currentProfile = &profile
	return nil
}
