package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultProfile is the name of the default profile
	DefaultProfile = "default"

	// ProfilesDirName is the directory containing all profiles
	ProfilesDirName = "profiles"

	// ConfigFileName is the global config file name
	ConfigFileName = "config.toml"
)

// Config represents the global deckops configuration
type Config struct {
	// DefaultProfile is the profile to use when none is specified
	DefaultProfile string `toml:"default_profile"`

	// LastUsed is the most recently used profile (for future use)
	LastUsed string `toml:"last_used,omitempty"`

	// DefaultSortOrder is the stored default sort order name. NewHome does
	// not read it; a fresh HomeView always starts with SortNewest.
	DefaultSortOrder string `toml:"default_sort_order"`

	// DefaultListWidth is the stored default list-pane width. NewHome does
	// not read it; a fresh HomeView always starts at width 35.
	DefaultListWidth int `toml:"default_list_width"`

	// Version tracks config format for future migrations
	Version int `toml:"version"`
}

// GetDeckopsDir returns the base deckops directory (~/.deckops)
func GetDeckopsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deckops"), nil
}

// GetConfigPath returns the path to the global config file
func GetConfigPath() (string, error) {
	dir, err := GetDeckopsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// GetProfilesDir returns the path to the profiles directory
func GetProfilesDir() (string, error) {
	dir, err := GetDeckopsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProfilesDirName), nil
}

// GetProfileDir returns the path to a specific profile's directory
func GetProfileDir(profile string) (string, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	// Sanitize profile name (prevent path traversal)
	profile = filepath.Base(profile)
	if profile == "." || profile == ".." {
		return "", fmt.Errorf("invalid profile name: %s", profile)
	}

	profilesDir, err := GetProfilesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(profilesDir, profile), nil
}

// defaultConfig returns the configuration used when no config file exists yet.
func defaultConfig() *Config {
	return &Config{
		DefaultProfile:   DefaultProfile,
		DefaultSortOrder: "newest",
		DefaultListWidth: 35,
		Version:          1,
	}
}

// LoadConfig loads the global configuration
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return defaultConfig(), nil
	}

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.DefaultProfile == "" {
		config.DefaultProfile = DefaultProfile
	}
	if config.DefaultSortOrder == "" {
		config.DefaultSortOrder = "newest"
	}
	if config.DefaultListWidth == 0 {
		config.DefaultListWidth = 35
	}

	return &config, nil
}

// SaveConfig saves the global configuration
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config for write: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return nil
}

// ListProfiles returns all available profile names
func ListProfiles() ([]string, error) {
	profilesDir, err := GetProfilesDir()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(profilesDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	var profiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			dbPath := filepath.Join(profilesDir, entry.Name(), "state.db")
			if _, err := os.Stat(dbPath); err == nil {
				profiles = append(profiles, entry.Name())
			}
		}
	}

	sort.Strings(profiles)
	return profiles, nil
}

// ProfileExists checks if a profile exists
func ProfileExists(profile string) (bool, error) {
	profileDir, err := GetProfileDir(profile)
	if err != nil {
		return false, err
	}

	dbPath := filepath.Join(profileDir, "state.db")
	if _, err = os.Stat(dbPath); err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CreateProfile creates a new empty profile
func CreateProfile(profile string) error {
	if profile == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	exists, err := ProfileExists(profile)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("profile '%s' already exists", profile)
	}

	profileDir, err := GetProfileDir(profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(profileDir, 0700); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	// NewStorageWithProfile auto-creates tables, so just opening it is sufficient.
	st, err := NewStorageWithProfile(profile)
	if err != nil {
		return fmt.Errorf("failed to initialize profile storage: %w", err)
	}
	defer st.Close()

	return nil
}

// DeleteProfile deletes a profile and all its data
func DeleteProfile(profile string) error {
	if profile == DefaultProfile {
		profiles, err := ListProfiles()
		if err != nil {
			return err
		}
		if len(profiles) <= 1 {
			return fmt.Errorf("cannot delete the only remaining profile")
		}
	}

	profileDir, err := GetProfileDir(profile)
	if err != nil {
		return err
	}

	exists, err := ProfileExists(profile)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", profile)
	}

	if err := os.RemoveAll(profileDir); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	config, err := LoadConfig()
	if err != nil {
		return err
	}
	if config.DefaultProfile == profile {
		config.DefaultProfile = DefaultProfile
		if err := SaveConfig(config); err != nil {
			return fmt.Errorf("profile deleted but failed to update config: %w", err)
		}
	}

	return nil
}

// SetDefaultProfile sets the default profile in the config
func SetDefaultProfile(profile string) error {
	exists, err := ProfileExists(profile)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", profile)
	}

	config, err := LoadConfig()
	if err != nil {
		return err
	}

	config.DefaultProfile = profile
	return SaveConfig(config)
}

// GetEffectiveProfile returns the profile to use, considering:
// 1. Explicitly provided profile (from -p flag)
// 2. Environment variable DECKOPS_PROFILE
// 3. Config default profile
// 4. Fallback to "default"
func GetEffectiveProfile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if envProfile := os.Getenv("DECKOPS_PROFILE"); envProfile != "" {
		return envProfile
	}

	config, err := LoadConfig()
	if err != nil {
		return DefaultProfile
	}

	if config.DefaultProfile != "" {
		return config.DefaultProfile
	}

	return DefaultProfile
}

// GetNextProfile returns the alphabetically next profile after current,
// wrapping around. Returns "" if fewer than two profiles exist.
func GetNextProfile(current string) (string, error) {
	profiles, err := ListProfiles()
	if err != nil {
		return "", err
	}
	if len(profiles) < 2 {
		return "", nil
	}

	idx := sort.SearchStrings(profiles, current)
	next := (idx + 1) % len(profiles)
	if idx >= len(profiles) || profiles[idx] != current {
		return profiles[0], nil
	}
	return profiles[next], nil
}
