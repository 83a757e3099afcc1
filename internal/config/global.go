package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/snet/config.yml.
type GlobalConfig struct {
	DataPath   string `yaml:"data_path,omitempty"` // default repository when not inside one
	ASTAAPIKey string `yaml:"asta_api_key,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "snet"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/snet/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DataPath != "" {
		cfg.DataPath = ExpandPath(cfg.DataPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable envKey if set,
// otherwise configValue.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// GetASTAAPIKey returns the ASTA API key from ASTA_API_KEY or global config.
func GetASTAAPIKey() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return os.Getenv("ASTA_API_KEY")
	}
	return GetConfigValue("ASTA_API_KEY", cfg.ASTAAPIKey)
}

// GetLogLevel returns the log level from SNET_LOG_LEVEL or global config.
func GetLogLevel() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return os.Getenv("SNET_LOG_LEVEL")
	}
	return GetConfigValue("SNET_LOG_LEVEL", cfg.LogLevel)
}

// GetDataPath returns the configured default repository path.
func GetDataPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.DataPath
}

// ErrDataPathNotConfigured is returned when data_path is not set in config.
var ErrDataPathNotConfigured = errors.New("data_path not configured")

// ErrDataPathNotRepository is returned when data_path has no .scholarnet directory.
var ErrDataPathNotRepository = errors.New("data_path is not a scholarnet repository")

// ValidateDataPath returns the data path from global config after validation.
func ValidateDataPath() (string, error) {
	path := GetDataPath()
	if path == "" {
		return "", ErrDataPathNotConfigured
	}
	if !IsRepository(path) {
		return "", fmt.Errorf("%w: %s", ErrDataPathNotRepository, path)
	}
	return path, nil
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No scholarnet repository found.

Run 'snet init' in a directory to create one, or create %s
to set a default repository:
  mkdir -p %s
  echo 'data_path: /path/to/your/repo' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
