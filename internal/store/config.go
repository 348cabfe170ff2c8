package store

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "FIELDSYNC"

func GetConfigPath() (string, error) {
	// `FIELDSYNC_CONFIG` overrides the default location
	if customConfig := os.Getenv(envPrefix + "_CONFIG"); customConfig != "" {
		return customConfig, nil
	}

	var configPath string

	switch runtime.GOOS {
	case "windows":
		// Use `APPDATA\fieldsync-cli\config.yaml` if available
		appData := os.Getenv("APPDATA")
		if appData != "" {
			configPath = filepath.Join(appData, "fieldsync-cli", "config.yaml")
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", err)
			}
			configPath = filepath.Join(homeDir, "AppData", "Roaming", "fieldsync-cli", "config.yaml")
		}

	default: // macOS / Linux
		configDir, err := os.UserConfigDir()
		if err != nil {
			homeDir, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", homeErr)
			}
			configPath = filepath.Join(homeDir, ".fieldsync-cli", "config.yaml")
			log.Printf("⚠️ Failed to get user config directory, using fallback: %s", configPath)
		} else {
			configPath = filepath.Join(configDir, "fieldsync-cli", "config.yaml")
		}
	}

	return configPath, nil
}

// Expand `~` to the home directory (Windows included)
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("⚠️ Failed to get home directory: %v", err)
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// LoadConfig reads the config file on top of the defaults. Any key can be
// overridden from the environment, e.g. FIELDSYNC_API_BASE_URL.
func LoadConfig() (*model.Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFile(configPath)
}

func LoadConfigFile(configPath string) (*model.Config, error) {
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to encode default config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	v.SetConfigFile(configPath)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file (%s): %w", configPath, err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config model.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Expand `~` in paths
	config.DataDir = expandHomeDir(config.DataDir)
	config.Log.File = expandHomeDir(config.Log.File)

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the config as YAML, creating the parent directory.
func SaveConfig(config model.Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("❌ Failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("❌ Failed to convert config to YAML: %w", err)
	}
	return writeFileAtomic(configPath, data, 0644)
}

func ValidateConfig(config model.Config) error {
	var errs []error

	if !govalidator.IsRequestURL(config.API.BaseURL) {
		errs = append(errs, fmt.Errorf("api.base_url %q is not a valid URL", config.API.BaseURL))
	}
	if !govalidator.IsIn(config.API.UpdateRoute, "update", "status") {
		errs = append(errs, fmt.Errorf("api.update_route must be update or status, got %q", config.API.UpdateRoute))
	}
	if config.API.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("api.timeout_seconds must not be negative"))
	}
	if !govalidator.IsIn(config.Log.Env, "local", "dev", "prod") {
		errs = append(errs, fmt.Errorf("log.env must be local, dev or prod, got %q", config.Log.Env))
	}
	if config.Watch.IntervalMinutes <= 0 {
		errs = append(errs, fmt.Errorf("watch.interval_minutes must be positive"))
	}
	if govalidator.IsNull(config.DataDir) {
		errs = append(errs, fmt.Errorf("data_dir must be set"))
	}
	if config.Device.ID != "" && !govalidator.IsUUID(config.Device.ID) {
		errs = append(errs, fmt.Errorf("device.id %q is not a UUID", config.Device.ID))
	}
	if config.Backup.Enable && govalidator.IsNull(config.Backup.Bucket) {
		errs = append(errs, fmt.Errorf("backup.bucket is required when backup is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("❌ Invalid config: %w", errors.Join(errs...))
	}
	return nil
}
