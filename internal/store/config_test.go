package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

func TestGetConfigPathHonoursEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("FIELDSYNC_CONFIG", path)

	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := ValidateConfig(model.DefaultConfig()); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestValidateConfigRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Config)
		want   string
	}{
		{"bad url", func(c *model.Config) { c.API.BaseURL = "not a url" }, "api.base_url"},
		{"bad route", func(c *model.Config) { c.API.UpdateRoute = "patch" }, "api.update_route"},
		{"bad env", func(c *model.Config) { c.Log.Env = "staging" }, "log.env"},
		{"zero interval", func(c *model.Config) { c.Watch.IntervalMinutes = 0 }, "watch.interval_minutes"},
		{"bad device id", func(c *model.Config) { c.Device.ID = "laptop" }, "device.id"},
		{"backup without bucket", func(c *model.Config) { c.Backup.Enable = true }, "backup.bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := model.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.API.BaseURL = "http://portal.example:4000/api"
	cfg.Device.ID = "0b7c2a8e-6f51-4f7e-9a55-0d9a3c6f1e21"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL || loaded.DataDir != cfg.DataDir || loaded.Device.ID != cfg.Device.ID {
		t.Errorf("Expected %+v, got %+v", cfg, *loaded)
	}
}

func TestLoadConfigFillsDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	partial := "data_dir: " + filepath.Join(dir, "data") + "\napi:\n  update_route: status\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("FIELDSYNC_API_BASE_URL", "http://10.0.0.5:4000/api")

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}

	if loaded.API.UpdateRoute != "status" {
		t.Errorf("Expected update_route from file, got %q", loaded.API.UpdateRoute)
	}
	if loaded.API.BaseURL != "http://10.0.0.5:4000/api" {
		t.Errorf("Expected base_url from env, got %q", loaded.API.BaseURL)
	}
	if loaded.Watch.IntervalMinutes != 15 || loaded.API.UserAgent != "FieldSyncCLI/1.0" {
		t.Errorf("Expected defaults to be filled, got %+v", *loaded)
	}
}

func TestExpandHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHomeDir("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("Expected expansion, got %s", got)
	}
	if got := expandHomeDir("/abs"); got != "/abs" {
		t.Errorf("Expected unchanged path, got %s", got)
	}
}
