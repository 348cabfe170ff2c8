package model

type Config struct {
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
	Editor  string `yaml:"editor" mapstructure:"editor"`
	API     struct {
		BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
		UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
		UpdateRoute    string `yaml:"update_route" mapstructure:"update_route"` // update | status
		Source         string `yaml:"source" mapstructure:"source"`
		TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	} `yaml:"api" mapstructure:"api"`
	Device struct {
		ID   string `yaml:"id" mapstructure:"id"`
		Name string `yaml:"name" mapstructure:"name"`
	} `yaml:"device" mapstructure:"device"`
	Log struct {
		Env  string `yaml:"env" mapstructure:"env"` // local | dev | prod
		File string `yaml:"file" mapstructure:"file"`
	} `yaml:"log" mapstructure:"log"`
	Watch struct {
		IntervalMinutes int `yaml:"interval_minutes" mapstructure:"interval_minutes"`
	} `yaml:"watch" mapstructure:"watch"`
	Backup struct {
		Enable     bool   `yaml:"enable" mapstructure:"enable"`
		Bucket     string `yaml:"bucket" mapstructure:"bucket"`
		Prefix     string `yaml:"prefix" mapstructure:"prefix"`
		AWSProfile string `yaml:"aws_profile" mapstructure:"aws_profile"`
		AWSRegion  string `yaml:"aws_region" mapstructure:"aws_region"`
	} `yaml:"backup" mapstructure:"backup"`
}

func DefaultConfig() Config {
	var config Config
	config.DataDir = "~/.config/fieldsync/data"
	config.Editor = "vim"

	config.API.BaseURL = "http://localhost:4000/api"
	config.API.UserAgent = "FieldSyncCLI/1.0"
	config.API.UpdateRoute = "update"
	config.API.Source = "mobile"
	config.API.TimeoutSeconds = 0

	config.Device.Name = "fieldsync_cli"

	config.Log.Env = "prod"

	config.Watch.IntervalMinutes = 15

	config.Backup.Enable = false
	config.Backup.Prefix = "fieldsync"
	config.Backup.AWSRegion = "ap-northeast-1"
	return config
}
