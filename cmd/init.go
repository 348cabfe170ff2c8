/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/store"
	"github.com/nakachan-ing/fieldsync-cli/internal/util"
	"github.com/spf13/cobra"
)

var initForce bool
var initBaseURL string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile := cfgFile
		if configFile == "" {
			path, err := store.GetConfigPath()
			if err != nil {
				return fmt.Errorf("❌ Failed to get config path: %w", err)
			}
			configFile = path
		}

		if _, err := os.Stat(configFile); err == nil && !initForce {
			return fmt.Errorf("⚠️ Config already exists at %s (use --force to overwrite)", configFile)
		}

		config := model.DefaultConfig()
		config.Device.ID = util.NewDeviceID()
		if initBaseURL != "" {
			config.API.BaseURL = initBaseURL
		}
		if err := store.ValidateConfig(config); err != nil {
			return err
		}

		if err := store.SaveConfig(config, configFile); err != nil {
			return err
		}

		fmt.Println("✅ fieldsync initialized successfully!")
		fmt.Println("📄 Config file created at:", configFile)
		fmt.Println("📱 Device ID:", config.Device.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "", "Portal API base URL, e.g. http://portal:4000/api")
}
