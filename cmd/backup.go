/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/nakachan-ing/fieldsync-cli/internal/util"
	"github.com/spf13/cobra"
)

var backupForce bool
var backupDevice string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the cached task list to S3",
}

func newBackup(cmd *cobra.Command, a *app) (backup, error) {
	if !a.config.Backup.Enable {
		return backup{}, fmt.Errorf("⚠️ Backup is disabled. Set backup.enable and backup.bucket with `fieldsync config`")
	}
	if a.config.Backup.Bucket == "" {
		return backup{}, fmt.Errorf("❌ backup.bucket is not set")
	}

	client, err := util.NewS3Client(cmd.Context(), a.config)
	if err != nil {
		return backup{}, fmt.Errorf("❌ Failed to initialize S3 client: %w", err)
	}

	deviceID := a.config.Device.ID
	if backupDevice != "" {
		deviceID = backupDevice
	}
	return backup{
		config:   a.config,
		cache:    a.cache,
		objects:  client,
		deviceID: deviceID,
		user:     a.client.Profile().Username,
	}, nil
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the cached tasks to S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("🔄 Running `fieldsync backup push`...")
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		b, err := newBackup(cmd, a)
		if err != nil {
			return err
		}
		manifest, err := b.push(cmd.Context())
		if err != nil {
			return err
		}

		log.Printf("✅ `fieldsync backup push` completed: %d tasks", manifest.TaskCount)
		return nil
	},
}

var backupPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Restore the cached tasks from S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("🔄 Running `fieldsync backup pull`...")
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		release, err := a.lock("backup pull")
		if err != nil {
			return err
		}
		defer release()

		b, err := newBackup(cmd, a)
		if err != nil {
			return err
		}
		if _, err := b.pull(cmd.Context(), backupForce); err != nil {
			return err
		}

		log.Println("✅ `fieldsync backup pull` completed successfully.")
		return nil
	},
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the local cache with the S3 backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		b, err := newBackup(cmd, a)
		if err != nil {
			return err
		}
		remote, found, err := b.remoteManifest(cmd.Context())
		if err != nil {
			return err
		}
		local, err := a.cache.SyncedAt()
		if err != nil {
			return err
		}

		fmt.Printf("📌 Local cache synced at: %s\n", formatSyncTime(local))
		if !found {
			fmt.Println("📌 No backup on S3 yet")
			return nil
		}
		fmt.Printf("📌 Backup from %s (%s): %d tasks synced at %s\n",
			remote.DeviceName, remote.User, remote.TaskCount, formatSyncTime(remote.SyncedAt))
		if util.IsRemoteNewer(local, remote) {
			fmt.Println("⬇️  Backup is newer. Run `fieldsync backup pull`")
		}
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupPushCmd, backupPullCmd, backupStatusCmd)
	rootCmd.AddCommand(backupCmd)

	backupCmd.PersistentFlags().StringVar(&backupDevice, "device", "", "Device ID whose backup to use (default is this device)")
	backupPullCmd.Flags().BoolVarP(&backupForce, "force", "f", false, "Restore even when the local cache is newer")
}
