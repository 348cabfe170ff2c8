/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
	"github.com/spf13/cobra"
)

var dashboardCached bool

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Show task counts per status and the open work",
	Aliases: []string{"dash"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		release, err := a.lock("dashboard")
		if err != nil {
			return err
		}
		defer release()

		tasks, err := a.loadTasks(cmd.Context(), dashboardCached)
		if err != nil {
			return err
		}

		if profile := a.client.Profile(); profile.Username != "" {
			fmt.Printf("👷 %s (%s)\n", profile.Username, profile.Role)
		}
		if syncedAt, err := a.cache.SyncedAt(); err == nil {
			fmt.Printf("🕒 Last synced: %s\n", formatSyncTime(syncedAt))
		}

		renderCounts(os.Stdout, tasksync.ComputeStatusCounts(tasks))

		for _, f := range []string{string(tasksync.FilterProgress), string(tasksync.FilterOpen)} {
			bucket, err := tasksync.FilterByStatus(tasks, f)
			if err != nil {
				return err
			}
			if len(bucket) == 0 {
				continue
			}
			fmt.Printf("\n%s\n", statusLabel(f))
			renderTaskTable(os.Stdout, bucket)
		}
		return nil
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the portal is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		health, err := a.client.Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s is %s (HTTP %d, %s)\n", a.config.API.BaseURL, health.Status, health.StatusCode, health.Latency.Round(time.Millisecond))
		if health.Version != "" {
			fmt.Printf("📦 Portal version %s\n", health.Version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd, pingCmd)
	dashboardCmd.Flags().BoolVar(&dashboardCached, "cached", false, "Read the last synced list instead of the portal")
}
