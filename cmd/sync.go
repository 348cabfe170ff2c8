/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh your tasks from the portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Println("🔄 Running `fieldsync sync`...")
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}
		release, err := a.lock("sync")
		if err != nil {
			return err
		}
		defer release()

		tasks, err := a.client.RefreshAll(cmd.Context())
		if err != nil {
			return err
		}

		renderCounts(os.Stdout, tasksync.ComputeStatusCounts(tasks))
		log.Printf("✅ `fieldsync sync` completed: %d tasks", len(tasks))
		return nil
	},
}

var syncWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cache fresh by fetching on an interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		interval := watchInterval
		if interval <= 0 {
			interval = time.Duration(a.config.Watch.IntervalMinutes) * time.Minute
		}
		if interval <= 0 {
			return fmt.Errorf("❌ watch interval must be positive")
		}

		ctx := cmd.Context()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Printf("👀 Fetching tasks every %s (Ctrl+C to stop)", interval)
		for {
			a.watchOnce(cmd)
			select {
			case <-ctx.Done():
				log.Println("👋 Stopped watching")
				return nil
			case <-ticker.C:
			}
		}
	},
}

// watchOnce runs a single fetch under the process lock. Errors are reported
// and the loop carries on.
func (a *app) watchOnce(cmd *cobra.Command) {
	release, err := a.lock("sync watch")
	if err != nil {
		log.Println(explain(err))
		return
	}
	defer release()

	tasks, err := a.client.FetchTasks(cmd.Context())
	if err != nil {
		log.Println(explain(err))
		return
	}
	counts := tasksync.ComputeStatusCounts(tasks)
	log.Printf("🔄 %d tasks: %d open, %d in progress, %d completed, %d cancelled",
		counts.Total(), counts.Open, counts.InProgress, counts.Completed, counts.Cancelled)
}

func init() {
	syncCmd.AddCommand(syncWatchCmd)
	rootCmd.AddCommand(syncCmd)
	syncWatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Fetch interval (default is watch.interval_minutes)")
}
