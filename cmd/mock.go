/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/fakeapi"
	"github.com/nakachan-ing/fieldsync-cli/internal/util"
	"github.com/spf13/cobra"
)

var mockAddr string
var mockLogEnv string

var mockServerCmd = &cobra.Command{
	Use:    "mock-server",
	Short:  "Run a local stand-in for the portal API with demo data",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := util.SetupLogger(mockLogEnv, "")
		if err != nil {
			return err
		}
		defer closer.Close()

		portal := fakeapi.New(logger)
		if err := portal.Seed(); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              mockAddr,
			Handler:           portal.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()

		fmt.Printf("🚀 Mock portal listening on %s (base URL http://localhost%s/api)\n", mockAddr, mockAddr)
		fmt.Printf("👷 Sign in with `fieldsync login %s -p %s`\n", fakeapi.SeedUsername, fakeapi.SeedPassword)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("❌ Mock portal stopped: %w", err)
			}
			return nil
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("❌ Failed to stop mock portal: %w", err)
		}
		fmt.Println("👋 Mock portal stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mockServerCmd)
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":4000", "Listen address")
	mockServerCmd.Flags().StringVar(&mockLogEnv, "log-env", "local", "Log format (local, dev, prod)")
}
