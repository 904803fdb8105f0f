// Package main is the entry point of the reel monitor.
// It loads the configuration, constructs the listeners, the dispatcher and
// the status server, and runs them until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ReelMonitor/internal/core"
	"ReelMonitor/internal/model"
	"ReelMonitor/internal/util"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:          "reel_monitor",
		Short:        "Log raddecs and reelceiver statistics to rotating CSV files",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := model.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			util.SetupLogger(cfg.IsDebugMode)
			util.Info("[Main] Using config: %s", cfgPath)

			sys, err := core.NewSystemFromConfig(cfg, nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := sys.StartAll(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			util.Info("[Main] Shutting down system...")
			sys.StopAll()
			util.Info("[Main] System stopped cleanly.")
			return nil
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "configs/config.yml", "path to configuration file")

	if err := root.ExecuteContext(context.Background()); err != nil {
		util.Error("%v", err)
		os.Exit(1)
	}
}
