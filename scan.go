package main

import (
	"context"
	"fmt"

	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/config"
	"github.com/datakeeper/scanrelay/logger"
	"github.com/spf13/cobra"
)

func newScanCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <path>...",
		Short: "Invoke scanFile once per path and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(logger.Config{DevMode: true, Stderr: true})
			return runScan(cmd.Context(), cfg, args, func(path string, res channel.Result) {
				if res.OK() {
					cmd.Printf("%s: ok\n", path)
				} else {
					cmd.PrintErrf("%s: %s: %s\n", path, res.Kind, res.Message)
				}
			})
		},
	}
}

func runScan(ctx context.Context, cfg *config.Config, paths []string, report func(string, channel.Result)) error {
	listener, err := newListener(cfg, nil)
	if err != nil {
		return err
	}

	failed := 0
	for _, p := range paths {
		res := listener.Handle(ctx, channel.MethodScanFile, map[string]any{channel.ArgPath: p})
		report(p, res)
		if !res.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scans failed", failed, len(paths))
	}
	return nil
}
