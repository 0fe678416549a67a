package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/datakeeper/scanrelay/config"
	"github.com/datakeeper/scanrelay/logger"
	"github.com/datakeeper/scanrelay/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the scan_file tool over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), cfg)
		},
	}
}

func runMCP(ctx context.Context, cfg *config.Config) error {
	// stdout carries MCP frames
	logger.Init(logger.Config{DataDir: cfg.DataDir, DevMode: cfg.DevMode, Stderr: true})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := newListener(cfg, nil)
	if err != nil {
		return err
	}
	return mcp.NewServer(listener, version).Run(ctx, os.Stdin, os.Stdout)
}
