package main

import (
	"fmt"
	"os"

	"github.com/datakeeper/scanrelay/config"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()

	root := &cobra.Command{
		Use:           "scanrelay",
		Short:         "Tell the media indexer about changed files",
		Long:          "Relays scanFile calls from the database_export_channel to the host's media scanner.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringSliceVar(&cfg.Dispatchers, "dispatcher", cfg.Dispatchers, "dispatch backends: broadcast, command, jellyfin, log (env DISPATCHER)")
	pf.StringVar(&cfg.Command, "dispatch-command", cfg.Command, "argv template for the command backend, {path} and {uri} are substituted (env DISPATCH_COMMAND)")
	pf.StringVar(&cfg.JellyfinURL, "jellyfin-url", cfg.JellyfinURL, "Jellyfin server URL (env JELLYFIN_URL)")
	pf.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "directory relative paths are resolved against (env BASE_DIR)")
	pf.BoolVar(&cfg.LegacySilent, "legacy-silent", cfg.LegacySilent, "report success even when the indexer refuses a request (env LEGACY_SILENT_DISPATCH)")
	pf.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the log file (env DATA_DIR)")
	pf.BoolVar(&cfg.DevMode, "dev", cfg.DevMode, "log to the console and skip websocket origin checks (env DEV_MODE)")

	root.AddCommand(newServeCmd(&cfg))
	root.AddCommand(newMCPCmd(&cfg))
	root.AddCommand(newScanCmd(&cfg))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
