package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/datakeeper/scanrelay/channel"
	"github.com/datakeeper/scanrelay/config"
	"github.com/datakeeper/scanrelay/discovery"
	"github.com/datakeeper/scanrelay/logger"
	"github.com/datakeeper/scanrelay/watch"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the channel over WebSocket JSON-RPC and HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Port, "port", cfg.Port, "listen port (env PORT)")
	f.StringSliceVar(&cfg.WatchDirs, "watch", cfg.WatchDirs, "directories whose changes are scanned automatically (env WATCH_DIRS)")
	f.BoolVar(&cfg.MDNS, "mdns", cfg.MDNS, "advertise the relay via mDNS (env MDNS)")
	f.BoolVar(&cfg.ShowQR, "qr", cfg.ShowQR, "print the connection URL as a QR code on a terminal (env SHOW_QR)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Init(logger.Config{DataDir: cfg.DataDir, DevMode: cfg.DevMode})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := watch.NewEventWatcher()
	defer events.Stop()

	listener, err := newListener(cfg, events)
	if err != nil {
		return err
	}
	channels := channel.Registry{channel.Name: listener}

	if len(cfg.WatchDirs) > 0 {
		dirWatcher := watch.NewDirWatcher(cfg.WatchDirs, listener)
		if err := dirWatcher.Start(); err != nil {
			return fmt.Errorf("watch directories: %w", err)
		}
		defer dirWatcher.Stop()
	}

	if cfg.MDNS {
		adv, err := discovery.Advertise(cfg.MDNSInstance, cfg.Port, discovery.TXT(version, "/ws", channels.Names()))
		if err != nil {
			slog.Warn("mdns advertisement disabled", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: newHandler(cfg.Token, cfg.DevMode, channels, events),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "channels", channels.Names(), "version", version)
		errCh <- srv.ListenAndServe()
	}()

	if cfg.ShowQR && term.IsTerminal(int(os.Stdout.Fd())) {
		printConnectQR(cfg.Port)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printConnectQR(port int) {
	url := fmt.Sprintf("ws://%s/ws", net.JoinHostPort(lanAddress(), strconv.Itoa(port)))
	fmt.Fprintf(os.Stdout, "Connect the app to %s\n", url)
	qrterminal.GenerateHalfBlock(url, qrterminal.L, os.Stdout)
}

// lanAddress returns the first non-loopback IPv4 address, or localhost.
func lanAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
