// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/bureau-foundation/listdev/lib/config"
	"github.com/bureau-foundation/listdev/lib/listfs"
	"github.com/bureau-foundation/listdev/lib/liststream"
	"github.com/bureau-foundation/listdev/lib/listservice"
	"github.com/bureau-foundation/listdev/lib/service"
	"github.com/bureau-foundation/listdev/lib/version"
)

// shutdownTimeout bounds how long teardown waits for the socket
// server to drain.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var socketPath string
	var mountpoint string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "path to config file (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flag.StringVar(&socketPath, "socket", "", "control socket path (overrides socket.path)")
	flag.StringVar(&mountpoint, "mountpoint", "", "FUSE mountpoint (overrides mount.mountpoint; empty disables the mount)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("listdev-daemon %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg, socketPath, mountpoint)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := service.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	serverOptions, err := buildServerOptions(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting listdev-daemon",
		"version", version.Info(),
		"environment", cfg.Environment,
	)

	session := liststream.New(buildSessionOptions(cfg.Store, logger))
	logger.Info("record list loaded",
		"max_records", cfg.Store.MaxRecords,
		"max_line_length", cfg.Store.MaxLineLength,
		"max_bytes", cfg.Store.MaxBytes,
	)

	serverOptions.Session = session
	server := listservice.NewServer(serverOptions)

	socketServer := service.NewSocketServer(cfg.Socket.Path, logger)
	server.Register(socketServer)

	serveErrors := make(chan error, 1)
	go func() { serveErrors <- socketServer.Serve(ctx) }()

	select {
	case <-socketServer.Ready():
	case err := <-serveErrors:
		session.Close()
		return fmt.Errorf("control socket: %w", err)
	}
	logger.Info("control socket listening",
		"path", cfg.Socket.Path,
		"actions", socketServer.Actions(),
	)

	var fuseServer *fuse.Server
	if cfg.Mount.Mountpoint != "" {
		fuseServer, err = mountList(cfg.Mount, session, logger)
		if err != nil {
			stop()
			<-serveErrors
			session.Close()
			return err
		}
		logger.Info("list file mounted",
			"mountpoint", cfg.Mount.Mountpoint,
			"file", cfg.Mount.FileName,
		)
	}

	go dumpOnSignal(ctx, server, logger)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case serveErr = <-serveErrors:
		logger.Error("control socket failed", "error", serveErr)
		serveErrors = nil
	}
	stop()

	if fuseServer != nil {
		if err := fuseServer.Unmount(); err != nil {
			logger.Error("unmount failed", "mountpoint", cfg.Mount.Mountpoint, "error", err)
		}
	}
	if serveErrors != nil {
		select {
		case err := <-serveErrors:
			if err != nil {
				logger.Error("control socket shutdown", "error", err)
			}
		case <-time.After(shutdownTimeout):
			logger.Warn("control socket did not shut down", "timeout", shutdownTimeout)
		}
	}
	server.CloseAll()
	stat, _ := session.Stat()
	session.Close()
	logger.Info("record list unloaded",
		"records", stat.Count,
		"generation", stat.Generation,
	)

	return serveErr
}

// loadConfig reads configPath if set, else the file named by
// LISTDEV_CONFIG, else returns expanded defaults.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	cfg := config.Default()
	cfg.Expand()
	return cfg, nil
}

// applyFlagOverrides replaces config paths with non-empty flag values,
// expanding ${VAR} references the way config files are expanded.
func applyFlagOverrides(cfg *config.Config, socketPath, mountpoint string) {
	if socketPath != "" {
		cfg.Socket.Path = config.ExpandPath(socketPath)
	}
	if mountpoint != "" {
		cfg.Mount.Mountpoint = config.ExpandPath(mountpoint)
	}
}

func buildSessionOptions(store config.StoreConfig, logger *slog.Logger) liststream.Options {
	return liststream.Options{
		Capacity:       store.MaxRecords,
		MaxLineLength:  store.MaxLineLength,
		MaxBytes:       store.MaxBytes,
		UnboundedFront: store.UnboundedFront,
		Logger:         logger.With("component", "session"),
	}
}

// buildServerOptions fills everything but the session.
func buildServerOptions(cfg *config.Config, logger *slog.Logger) (listservice.Options, error) {
	idleTimeout, err := cfg.HandleIdleTimeout()
	if err != nil {
		return listservice.Options{}, err
	}
	return listservice.Options{
		MaxHandles:  cfg.Socket.MaxHandles,
		IdleTimeout: idleTimeout,
		Logger:      logger.With("component", "control"),
	}, nil
}

func mountList(mount config.MountConfig, session *liststream.Session, logger *slog.Logger) (*fuse.Server, error) {
	if !listfs.Available() {
		return nil, fmt.Errorf("cannot mount %s: /dev/fuse is not accessible", mount.Mountpoint)
	}
	fuseServer, err := listfs.Mount(listfs.Options{
		Mountpoint: mount.Mountpoint,
		FileName:   mount.FileName,
		Session:    session,
		AllowOther: mount.AllowOther,
		Logger:     logger.With("component", "fuse"),
	})
	if err != nil {
		return nil, fmt.Errorf("mounting %s: %w", mount.Mountpoint, err)
	}
	return fuseServer, nil
}

// dumpOnSignal logs every record each time SIGUSR1 arrives, until ctx
// is done.
func dumpOnSignal(ctx context.Context, server *listservice.Server, logger *slog.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)
	defer signal.Stop(signals)

	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			if err := server.LogRecords(); err != nil {
				logger.Error("record dump failed", "error", err)
			}
		}
	}
}
