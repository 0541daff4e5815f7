package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/albumrelay/albumrelay/config"
	"github.com/albumrelay/albumrelay/relay"
)

const version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		albumRoot  string
		logDir     string
	)

	cmd := &cobra.Command{
		Use:           "albumrelay",
		Short:         "Relay new captures to Telegram, ntfy and Discord",
		Long:          "albumrelay watches a date-hierarchical capture store for new screenshots and movies and relays each one to the configured notification destinations.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, albumRoot, logDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.ini", "path to the ini configuration file")
	cmd.Flags().StringVar(&albumRoot, "album-root", "", "capture store root (overrides general.album_root)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "log directory (overrides general.log_dir)")

	return cmd
}

func run(parent context.Context, configPath, albumRoot, logDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if albumRoot != "" {
		cfg.General.AlbumRoot = albumRoot
	}
	if logDir != "" {
		cfg.General.LogDir = logDir
	}

	relay.InitLogger(cfg.General.LogDir, cfg.General.Level(), cfg.General.KeepLogs)
	relay.Banner(version)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	fs := afero.NewOsFs()

	var destinations []relay.Destination
	if cfg.Telegram.Enabled {
		destinations = append(destinations, relay.NewTelegram(cfg.Telegram, cfg.HTTP, fs))
	}
	if cfg.Ntfy.Enabled {
		destinations = append(destinations, relay.NewNtfy(cfg.Ntfy, cfg.HTTP, fs))
	}
	if cfg.Discord.Enabled {
		destinations = append(destinations, relay.NewDiscord(cfg.Discord, cfg.HTTP, fs))
	}

	queue := relay.NewUploadQueue(cfg.General.QueueCapacity)
	detector := relay.NewDetector(fs, cfg.General.AlbumRoot, queue, destinations, cfg.General.CheckInterval)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.General.WatchAlbum {
		watcher, err := relay.NewWatcher(cfg.General.AlbumRoot, detector.Kick)
		if err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		g.Go(func() error {
			if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		return detector.Run(ctx)
	})

	return g.Wait()
}
