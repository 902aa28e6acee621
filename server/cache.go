package main

import (
	"os"
	"path/filepath"

	"arogyam-go/internal/config"
	"arogyam-go/internal/offline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the versioned offline asset cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Fetch the asset manifest into the current cache version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCache(func(conf *config.Config, log *zap.Logger, c *offline.Cache) error {
					if err := c.Install(cmd.Context(), conf.Cache.Manifest); err != nil {
						return err
					}
					log.Info("Offline cache installed", zap.String("cache", c.Name()), zap.Int("assets", len(conf.Cache.Manifest)))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "activate",
			Short: "Make the current version live and delete older ones",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCache(func(conf *config.Config, log *zap.Logger, c *offline.Cache) error {
					removed, err := c.Activate()
					if err != nil {
						return err
					}
					log.Info("Offline cache activated", zap.String("cache", c.Name()), zap.Strings("removed", removed))
					return nil
				})
			},
		},
	)
	return cmd
}

func withCache(fn func(*config.Config, *zap.Logger, *offline.Cache) error) error {
	conf, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(filepath.Dir(conf.Cache.Path), 0755); err != nil {
		return err
	}
	c, err := offline.Open(conf.Cache.Path, offline.Options{
		Version:   conf.Cache.Version,
		Origin:    conf.Cache.Origin,
		FontHosts: conf.Cache.FontHosts,
		Log:       log,
	})
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(conf, log, c)
}
