package main

import (
	"fmt"
	"os"

	"arogyam-go/internal/config"
	logger "arogyam-go/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var projectRoot string

func main() {
	root := &cobra.Command{
		Use:           "arogyam",
		Short:         "Arogyam homeopathy clinic backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&projectRoot, "root", ".", "project root containing the config directory")

	root.AddCommand(serveCmd(), migrateCmd(), adminCmd(), profileCmd(), cacheCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the application logger.
// The configuration is read with a console logger because the file logger
// depends on it.
func bootstrap() (*config.Config, *zap.Logger, error) {
	boot, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	conf, err := config.Init(projectRoot, boot)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.Init(conf.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return conf, log, nil
}
