package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arogyam-go/internal/performance"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	var (
		watch    time.Duration
		override string
	)
	cmd := &cobra.Command{
		Use:   "profile <report.json>",
		Short: "Derive settings and flags from a saved capability report",
		Long: "Reads a capability report as posted by the site, prints the derived profile and, " +
			"with --watch, runs the controller against a simulated frame clock and prints every snapshot. " +
			"--override applies a settings file after the first evaluation; SIGHUP re-derives the settings from the report.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var report performance.Report
			if err := json.Unmarshal(raw, &report); err != nil {
				return fmt.Errorf("invalid capability report: %w", err)
			}

			env := performance.NewHintsEnvironment(nil, &report)
			prober := performance.NewProber(log)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if watch <= 0 {
				return enc.Encode(prober.ProfileOf(cmd.Context(), env))
			}

			clk := clock.New()
			sampler := performance.NewSampler(clk, performance.ClockFrames{Clock: clk, Interval: conf.Performance.FrameInterval})
			ctrl := performance.NewController(log, clk, env, prober, performance.NewApplier(performance.NewFlagSet()), sampler)
			defer ctrl.Dispose()

			ctrl.Subscribe(func(s performance.Snapshot) {
				enc.Encode(s)
			})
			if err := ctrl.Init(cmd.Context()); err != nil {
				return err
			}
			if override != "" {
				settings, err := readSettings(override)
				if err != nil {
					return err
				}
				ctrl.SetSettings(settings)
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			deadline := time.After(watch)
			for {
				select {
				case <-hup:
					log.Info("Re-deriving performance settings")
					ctrl.Reevaluate()
				case <-deadline:
					return nil
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", 0, "keep sampling frames for this long")
	cmd.Flags().StringVar(&override, "override", "", "JSON settings file applied in place of the derived settings (with --watch)")
	return cmd
}

func readSettings(path string) (performance.PerformanceSettings, error) {
	settings := performance.DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return settings, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}
