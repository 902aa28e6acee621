// Package performance adapts presentation to the capabilities of the
// device a page runs on.
//
// A Prober reads an Environment once and classifies the device into
// DeviceCapabilities. Derive maps capabilities to PerformanceSettings, and
// an Applier turns settings into the class flags of a FlagSet, the only
// place those flags are written. A Sampler reports live frame rates for
// display; it never feeds back into settings on its own.
//
// Controller owns one of each for a page lifetime:
//
//	flags := performance.NewFlagSet()
//	ctrl := performance.NewController(log, clk, env,
//		performance.NewProber(log),
//		performance.NewApplier(flags),
//		performance.NewSampler(clk, performance.ClockFrames{Clock: clk, Interval: 16 * time.Millisecond}),
//	)
//	if err := ctrl.Init(ctx); err != nil { ... }
//	defer ctrl.Dispose()
package performance
