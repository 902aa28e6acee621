package performance

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupported is returned by an Environment for a signal it cannot provide.
const ErrUnsupported Error = "signal not supported by environment"

// Error is a constant error type.
type Error string

func (err Error) Error() string { return string(err) }

// Battery is the state reported by a battery signal.
type Battery struct {
	Level    float64
	Charging bool
}

// Environment exposes the runtime signals the Prober inspects. The boolean
// result of each accessor reports whether the signal exists at all.
type Environment interface {
	DeviceMemory() (gib float64, ok bool)
	LogicalCores() (cores int, ok bool)
	WebGLRenderer() (renderer string, available bool, err error)
	Supports3DTransforms() (supported bool, ok bool)
	EffectiveConnectionType() (ect string, ok bool)
	Battery(ctx context.Context) (Battery, error)
	PrefersReducedMotion() bool
}

// weakGPUMarkers are renderer substrings of integrated, mobile or software GPUs.
var weakGPUMarkers = []string{
	"intel",
	"mali",
	"adreno",
	"powervr",
	"swiftshader",
	"llvmpipe",
	"mesa",
}

// Prober classifies the device behind an Environment.
type Prober struct {
	log *zap.Logger
}

func NewProber(log *zap.Logger) *Prober {
	return &Prober{log: log}
}

// Probe never fails: each sub-probe that cannot read its signal leaves the
// corresponding field at its default.
func (p *Prober) Probe(ctx context.Context, env Environment) DeviceCapabilities {
	caps := DefaultCapabilities()

	var hints []Tier
	if tier, limited, ok := probeMemory(env); ok {
		hints = append(hints, tier)
		caps.HasLimitedMemory = limited
	}
	if tier, ok := probeCores(env); ok {
		hints = append(hints, tier)
	}
	if len(hints) > 0 {
		caps.Tier = mostConservative(hints...)
	}

	webgl, weak, err := probeWebGL(env)
	if err != nil {
		p.log.Debug("WebGL renderer probe failed", zap.Error(err))
	}
	caps.SupportsWebGL = webgl
	caps.HasWeakGPU = weak

	if accelerated, ok := probeHardwareAcceleration(env); ok {
		caps.SupportsHardwareAcceleration = accelerated
		if !accelerated {
			caps.HasWeakGPU = true
		}
	}

	if speed, ok := probeNetwork(env); ok {
		caps.NetworkSpeed = speed
	}

	if battery, ok := probeBattery(ctx, env); ok {
		level, charging := battery.Level, battery.Charging
		caps.BatteryLevel = &level
		caps.IsCharging = &charging
	}

	if probeReducedMotion(env) {
		caps.Tier = TierLow
	}

	p.log.Debug("Device capabilities probed",
		zap.String("tier", string(caps.Tier)),
		zap.Bool("weak_gpu", caps.HasWeakGPU),
		zap.String("network", string(caps.NetworkSpeed)),
	)
	return caps
}

func probeMemory(env Environment) (tier Tier, limited bool, ok bool) {
	mem, ok := env.DeviceMemory()
	if !ok || mem <= 0 {
		return "", false, false
	}
	switch {
	case mem < 2:
		tier = TierLow
	case mem < 6:
		tier = TierMid
	default:
		tier = TierHigh
	}
	return tier, mem < 4, true
}

func probeCores(env Environment) (Tier, bool) {
	cores, ok := env.LogicalCores()
	if !ok || cores <= 0 {
		return "", false
	}
	switch {
	case cores < 4:
		return TierLow, true
	case cores < 8:
		return TierMid, true
	default:
		return TierHigh, true
	}
}

// probeWebGL reports WebGL availability and whether the renderer looks weak.
// A renderer that cannot be read leaves weak false.
func probeWebGL(env Environment) (available, weak bool, err error) {
	renderer, available, err := env.WebGLRenderer()
	if !available {
		return false, false, err
	}
	if err != nil {
		return true, false, err
	}
	return true, isWeakRenderer(renderer), nil
}

func isWeakRenderer(renderer string) bool {
	r := strings.ToLower(renderer)
	for _, marker := range weakGPUMarkers {
		if strings.Contains(r, marker) {
			return true
		}
	}
	return false
}

func probeHardwareAcceleration(env Environment) (bool, bool) {
	return env.Supports3DTransforms()
}

func probeNetwork(env Environment) (NetworkSpeed, bool) {
	ect, ok := env.EffectiveConnectionType()
	if !ok || ect == "" {
		return "", false
	}
	switch strings.ToLower(ect) {
	case "slow-2g", "2g":
		return NetworkSlow, true
	case "3g":
		return NetworkMedium, true
	default:
		return NetworkFast, true
	}
}

func probeBattery(ctx context.Context, env Environment) (Battery, bool) {
	battery, err := env.Battery(ctx)
	if err != nil {
		return Battery{}, false
	}
	if battery.Level < 0 || battery.Level > 1 {
		return Battery{}, false
	}
	return battery, true
}

func probeReducedMotion(env Environment) bool {
	return env.PrefersReducedMotion()
}

func mostConservative(tiers ...Tier) Tier {
	result := tiers[0]
	for _, t := range tiers[1:] {
		if t.rank() < result.rank() {
			result = t
		}
	}
	return result
}
