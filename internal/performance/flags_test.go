package performance

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplier_ApplyIsIdempotent(t *testing.T) {
	flags := NewFlagSet()
	applier := NewApplier(flags)
	caps := DeviceCapabilities{Tier: TierMid, NetworkSpeed: NetworkMedium}
	settings := Derive(caps)

	applier.Apply(settings, &caps)
	first := flags.List()
	applier.Apply(settings, &caps)

	require.Equal(t, first, flags.List())
	assert.Equal(t, []Flag{FlagMobile, FlagNoBlur, FlagNoShadows}, first)
}

func TestApplier_SecondCallWins(t *testing.T) {
	flags := NewFlagSet()
	applier := NewApplier(flags)

	lowCaps := DeviceCapabilities{Tier: TierLow, NetworkSpeed: NetworkSlow, BatteryLevel: ptr(0.1)}
	applier.Apply(Derive(lowCaps), &lowCaps)
	require.True(t, flags.Has(FlagLowEnd))
	require.True(t, flags.Has(FlagData))
	require.True(t, flags.Has(FlagBattery))

	highCaps := DeviceCapabilities{Tier: TierHigh, NetworkSpeed: NetworkFast}
	applier.Apply(Derive(highCaps), &highCaps)
	assert.Equal(t, []Flag{FlagHighEnd}, flags.List())
}

func TestApplier_WithoutCapabilitiesOnlyDisableFlags(t *testing.T) {
	flags := NewFlagSet()
	NewApplier(flags).Apply(Derive(DeviceCapabilities{Tier: TierLow}), nil)

	assert.Equal(t, []Flag{
		FlagNoAnimations,
		FlagNoBlur,
		FlagNoShadows,
		FlagNoTransitions,
		FlagReduceMotion,
	}, flags.List())
}

func TestApplier_PreservesForeignClasses(t *testing.T) {
	flags := NewFlagSet("portal-page")
	caps := DeviceCapabilities{Tier: TierHigh, NetworkSpeed: NetworkFast}
	NewApplier(flags).Apply(Derive(caps), &caps)

	assert.Equal(t, "high-end-optimized portal-page", flags.String())
}

func TestApplier_LowEndWeakGPUScenario(t *testing.T) {
	caps := DeviceCapabilities{
		Tier:         TierLow,
		HasWeakGPU:   true,
		NetworkSpeed: NetworkFast,
		BatteryLevel: ptr(0.8),
	}
	settings := Derive(caps)
	assert.False(t, settings.EnableAnimations)
	assert.False(t, settings.EnableShadows)
	assert.Equal(t, QualityLow, settings.ImageQuality)
	assert.Zero(t, settings.AnimationDuration)
	assert.True(t, settings.ReduceMotion)

	flags := NewFlagSet()
	NewApplier(flags).Apply(settings, &caps)
	assert.ElementsMatch(t, []Flag{
		FlagNoAnimations,
		FlagNoTransitions,
		FlagNoShadows,
		FlagNoBlur,
		FlagReduceMotion,
		FlagLowEnd,
	}, flags.List())
}

func TestProfileOf_HeadersOnly(t *testing.T) {
	header := http.Header{}
	header.Set(HeaderDeviceMemory, "0.5")
	header.Set(HeaderSaveData, "on")

	p := NewProber(zap.NewNop()).ProfileOf(context.Background(), NewHintsEnvironment(header, nil))

	assert.Equal(t, TierLow, p.Capabilities.Tier)
	assert.Equal(t, NetworkSlow, p.Capabilities.NetworkSpeed)
	assert.Equal(t, []Flag{FlagData, FlagLowEnd, FlagNoAnimations, FlagNoBlur, FlagNoShadows, FlagNoTransitions, FlagReduceMotion}, p.Flags)
	assert.Equal(t, "data-optimized low-end-optimized no-animations no-blur no-shadows no-transitions reduce-motion", p.BodyClass)
}
