package performance

// Tier is the coarse device classification that selects a settings bundle.
type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

// rank orders tiers from most to least conservative.
func (t Tier) rank() int {
	switch t {
	case TierLow:
		return 0
	case TierHigh:
		return 2
	default:
		return 1
	}
}

// NetworkSpeed buckets the effective connection type.
type NetworkSpeed string

const (
	NetworkSlow   NetworkSpeed = "slow"
	NetworkMedium NetworkSpeed = "medium"
	NetworkFast   NetworkSpeed = "fast"
)

// ImageQuality is the image tier served to the client.
type ImageQuality string

const (
	QualityLow    ImageQuality = "low"
	QualityMedium ImageQuality = "medium"
	QualityHigh   ImageQuality = "high"
)

// lowBatteryThreshold is the level below which effects are switched off.
const lowBatteryThreshold = 0.2

// DeviceCapabilities is the snapshot produced once by the Prober.
type DeviceCapabilities struct {
	Tier                         Tier         `json:"tier"`
	HasWeakGPU                   bool         `json:"has_weak_gpu"`
	HasLimitedMemory             bool         `json:"has_limited_memory"`
	SupportsWebGL                bool         `json:"supports_webgl"`
	SupportsHardwareAcceleration bool         `json:"supports_hardware_acceleration"`
	NetworkSpeed                 NetworkSpeed `json:"network_speed"`
	BatteryLevel                 *float64     `json:"battery_level,omitempty"`
	IsCharging                   *bool        `json:"is_charging,omitempty"`
}

// DefaultCapabilities returns the conservative values used when no signal is available.
func DefaultCapabilities() DeviceCapabilities {
	return DeviceCapabilities{
		Tier:         TierMid,
		NetworkSpeed: NetworkMedium,
	}
}

// LowBattery reports whether a battery level is known and below 20%.
func (c DeviceCapabilities) LowBattery() bool {
	return c.BatteryLevel != nil && *c.BatteryLevel < lowBatteryThreshold
}
