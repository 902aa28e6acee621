package performance

// PerformanceSettings is the bundle of presentation toggles derived from
// DeviceCapabilities.
type PerformanceSettings struct {
	EnableAnimations  bool         `json:"enable_animations"`
	EnableTransitions bool         `json:"enable_transitions"`
	EnableShadows     bool         `json:"enable_shadows"`
	EnableBlur        bool         `json:"enable_blur"`
	ImageQuality      ImageQuality `json:"image_quality"`
	// AnimationDuration is in milliseconds.
	AnimationDuration int  `json:"animation_duration"`
	ReduceMotion      bool `json:"reduce_motion"`
}

// DefaultSettings is the mid tier bundle used before any probe has run.
func DefaultSettings() PerformanceSettings {
	return tierSettings(TierMid)
}

// Derive maps capabilities to settings. Rules are evaluated top to bottom
// and the first match wins; network and battery adjustments apply last.
func Derive(caps DeviceCapabilities) PerformanceSettings {
	tier := caps.Tier
	if caps.HasWeakGPU {
		tier = TierLow
	}
	s := tierSettings(tier)

	if caps.NetworkSpeed == NetworkSlow {
		s.ImageQuality = QualityLow
		s.EnableBlur = false
	}
	if caps.LowBattery() {
		s.EnableAnimations = false
		s.EnableTransitions = false
		s.AnimationDuration = 0
	}
	return s
}

func tierSettings(tier Tier) PerformanceSettings {
	switch tier {
	case TierLow:
		return PerformanceSettings{
			ImageQuality:      QualityLow,
			AnimationDuration: 0,
			ReduceMotion:      true,
		}
	case TierMid:
		return PerformanceSettings{
			EnableAnimations:  true,
			EnableTransitions: true,
			ImageQuality:      QualityMedium,
			AnimationDuration: 200,
		}
	default:
		return PerformanceSettings{
			EnableAnimations:  true,
			EnableTransitions: true,
			EnableShadows:     true,
			EnableBlur:        true,
			ImageQuality:      QualityHigh,
			AnimationDuration: 300,
		}
	}
}
