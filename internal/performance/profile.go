package performance

import "context"

// AcceptCH lists the client hints a response should ask browsers to send.
const AcceptCH = HeaderDeviceMemory + ", " + HeaderECT + ", " + HeaderSaveData + ", " + HeaderReducedMotion

// Profile is a one-shot probe, derive and apply for a single client.
type Profile struct {
	Capabilities DeviceCapabilities  `json:"capabilities"`
	Settings     PerformanceSettings `json:"settings"`
	Flags        []Flag              `json:"flags"`
	BodyClass    string              `json:"body_class"`
}

// ProfileOf runs the full pipeline against env with a fresh flag set.
func (p *Prober) ProfileOf(ctx context.Context, env Environment) Profile {
	caps := p.Probe(ctx, env)
	settings := Derive(caps)
	applier := NewApplier(NewFlagSet())
	applier.Apply(settings, &caps)
	return Profile{
		Capabilities: caps,
		Settings:     settings,
		Flags:        applier.Flags().List(),
		BodyClass:    applier.Flags().String(),
	}
}
