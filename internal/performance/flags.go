package performance

import (
	"sort"
	"strings"
	"sync"
)

// Flag is a document-level class name.
type Flag string

const (
	FlagNoAnimations  Flag = "no-animations"
	FlagNoTransitions Flag = "no-transitions"
	FlagNoShadows     Flag = "no-shadows"
	FlagNoBlur        Flag = "no-blur"
	FlagReduceMotion  Flag = "reduce-motion"

	FlagLowEnd  Flag = "low-end-optimized"
	FlagMobile  Flag = "mobile-optimized"
	FlagHighEnd Flag = "high-end-optimized"
	FlagData    Flag = "data-optimized"
	FlagBattery Flag = "battery-optimized"
)

// vocabulary is every flag the Applier owns.
var vocabulary = []Flag{
	FlagNoAnimations,
	FlagNoTransitions,
	FlagNoShadows,
	FlagNoBlur,
	FlagReduceMotion,
	FlagLowEnd,
	FlagMobile,
	FlagHighEnd,
	FlagData,
	FlagBattery,
}

// FlagSet is the document-level class list. Only an Applier writes to it;
// everything else reads. Classes outside the Applier vocabulary (set by
// templates, say) are preserved across reconciliation.
type FlagSet struct {
	mu    sync.RWMutex
	flags map[Flag]struct{}
}

func NewFlagSet(initial ...Flag) *FlagSet {
	fs := &FlagSet{flags: make(map[Flag]struct{}, len(initial))}
	for _, f := range initial {
		fs.flags[f] = struct{}{}
	}
	return fs
}

func (fs *FlagSet) Has(f Flag) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.flags[f]
	return ok
}

// List returns the flags sorted by name.
func (fs *FlagSet) List() []Flag {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]Flag, 0, len(fs.flags))
	for f := range fs.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as a class attribute value.
func (fs *FlagSet) String() string {
	list := fs.List()
	parts := make([]string, len(list))
	for i, f := range list {
		parts[i] = string(f)
	}
	return strings.Join(parts, " ")
}

func (fs *FlagSet) reconcile(target []Flag) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, f := range vocabulary {
		delete(fs.flags, f)
	}
	for _, f := range target {
		fs.flags[f] = struct{}{}
	}
}

// Applier translates settings into flags on its FlagSet.
type Applier struct {
	flags *FlagSet
}

func NewApplier(flags *FlagSet) *Applier {
	return &Applier{flags: flags}
}

// Flags exposes the set for reading.
func (a *Applier) Flags() *FlagSet {
	return a.flags
}

// Apply removes every flag of the vocabulary and adds the set computed from
// settings and, when known, capabilities. Repeated calls leave exactly what
// the last call specifies.
func (a *Applier) Apply(settings PerformanceSettings, caps *DeviceCapabilities) {
	a.flags.reconcile(TargetFlags(settings, caps))
}

// TargetFlags computes the flag set Apply would leave behind.
func TargetFlags(settings PerformanceSettings, caps *DeviceCapabilities) []Flag {
	var target []Flag
	if !settings.EnableAnimations {
		target = append(target, FlagNoAnimations)
	}
	if !settings.EnableTransitions {
		target = append(target, FlagNoTransitions)
	}
	if !settings.EnableShadows {
		target = append(target, FlagNoShadows)
	}
	if !settings.EnableBlur {
		target = append(target, FlagNoBlur)
	}
	if settings.ReduceMotion {
		target = append(target, FlagReduceMotion)
	}
	if caps == nil {
		return target
	}

	switch caps.Tier {
	case TierLow:
		target = append(target, FlagLowEnd)
	case TierHigh:
		target = append(target, FlagHighEnd)
	default:
		target = append(target, FlagMobile)
	}
	if caps.NetworkSpeed == NetworkSlow {
		target = append(target, FlagData)
	}
	if caps.LowBattery() {
		target = append(target, FlagBattery)
	}
	return target
}
