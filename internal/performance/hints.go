package performance

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Client hint request headers understood by HintsEnvironment.
const (
	HeaderDeviceMemory  = "Device-Memory"
	HeaderECT           = "ECT"
	HeaderSaveData      = "Save-Data"
	HeaderReducedMotion = "Sec-CH-Prefers-Reduced-Motion"
)

// Report is the capability report a page posts after reading its own
// browser APIs. Nil fields mean the API was missing.
type Report struct {
	DeviceMemory        *float64       `json:"device_memory,omitempty"`
	HardwareConcurrency *int           `json:"hardware_concurrency,omitempty"`
	WebGL               *WebGLReport   `json:"webgl,omitempty"`
	Transform3D         *bool          `json:"transform_3d,omitempty"`
	EffectiveType       string         `json:"effective_type,omitempty"`
	Battery             *BatteryReport `json:"battery,omitempty"`
	ReducedMotion       *bool          `json:"reduced_motion,omitempty"`
}

type WebGLReport struct {
	Available bool   `json:"available"`
	Renderer  string `json:"renderer,omitempty"`
	// Error carries the message of a failed debug-renderer extension lookup.
	Error string `json:"error,omitempty"`
}

type BatteryReport struct {
	Level    float64 `json:"level"`
	Charging bool    `json:"charging"`
	Error    string  `json:"error,omitempty"`
}

// HintsEnvironment answers probe signals from a posted Report, falling back
// to HTTP client hints for the signals browsers send as headers.
type HintsEnvironment struct {
	header http.Header
	report Report
}

func NewHintsEnvironment(header http.Header, report *Report) *HintsEnvironment {
	env := &HintsEnvironment{header: header}
	if env.header == nil {
		env.header = http.Header{}
	}
	if report != nil {
		env.report = *report
	}
	return env
}

func (e *HintsEnvironment) DeviceMemory() (float64, bool) {
	if e.report.DeviceMemory != nil {
		return *e.report.DeviceMemory, true
	}
	raw := e.header.Get(HeaderDeviceMemory)
	if raw == "" {
		return 0, false
	}
	mem, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return mem, true
}

func (e *HintsEnvironment) LogicalCores() (int, bool) {
	if e.report.HardwareConcurrency == nil {
		return 0, false
	}
	return *e.report.HardwareConcurrency, true
}

func (e *HintsEnvironment) WebGLRenderer() (string, bool, error) {
	gl := e.report.WebGL
	if gl == nil || !gl.Available {
		return "", false, nil
	}
	if gl.Error != "" {
		return "", true, errors.New(gl.Error)
	}
	return gl.Renderer, true, nil
}

func (e *HintsEnvironment) Supports3DTransforms() (bool, bool) {
	if e.report.Transform3D == nil {
		return false, false
	}
	return *e.report.Transform3D, true
}

func (e *HintsEnvironment) EffectiveConnectionType() (string, bool) {
	if strings.EqualFold(strings.TrimSpace(e.header.Get(HeaderSaveData)), "on") {
		return "2g", true
	}
	if e.report.EffectiveType != "" {
		return e.report.EffectiveType, true
	}
	if ect := strings.TrimSpace(e.header.Get(HeaderECT)); ect != "" {
		return ect, true
	}
	return "", false
}

func (e *HintsEnvironment) Battery(ctx context.Context) (Battery, error) {
	if err := ctx.Err(); err != nil {
		return Battery{}, err
	}
	b := e.report.Battery
	if b == nil {
		return Battery{}, ErrUnsupported
	}
	if b.Error != "" {
		return Battery{}, errors.New(b.Error)
	}
	return Battery{Level: b.Level, Charging: b.Charging}, nil
}

func (e *HintsEnvironment) PrefersReducedMotion() bool {
	if e.report.ReducedMotion != nil {
		return *e.report.ReducedMotion
	}
	return strings.EqualFold(strings.Trim(e.header.Get(HeaderReducedMotion), `" `), "reduce")
}
