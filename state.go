package fog

import "fmt"

// State is the per-frame state of a Pass, evaluated in Setup.
type State int

const (
	// StateIdle means no volume is enabled. The pass records nothing.
	StateIdle State = iota

	// StateActive means at least one volume is enabled.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateActive:
		return "Active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PassEvent is the point of the host frame at which a pass runs. Passes
// run in ascending event order.
type PassEvent int

// Pass events in frame order.
const (
	BeforeRendering PassEvent = iota
	BeforeRenderingShadows
	AfterRenderingShadows
	BeforeRenderingPrePasses
	AfterRenderingPrePasses
	BeforeRenderingOpaques
	AfterRenderingOpaques
	BeforeRenderingSkybox
	AfterRenderingSkybox
	BeforeRenderingTransparents
	AfterRenderingTransparents
	BeforeRenderingPostProcessing
	AfterRenderingPostProcessing
	AfterRendering
)

var passEventNames = [...]string{
	BeforeRendering:               "BeforeRendering",
	BeforeRenderingShadows:        "BeforeRenderingShadows",
	AfterRenderingShadows:         "AfterRenderingShadows",
	BeforeRenderingPrePasses:      "BeforeRenderingPrePasses",
	AfterRenderingPrePasses:       "AfterRenderingPrePasses",
	BeforeRenderingOpaques:        "BeforeRenderingOpaques",
	AfterRenderingOpaques:         "AfterRenderingOpaques",
	BeforeRenderingSkybox:         "BeforeRenderingSkybox",
	AfterRenderingSkybox:          "AfterRenderingSkybox",
	BeforeRenderingTransparents:   "BeforeRenderingTransparents",
	AfterRenderingTransparents:    "AfterRenderingTransparents",
	BeforeRenderingPostProcessing: "BeforeRenderingPostProcessing",
	AfterRenderingPostProcessing:  "AfterRenderingPostProcessing",
	AfterRendering:                "AfterRendering",
}

// String returns the event name.
func (e PassEvent) String() string {
	if e >= 0 && int(e) < len(passEventNames) {
		return passEventNames[e]
	}
	return fmt.Sprintf("PassEvent(%d)", int(e))
}
