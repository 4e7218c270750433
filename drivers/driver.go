// Package drivers holds the hardware side of the digital gate layer:
// voltage-source channels and the relay backends that route them between
// the internal DAC bus, the external measurement line and ground.
package drivers

// ChannelKind tags the concrete backend behind a channel, so callers can
// pick the matching gate wrapper without inspecting types.
type ChannelKind string

const (
	KindGeneric  ChannelKind = "generic"
	KindMDAC     ChannelKind = "mdac"
	KindBreakout ChannelKind = "breakout"
)

// VoltageSource is the minimum capability a gate needs: a gettable,
// settable scalar output voltage.
type VoltageSource interface {
	Voltage() (float64, error)
	SetVoltage(v float64) error
}

// Channel is a voltage source whose line routing can be switched:
//
//	Open   - disconnect the DAC, connect the external line
//	DAC    - connect the DAC, disconnect the external line
//	Probe  - connect both
//	Ground - tie the line to ground
type Channel interface {
	VoltageSource
	Kind() ChannelKind
	Label() string
	Open() error
	DAC() error
	Probe() error
	Ground() error
}

// FilterChannel is a channel with a hardware output filter setting.
type FilterChannel interface {
	Channel
	Filter() (int, error)
	SetFilter(level int) error
}
