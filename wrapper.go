package qcm

import (
	"github.com/pkg/errors"

	"github.com/cjchua/qcodes-measurements/drivers"
	"github.com/cjchua/qcodes-measurements/param"
)

// GateWrapper couples a gate with the channel it lives on and exposes
// both as a named-parameter bundle. The base wrapper serves analog
// gates; DigitalGateWrapper builds on it.
type GateWrapper struct {
	name    string
	channel drivers.Channel
	params  *param.Set
}

func newGateWrapper(name string, channel drivers.Channel, get func() (interface{}, error), set func(interface{}) error) *GateWrapper {
	w := &GateWrapper{
		name:    name,
		channel: channel,
		params:  param.NewSet(),
	}
	w.params.Add(&param.Param{
		Name:   "voltage",
		Label:  name + " voltage",
		Unit:   "V",
		Vals:   param.AnyNumber(),
		GetCmd: get,
		SetCmd: set,
	})
	return w
}

// NewGateWrapper wraps an analog gate on its channel.
func NewGateWrapper(gate *Gate, channel drivers.Channel) (*GateWrapper, error) {
	if channel == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s needs a channel", gate.Name())
	}
	return newGateWrapper(gate.Name(), channel,
		func() (interface{}, error) { return gate.Voltage() },
		func(value interface{}) error {
			v, ok := param.AsFloat(value)
			if !ok {
				return errors.Wrapf(ErrInvalidArgument, "%v is not a voltage", value)
			}
			return gate.SetVoltage(v)
		}), nil
}

func (w *GateWrapper) Name() string {
	return w.name
}

func (w *GateWrapper) Channel() drivers.Channel {
	return w.channel
}

// Parameters is the named-parameter bundle of the wrapper.
func (w *GateWrapper) Parameters() *param.Set {
	return w.params
}

func (w *GateWrapper) Open() error {
	return w.channel.Open()
}

func (w *GateWrapper) DAC() error {
	return w.channel.DAC()
}

func (w *GateWrapper) Probe() error {
	return w.channel.Probe()
}

func (w *GateWrapper) Ground() error {
	return w.channel.Ground()
}

// DigitalGateWrapper exposes a digital gate as the parameter bundle
// out / io_mode / lock / v_high / v_low / voltage and owns the io_mode
// transitions.
type DigitalGateWrapper struct {
	GateWrapper
	gate *DigitalGate
}

func NewDigitalGateWrapper(gate *DigitalGate, channel drivers.Channel) (*DigitalGateWrapper, error) {
	if channel == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s needs a channel", gate.Name())
	}

	w := &DigitalGateWrapper{
		GateWrapper: *newGateWrapper(gate.Name(), channel,
			func() (interface{}, error) { level, err := gate.Read(); return int(level), err },
			func(value interface{}) error { return writeTruthy(gate, value) }),
		gate: gate,
	}

	// The base wrapper pulls "voltage" from the gate value, which for a
	// digital gate reads back 1/0/-1. Rebind it to the raw channel
	// voltage.
	w.params.Replace(&param.Param{
		Name:   "voltage",
		Label:  gate.Label() + " voltage",
		Unit:   "V",
		Vals:   param.AnyNumber(),
		GetCmd: func() (interface{}, error) { return channel.Voltage() },
		SetCmd: func(value interface{}) error {
			v, ok := param.AsFloat(value)
			if !ok {
				return errors.Wrapf(ErrInvalidArgument, "%v is not a voltage", value)
			}
			return channel.SetVoltage(v)
		},
	})

	w.params.Add(&param.Param{
		Name:   "out",
		Label:  gate.Label(),
		Vals:   param.NewMultiType(param.Bools{}, param.AnyNumber()),
		GetCmd: func() (interface{}, error) { level, err := gate.Read(); return int(level), err },
		SetCmd: func(value interface{}) error { return writeTruthy(gate, value) },
	})
	w.params.Add(&param.Param{
		Name:   "io_mode",
		Vals:   param.NewEnum(modeStrings()...),
		GetCmd: func() (interface{}, error) { return gate.IOMode().String(), nil },
		SetCmd: func(value interface{}) error { return w.SetIOMode(DigitalMode(value.(string))) },
	})
	w.params.Add(&param.Param{
		Name:   "lock",
		Vals:   param.Bools{},
		GetCmd: func() (interface{}, error) { return gate.Locked(), nil },
		SetCmd: func(value interface{}) error { gate.SetLock(value.(bool)); return nil },
	})
	w.params.Add(&param.Param{
		Name:   "v_high",
		Unit:   "V",
		Vals:   param.AnyNumber(),
		GetCmd: func() (interface{}, error) { return gate.VHigh(), nil },
		SetCmd: func(value interface{}) error { return setFloat(gate.SetVHigh, value) },
	})
	w.params.Add(&param.Param{
		Name:   "v_low",
		Unit:   "V",
		Vals:   param.AnyNumber(),
		GetCmd: func() (interface{}, error) { return gate.VLow(), nil },
		SetCmd: func(value interface{}) error { return setFloat(gate.SetVLow, value) },
	})

	return w, nil
}

func (w *DigitalGateWrapper) Gate() *DigitalGate {
	return w.gate
}

// Out reads the gate's tri-state value.
func (w *DigitalGateWrapper) Out() (Level, error) {
	return w.gate.Read()
}

// SetOut writes the gate value, a no-op while locked.
func (w *DigitalGateWrapper) SetOut(high bool) error {
	return w.gate.Write(high)
}

func (w *DigitalGateWrapper) IOMode() DigitalMode {
	return w.gate.IOMode()
}

// SetIOMode switches the channel wiring to match the requested mode.
// The lock is cleared before any dispatch, HIGH/LOW drive the value and
// lock it, and the mode is stored only once every step succeeded. A
// failed capability call leaves the transition partially applied with
// the previous mode still recorded.
func (w *DigitalGateWrapper) SetIOMode(mode DigitalMode) error {
	if err := mode.Valid(); err != nil {
		return err
	}

	w.gate.SetLock(false)
	switch mode {
	case ModeIn:
		if err := w.Open(); err != nil {
			return err
		}
	case ModeOut:
		if err := w.DAC(); err != nil {
			return err
		}
	case ModeProbeOut:
		if err := w.Probe(); err != nil {
			return err
		}
	case ModeHigh:
		if err := w.DAC(); err != nil {
			return err
		}
		if err := w.gate.Write(true); err != nil {
			return err
		}
		w.gate.SetLock(true)
	case ModeLow:
		if err := w.DAC(); err != nil {
			return err
		}
		if err := w.gate.Write(false); err != nil {
			return err
		}
		w.gate.SetLock(true)
	case ModeGnd:
		if err := w.Ground(); err != nil {
			return err
		}
	}
	w.gate.setIOMode(mode)
	return nil
}

// Locked and SetLock bypass the mode machine, so a caller can force the
// lock either way independent of io_mode.
func (w *DigitalGateWrapper) Locked() bool {
	return w.gate.Locked()
}

func (w *DigitalGateWrapper) SetLock(lock bool) {
	w.gate.SetLock(lock)
}

func (w *DigitalGateWrapper) VHigh() float64 {
	return w.gate.VHigh()
}

func (w *DigitalGateWrapper) SetVHigh(v float64) error {
	return w.gate.SetVHigh(v)
}

func (w *DigitalGateWrapper) VLow() float64 {
	return w.gate.VLow()
}

func (w *DigitalGateWrapper) SetVLow(v float64) error {
	return w.gate.SetVLow(v)
}

// Voltage reads the raw analog voltage of the channel, not the logical
// gate value.
func (w *DigitalGateWrapper) Voltage() (float64, error) {
	return w.channel.Voltage()
}

// NewMDACDigitalGateWrapper wraps a gate on an MDAC channel. The channel
// hardware filter is constrained to levels 0..2 and starts at 0.
func NewMDACDigitalGateWrapper(gate *DigitalGate, channel drivers.FilterChannel) (*DigitalGateWrapper, error) {
	w, err := NewDigitalGateWrapper(gate, channel)
	if err != nil {
		return nil, err
	}
	w.params.Add(&param.Param{
		Name:   "filter",
		Vals:   param.NewEnum(0, 1, 2),
		GetCmd: func() (interface{}, error) { return channel.Filter() },
		SetCmd: func(value interface{}) error { return channel.SetFilter(value.(int)) },
	})
	if err := channel.SetFilter(0); err != nil {
		return nil, errors.Wrapf(err, "initializing filter of gate %s", gate.Name())
	}
	return w, nil
}

// NewBBDigitalGateWrapper wraps a gate on a breakout-box channel. No
// extra setup beyond the generic wrapper.
func NewBBDigitalGateWrapper(gate *DigitalGate, channel drivers.Channel) (*DigitalGateWrapper, error) {
	return NewDigitalGateWrapper(gate, channel)
}

func writeTruthy(gate *DigitalGate, value interface{}) error {
	f, ok := param.AsFloat(value)
	if !ok {
		return errors.Wrapf(ErrInvalidArgument, "%v is not a gate value", value)
	}
	return gate.Write(f != 0)
}

func setFloat(set func(float64) error, value interface{}) error {
	f, ok := param.AsFloat(value)
	if !ok {
		return errors.Wrapf(ErrInvalidArgument, "%v is not a voltage", value)
	}
	return set(f)
}

func modeStrings() []interface{} {
	modes := DigitalModes()
	vals := make([]interface{}, len(modes))
	for i, m := range modes {
		vals[i] = m.String()
	}
	return vals
}
