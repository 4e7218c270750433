// Package qcm maps logical digital control lines onto the analog
// voltage-source channels of an instrument rack. A DigitalDevice owns a
// set of DigitalGates, each a two-level (v_high/v_low) output with
// hysteresis readback, wrapped by a DigitalGateWrapper that routes the
// channel between DAC, external line and ground per its io mode.
package qcm

import (
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/cjchua/qcodes-measurements/drivers"
	"github.com/cjchua/qcodes-measurements/param"
)

// Device owns the analog gates of one physical device.
type Device struct {
	name   string
	logger *log.Logger

	gates       []*GateWrapper
	gatesByName map[string]*GateWrapper
}

func NewDevice(name string) *Device {
	return &Device{
		name:        name,
		logger:      log.Default(),
		gatesByName: make(map[string]*GateWrapper),
	}
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) SetLogger(logger *log.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// AddGate registers an analog gate on the given channel.
func (d *Device) AddGate(name string, channel drivers.Channel) (*GateWrapper, error) {
	if _, exists := d.gatesByName[name]; exists {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s already registered", name)
	}
	gate, err := NewGate(name, channel)
	if err != nil {
		return nil, err
	}
	w, err := NewGateWrapper(gate, channel)
	if err != nil {
		return nil, err
	}
	d.gates = append(d.gates, w)
	d.gatesByName[name] = w
	d.logger.Info("registered gate", "device", d.name, "gate", name, "channel", channel.Label())
	return w, nil
}

// Gates returns the analog gate wrappers in registration order.
func (d *Device) Gates() []*GateWrapper {
	return d.gates
}

// Gate looks a registered analog gate up by name.
func (d *Device) Gate(name string) (*GateWrapper, error) {
	w, found := d.gatesByName[name]
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "gate %s", name)
	}
	return w, nil
}

// Default digital levels of a fresh DigitalDevice, 1.8 V logic.
const (
	DefaultVHigh = 1.8
	DefaultVLow  = 0.0
)

// DigitalDevice is a device expecting digital control next to its
// analog voltages. It owns the digital gates and the device-wide
// v_high/v_low defaults every new gate starts from.
type DigitalDevice struct {
	Device

	vHigh float64
	vLow  float64

	digitalGates  []*DigitalGateWrapper
	digitalByName map[string]*DigitalGateWrapper
	params        *param.Set
}

func NewDigitalDevice(name string) *DigitalDevice {
	d := &DigitalDevice{
		Device:        *NewDevice(name),
		vHigh:         DefaultVHigh,
		vLow:          DefaultVLow,
		digitalByName: make(map[string]*DigitalGateWrapper),
		params:        param.NewSet(),
	}
	d.params.Add(&param.Param{
		Name:   "v_high",
		Unit:   "V",
		Vals:   param.AnyNumber(),
		GetCmd: func() (interface{}, error) { return d.vHigh, nil },
		SetCmd: func(value interface{}) error { return setFloat(d.SetVHigh, value) },
	})
	d.params.Add(&param.Param{
		Name:   "v_low",
		Unit:   "V",
		Vals:   param.AnyNumber(),
		GetCmd: func() (interface{}, error) { return d.vLow, nil },
		SetCmd: func(value interface{}) error { return setFloat(d.SetVLow, value) },
	})
	return d
}

// Parameters is the device-wide parameter bundle (the digital default
// levels).
func (d *DigitalDevice) Parameters() *param.Set {
	return d.params
}

// AddDigitalGate creates a gate at the device's current default levels,
// picks the wrapper variant matching the channel kind, registers it and
// drives the requested io mode through the wrapper. An empty mode means
// OUT.
func (d *DigitalDevice) AddDigitalGate(name string, channel drivers.Channel, mode DigitalMode) (*DigitalGateWrapper, error) {
	if channel == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s needs a channel", name)
	}
	if _, exists := d.digitalByName[name]; exists {
		return nil, errors.Wrapf(ErrInvalidArgument, "digital gate %s already registered", name)
	}
	if len(mode) == 0 {
		mode = ModeOut
	}
	if err := mode.Valid(); err != nil {
		return nil, errors.Wrapf(err, "digital gate %s", name)
	}

	gate, err := NewDigitalGate(name, channel, DigitalGateConfig{
		VHigh:  d.vHigh,
		VLow:   d.vLow,
		IOMode: mode,
	})
	if err != nil {
		return nil, err
	}

	var w *DigitalGateWrapper
	switch channel.Kind() {
	case drivers.KindMDAC:
		filtered, ok := channel.(drivers.FilterChannel)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArgument, "channel %s reports mdac but has no filter", channel.Label())
		}
		w, err = NewMDACDigitalGateWrapper(gate, filtered)
	case drivers.KindBreakout:
		w, err = NewBBDigitalGateWrapper(gate, channel)
	default:
		w, err = NewDigitalGateWrapper(gate, channel)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "wrapping digital gate %s", name)
	}

	d.digitalGates = append(d.digitalGates, w)
	d.digitalByName[name] = w

	if err := w.SetIOMode(mode); err != nil {
		return nil, errors.Wrapf(err, "setting io mode of new gate %s", name)
	}
	d.logger.Info("registered digital gate",
		"device", d.name, "gate", name, "channel", channel.Label(), "io_mode", mode)
	return w, nil
}

// DigitalGates returns the digital gate wrappers in registration order.
func (d *DigitalDevice) DigitalGates() []*DigitalGateWrapper {
	return d.digitalGates
}

// ChannelController returns the wrapper owning a registered digital
// gate parameter.
func (d *DigitalDevice) ChannelController(name string) (*DigitalGateWrapper, error) {
	w, found := d.digitalByName[name]
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "no digital gate registered for %s", name)
	}
	return w, nil
}

func (d *DigitalDevice) VHigh() float64 {
	return d.vHigh
}

// SetVHigh fans the new high level out to every registered gate, then
// stores it as the device default. A failure mid-iteration leaves the
// earlier gates updated.
func (d *DigitalDevice) SetVHigh(v float64) error {
	for _, w := range d.digitalGates {
		if err := w.SetVHigh(v); err != nil {
			return errors.Wrapf(err, "updating v_high of gate %s", w.Name())
		}
	}
	d.vHigh = v
	return nil
}

func (d *DigitalDevice) VLow() float64 {
	return d.vLow
}

// SetVLow fans the new low level out like SetVHigh.
func (d *DigitalDevice) SetVLow(v float64) error {
	for _, w := range d.digitalGates {
		if err := w.SetVLow(v); err != nil {
			return errors.Wrapf(err, "updating v_low of gate %s", w.Name())
		}
	}
	d.vLow = v
	return nil
}
