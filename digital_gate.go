package qcm

import (
	"math"

	"github.com/pkg/errors"

	"github.com/cjchua/qcodes-measurements/drivers"
)

// DefaultHysteresis is the readback window around v_high/v_low.
const DefaultHysteresis = 0.2

// DigitalGate is a two-level logical signal on top of an analog voltage
// source. It reads back high/low/undefined by comparing the source
// voltage to its two setpoints within a hysteresis window, and drives
// the source to one of the setpoints on write. A locked gate ignores
// writes. Gates are usually owned by a DigitalDevice, which supplies
// the v_high/v_low levels.
type DigitalGate struct {
	name       string
	label      string
	source     drivers.VoltageSource
	vHigh      float64
	vLow       float64
	hysteresis float64
	ioMode     DigitalMode
	lock       bool
}

// DigitalGateConfig carries the optional knobs of a gate. A zero
// Hysteresis selects DefaultHysteresis; use SetHysteresis for an exact
// zero window. An empty IOMode means OUT.
type DigitalGateConfig struct {
	Label      string
	VHigh      float64
	VLow       float64
	Hysteresis float64
	IOMode     DigitalMode
}

func NewDigitalGate(name string, source drivers.VoltageSource, cfg DigitalGateConfig) (*DigitalGate, error) {
	if source == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s needs a source able to set a voltage", name)
	}
	label := cfg.Label
	if len(label) == 0 {
		label = name
	}
	hysteresis := cfg.Hysteresis
	if hysteresis == 0 {
		hysteresis = DefaultHysteresis
	}
	if hysteresis < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s hysteresis must not be negative", name)
	}
	ioMode := cfg.IOMode
	if len(ioMode) == 0 {
		ioMode = ModeOut
	}
	if err := ioMode.Valid(); err != nil {
		return nil, errors.Wrapf(err, "gate %s", name)
	}

	return &DigitalGate{
		name:       name,
		label:      label,
		source:     source,
		vHigh:      cfg.VHigh,
		vLow:       cfg.VLow,
		hysteresis: hysteresis,
		ioMode:     ioMode,
	}, nil
}

func (g *DigitalGate) Name() string {
	return g.name
}

func (g *DigitalGate) Label() string {
	return g.label
}

func (g *DigitalGate) Source() drivers.VoltageSource {
	return g.source
}

// Read reports the gate state against the setpoints. The high window is
// checked first, so a voltage inside both windows reads high.
func (g *DigitalGate) Read() (Level, error) {
	voltage, err := g.source.Voltage()
	if err != nil {
		return LevelUndefined, errors.Wrapf(err, "reading gate %s", g.name)
	}
	if math.Abs(voltage-g.vHigh) < g.hysteresis {
		return LevelHigh, nil
	}
	if math.Abs(voltage-g.vLow) < g.hysteresis {
		return LevelLow, nil
	}
	return LevelUndefined, nil
}

// Write drives the source to v_high or v_low. A locked gate keeps its
// value and the write is silently ignored.
func (g *DigitalGate) Write(high bool) error {
	if g.lock {
		return nil
	}
	return g.forceWrite(high)
}

// forceWrite drives the output regardless of the lock. The lock flag is
// never touched, so no intermediate unlocked state is observable.
func (g *DigitalGate) forceWrite(high bool) error {
	target := g.vLow
	if high {
		target = g.vHigh
	}
	return errors.Wrapf(g.source.SetVoltage(target), "driving gate %s", g.name)
}

func (g *DigitalGate) VHigh() float64 {
	return g.vHigh
}

// SetVHigh stores the new high level. While the gate is in an output
// mode the current logical value is immediately re-driven at the new
// level, lock or not.
func (g *DigitalGate) SetVHigh(v float64) error {
	g.vHigh = v
	return g.reapply()
}

func (g *DigitalGate) VLow() float64 {
	return g.vLow
}

// SetVLow stores the new low level, re-driving the output like SetVHigh.
func (g *DigitalGate) SetVLow(v float64) error {
	g.vLow = v
	return g.reapply()
}

func (g *DigitalGate) reapply() error {
	if !g.ioMode.IsOutput() {
		return nil
	}
	level, err := g.Read()
	if err != nil {
		return err
	}
	// An undefined readback re-drives high, matching the tie policy.
	return g.forceWrite(level != LevelLow)
}

func (g *DigitalGate) Hysteresis() float64 {
	return g.hysteresis
}

func (g *DigitalGate) SetHysteresis(h float64) error {
	if h < 0 {
		return errors.Wrapf(ErrInvalidArgument, "gate %s hysteresis must not be negative", g.name)
	}
	g.hysteresis = h
	return nil
}

func (g *DigitalGate) IOMode() DigitalMode {
	return g.ioMode
}

// setIOMode records the mode; the transition itself is the wrapper's
// job.
func (g *DigitalGate) setIOMode(m DigitalMode) {
	g.ioMode = m
}

func (g *DigitalGate) Locked() bool {
	return g.lock
}

func (g *DigitalGate) SetLock(lock bool) {
	g.lock = lock
}
