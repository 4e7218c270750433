package qcm

import (
	"strings"

	"github.com/pkg/errors"
)

// DigitalMode selects how a digital gate's channel is wired up.
//
// Note: HIGH/LOW lock the gate value, so later writes are ignored until
// the lock is cleared.
type DigitalMode string

const (
	ModeIn       DigitalMode = "IN"        // connect SMC, disconnect DAC
	ModeOut      DigitalMode = "OUT"       // disconnect SMC, connect DAC
	ModeProbeOut DigitalMode = "PROBE_OUT" // connect SMC, connect DAC
	ModeHigh     DigitalMode = "HIGH"
	ModeLow      DigitalMode = "LOW"
	ModeGnd      DigitalMode = "GND"
)

// OutputModes are the modes in which the gate drives its line.
var OutputModes = []DigitalMode{ModeOut, ModeProbeOut, ModeHigh, ModeLow}

// InputModes are the modes in which the line is externally driven or
// disconnected.
var InputModes = []DigitalMode{ModeIn, ModeGnd}

// DigitalModes returns all six modes.
func DigitalModes() []DigitalMode {
	return []DigitalMode{ModeIn, ModeOut, ModeProbeOut, ModeHigh, ModeLow, ModeGnd}
}

func (m DigitalMode) String() string {
	return string(m)
}

func (m DigitalMode) IsOutput() bool {
	for _, om := range OutputModes {
		if m == om {
			return true
		}
	}
	return false
}

func (m DigitalMode) IsInput() bool {
	for _, im := range InputModes {
		if m == im {
			return true
		}
	}
	return false
}

// Valid rejects anything outside the closed mode set.
func (m DigitalMode) Valid() error {
	if m.IsOutput() || m.IsInput() {
		return nil
	}
	return errors.Wrapf(ErrInvalidArgument, "unknown io mode %q", string(m))
}

// ParseDigitalMode converts a config string to a mode, ignoring case.
func ParseDigitalMode(s string) (DigitalMode, error) {
	m := DigitalMode(strings.ToUpper(strings.TrimSpace(s)))
	if err := m.Valid(); err != nil {
		return "", err
	}
	return m, nil
}

// Level is the tri-state readback of a digital gate.
type Level int

const (
	LevelLow       Level = 0
	LevelHigh      Level = 1
	LevelUndefined Level = -1
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelHigh:
		return "high"
	default:
		return "undefined"
	}
}
