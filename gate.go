package qcm

import (
	"github.com/pkg/errors"

	"github.com/cjchua/qcodes-measurements/drivers"
)

// Gate is an analog control line bound to a voltage-source channel.
// DigitalGate builds its two-level behavior on the same binding.
type Gate struct {
	name   string
	label  string
	source drivers.VoltageSource
}

func NewGate(name string, source drivers.VoltageSource) (*Gate, error) {
	if source == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "gate %s needs a source able to set a voltage", name)
	}
	return &Gate{name: name, label: name, source: source}, nil
}

func (g *Gate) Name() string {
	return g.name
}

func (g *Gate) Label() string {
	return g.label
}

func (g *Gate) SetLabel(label string) {
	g.label = label
}

func (g *Gate) Source() drivers.VoltageSource {
	return g.source
}

func (g *Gate) Voltage() (float64, error) {
	return g.source.Voltage()
}

func (g *Gate) SetVoltage(v float64) error {
	return g.source.SetVoltage(v)
}
