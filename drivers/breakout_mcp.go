package drivers

import (
	"github.com/pkg/errors"
	"github.com/racerxdl/go-mcp23017"
)

const mcpBreakoutDriverName = "mcp_breakout"

// RelayPins are the three expander pins switching one breakout channel:
// DAC connects the internal source, SMC connects the external line,
// Ground ties the line to ground.
type RelayPins struct {
	DAC    uint8
	SMC    uint8
	Ground uint8
}

// BreakoutChannelConfig binds a named breakout channel to the voltage
// source behind it and the relay pins routing it.
type BreakoutChannelConfig struct {
	Name   string
	Source VoltageSource
	Relays RelayPins
}

// McpBreakout is a breakout-box backend switching channel relays through
// an MCP23017 IO expander. Voltages come from the wrapped sources; the
// expander only routes them.
type McpBreakout struct {
	BusNo uint8
	DevNo uint8

	device   *mcp23017.Device
	channels []*mcpBreakoutChannel
	isReady  bool
}

func (bb *McpBreakout) String() string {
	return mcpBreakoutDriverName
}

func (bb *McpBreakout) IsReady() bool {
	return bb.isReady
}

func (bb *McpBreakout) Setup(configs []BreakoutChannelConfig) (err error) {
	bb.device, err = mcp23017.Open(bb.BusNo, bb.DevNo)
	if err != nil {
		return errors.Wrapf(err, "failed to open mcp23017 (bus %d dev %d)", bb.BusNo, bb.DevNo)
	}

	for _, cfg := range configs {
		if cfg.Source == nil {
			return errors.Errorf("breakout channel %s has no voltage source", cfg.Name)
		}
		for _, pin := range []uint8{cfg.Relays.DAC, cfg.Relays.SMC, cfg.Relays.Ground} {
			err = bb.device.PinMode(pin, mcp23017.OUTPUT)
			if err != nil {
				return errors.Wrapf(err, "failed to set pin %d as output", pin)
			}
		}
		ch := &mcpBreakoutChannel{
			name:   cfg.Name,
			source: cfg.Source,
			relays: cfg.Relays,
			device: bb.device,
		}
		// Start disconnected on both sides.
		err = ch.setRelays(false, false, false)
		if err != nil {
			return errors.Wrapf(err, "failed to clear relays of channel %s", cfg.Name)
		}
		bb.channels = append(bb.channels, ch)
	}

	bb.isReady = true
	return nil
}

func (bb *McpBreakout) Channel(name string) (Channel, error) {
	for _, ch := range bb.channels {
		if ch.name == name {
			return ch, nil
		}
	}
	return nil, errors.Errorf("breakout channel %s not found", name)
}

func (bb *McpBreakout) Close() error {
	bb.isReady = false
	for _, ch := range bb.channels {
		ch.setRelays(false, false, false)
	}
	if bb.device == nil {
		return nil
	}
	return bb.device.Close()
}

type mcpBreakoutChannel struct {
	name   string
	source VoltageSource
	relays RelayPins
	device *mcp23017.Device
}

func (ch *mcpBreakoutChannel) Kind() ChannelKind {
	return KindBreakout
}

func (ch *mcpBreakoutChannel) Label() string {
	return ch.name
}

func (ch *mcpBreakoutChannel) Voltage() (float64, error) {
	return ch.source.Voltage()
}

func (ch *mcpBreakoutChannel) SetVoltage(v float64) error {
	return ch.source.SetVoltage(v)
}

func (ch *mcpBreakoutChannel) Open() error {
	return ch.setRelays(false, true, false)
}

func (ch *mcpBreakoutChannel) DAC() error {
	return ch.setRelays(true, false, false)
}

func (ch *mcpBreakoutChannel) Probe() error {
	return ch.setRelays(true, true, false)
}

func (ch *mcpBreakoutChannel) Ground() error {
	return ch.setRelays(false, false, true)
}

func (ch *mcpBreakoutChannel) setRelays(dac, smc, ground bool) error {
	err := ch.device.DigitalWrite(ch.relays.DAC, mcp23017.PinLevel(dac))
	if err != nil {
		return errors.Wrapf(err, "switching dac relay of %s", ch.name)
	}
	err = ch.device.DigitalWrite(ch.relays.SMC, mcp23017.PinLevel(smc))
	if err != nil {
		return errors.Wrapf(err, "switching smc relay of %s", ch.name)
	}
	err = ch.device.DigitalWrite(ch.relays.Ground, mcp23017.PinLevel(ground))
	if err != nil {
		return errors.Wrapf(err, "switching ground relay of %s", ch.name)
	}
	return nil
}
