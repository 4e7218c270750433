package drivers

import (
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

const gpioBreakoutDriverName = "gpio_breakout"

// GpioBreakout is a breakout-box backend switching channel relays
// directly from Raspberry Pi GPIO pins.
type GpioBreakout struct {
	InvertRelays bool

	channels []*gpioBreakoutChannel
	isReady  bool
}

func (gb *GpioBreakout) String() string {
	return gpioBreakoutDriverName
}

func (gb *GpioBreakout) IsReady() bool {
	return gb.isReady
}

func (gb *GpioBreakout) Setup(configs []BreakoutChannelConfig) error {
	err := rpio.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open gpio")
	}

	for _, cfg := range configs {
		if cfg.Source == nil {
			return errors.Errorf("breakout channel %s has no voltage source", cfg.Name)
		}
		for _, pin := range []uint8{cfg.Relays.DAC, cfg.Relays.SMC, cfg.Relays.Ground} {
			rpio.Pin(pin).Output()
		}
		ch := &gpioBreakoutChannel{
			name:   cfg.Name,
			source: cfg.Source,
			relays: cfg.Relays,
			invert: gb.InvertRelays,
		}
		ch.setRelays(false, false, false)
		gb.channels = append(gb.channels, ch)
	}

	gb.isReady = true
	return nil
}

func (gb *GpioBreakout) Channel(name string) (Channel, error) {
	for _, ch := range gb.channels {
		if ch.name == name {
			return ch, nil
		}
	}
	return nil, errors.Errorf("breakout channel %s not found", name)
}

func (gb *GpioBreakout) Close() error {
	gb.isReady = false
	for _, ch := range gb.channels {
		ch.setRelays(false, false, false)
	}
	return rpio.Close()
}

type gpioBreakoutChannel struct {
	name   string
	source VoltageSource
	relays RelayPins
	invert bool
}

func (ch *gpioBreakoutChannel) Kind() ChannelKind {
	return KindBreakout
}

func (ch *gpioBreakoutChannel) Label() string {
	return ch.name
}

func (ch *gpioBreakoutChannel) Voltage() (float64, error) {
	return ch.source.Voltage()
}

func (ch *gpioBreakoutChannel) SetVoltage(v float64) error {
	return ch.source.SetVoltage(v)
}

func (ch *gpioBreakoutChannel) Open() error {
	ch.setRelays(false, true, false)
	return nil
}

func (ch *gpioBreakoutChannel) DAC() error {
	ch.setRelays(true, false, false)
	return nil
}

func (ch *gpioBreakoutChannel) Probe() error {
	ch.setRelays(true, true, false)
	return nil
}

func (ch *gpioBreakoutChannel) Ground() error {
	ch.setRelays(false, false, true)
	return nil
}

func (ch *gpioBreakoutChannel) setRelays(dac, smc, ground bool) {
	ch.setPin(ch.relays.DAC, dac)
	ch.setPin(ch.relays.SMC, smc)
	ch.setPin(ch.relays.Ground, ground)
}

func (ch *gpioBreakoutChannel) setPin(pin uint8, state bool) {
	if ch.invert {
		state = !state
	}
	if state {
		rpio.Pin(pin).High()
	} else {
		rpio.Pin(pin).Low()
	}
}
