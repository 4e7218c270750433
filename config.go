package qcm

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/cjchua/qcodes-measurements/drivers"
)

// GateConfig declares one gate of a device configuration. Channel names
// are resolved against the channel map given to BuildDevice. Analog
// gates ignore the digital fields.
type GateConfig struct {
	Name       string   `json:"name"`
	Channel    string   `json:"channel"`
	Analog     bool     `json:"analog,omitempty"`
	IOMode     string   `json:"io_mode,omitempty"`
	VHigh      *float64 `json:"v_high,omitempty"`
	VLow       *float64 `json:"v_low,omitempty"`
	Hysteresis *float64 `json:"hysteresis,omitempty"`
}

// Config is the declarative device setup read from a JSON file.
type Config struct {
	Name  string       `json:"name"`
	VHigh *float64     `json:"v_high,omitempty"`
	VLow  *float64     `json:"v_low,omitempty"`
	Gates []GateConfig `json:"gates"`
}

func LoadConfig(reader io.Reader) (*Config, error) {
	cfg := &Config{}
	err := json.NewDecoder(reader).Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse device config")
	}
	if len(cfg.Name) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "device config without a name")
	}
	return cfg, nil
}

// BuildDevice sets a digital device up from the config, binding each
// declared gate to its named channel. Per-gate levels override the
// device defaults after registration, so the gate is re-driven at its
// own level.
func (cfg *Config) BuildDevice(channels map[string]drivers.Channel) (*DigitalDevice, error) {
	device := NewDigitalDevice(cfg.Name)
	if cfg.VHigh != nil {
		device.vHigh = *cfg.VHigh
	}
	if cfg.VLow != nil {
		device.vLow = *cfg.VLow
	}

	for _, gc := range cfg.Gates {
		channel, found := channels[gc.Channel]
		if !found {
			return nil, errors.Wrapf(ErrNotFound, "channel %s for gate %s", gc.Channel, gc.Name)
		}

		if gc.Analog {
			_, err := device.AddGate(gc.Name, channel)
			if err != nil {
				return nil, err
			}
			continue
		}

		mode := ModeOut
		if len(gc.IOMode) > 0 {
			var err error
			mode, err = ParseDigitalMode(gc.IOMode)
			if err != nil {
				return nil, errors.Wrapf(err, "gate %s", gc.Name)
			}
		}
		w, err := device.AddDigitalGate(gc.Name, channel, mode)
		if err != nil {
			return nil, err
		}
		if gc.Hysteresis != nil {
			if err := w.Gate().SetHysteresis(*gc.Hysteresis); err != nil {
				return nil, err
			}
		}
		if gc.VHigh != nil {
			if err := w.SetVHigh(*gc.VHigh); err != nil {
				return nil, errors.Wrapf(err, "gate %s", gc.Name)
			}
		}
		if gc.VLow != nil {
			if err := w.SetVLow(*gc.VLow); err != nil {
				return nil, errors.Wrapf(err, "gate %s", gc.Name)
			}
		}
	}

	return device, nil
}
