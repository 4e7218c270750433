package qcm

import (
	"testing"

	"github.com/cjchua/qcodes-measurements/drivers"
)

func newTestDevice(t testing.TB, names ...string) (*DigitalDevice, []*drivers.MockChannel) {
	t.Helper()

	device := NewDigitalDevice("test_device")
	channels := make([]*drivers.MockChannel, 0, len(names))
	for _, name := range names {
		ch := drivers.NewMockChannel(name, drivers.KindGeneric)
		channels = append(channels, ch)
		_, err := device.AddDigitalGate(name, ch, ModeOut)
		assertNoError(t, err)
	}
	return device, channels
}

func TestDigitalDeviceDefaults(t *testing.T) {
	device := NewDigitalDevice("bare")

	assertFloats(t, device.VHigh(), DefaultVHigh)
	assertFloats(t, device.VLow(), DefaultVLow)
	if len(device.DigitalGates()) != 0 {
		t.Error("new device must own no gates")
	}
}

func TestAddDigitalGateInheritsDefaults(t *testing.T) {
	device, _ := newTestDevice(t, "g0")

	w, err := device.ChannelController("g0")
	assertNoError(t, err)
	assertFloats(t, w.VHigh(), DefaultVHigh)
	assertFloats(t, w.VLow(), DefaultVLow)
}

func TestAddDigitalGateDrivesRequestedMode(t *testing.T) {
	device := NewDigitalDevice("test_device")
	ch := drivers.NewMockChannel("ch01", drivers.KindGeneric)

	w, err := device.AddDigitalGate("enable", ch, ModeHigh)
	assertNoError(t, err)

	assertRoute(t, ch, drivers.RouteDAC)
	voltage, _ := ch.Voltage()
	assertFloats(t, voltage, DefaultVHigh)
	if !w.Locked() {
		t.Error("HIGH gate must come up locked")
	}
}

func TestAddDigitalGateDefaultModeIsOut(t *testing.T) {
	device := NewDigitalDevice("test_device")
	ch := drivers.NewMockChannel("ch01", drivers.KindGeneric)

	w, err := device.AddDigitalGate("d0", ch, "")
	assertNoError(t, err)
	if w.IOMode() != ModeOut {
		t.Errorf("got io mode %s, want %s", w.IOMode(), ModeOut)
	}
	assertRoute(t, ch, drivers.RouteDAC)
}

func TestAddDigitalGateDuplicate(t *testing.T) {
	device, _ := newTestDevice(t, "g0")

	ch := drivers.NewMockChannel("ch99", drivers.KindGeneric)
	_, err := device.AddDigitalGate("g0", ch, ModeOut)
	assertErrorIs(t, err, ErrInvalidArgument)
}

func TestAddDigitalGateWrapperSelection(t *testing.T) {
	device := NewDigitalDevice("test_device")

	mdacCh := drivers.NewMockChannel("mdac_ch", drivers.KindMDAC)
	mdacGate, err := device.AddDigitalGate("m0", mdacCh, ModeOut)
	assertNoError(t, err)
	_, err = mdacGate.Parameters().Get("filter")
	assertNoError(t, err)

	bbCh := drivers.NewMockChannel("bb_ch", drivers.KindBreakout)
	bbGate, err := device.AddDigitalGate("b0", bbCh, ModeOut)
	assertNoError(t, err)
	_, err = bbGate.Parameters().Get("filter")
	assertErrorIs(t, err, ErrNotFound)

	genericCh := drivers.NewMockChannel("gen_ch", drivers.KindGeneric)
	genericGate, err := device.AddDigitalGate("p0", genericCh, ModeOut)
	assertNoError(t, err)
	_, err = genericGate.Parameters().Get("filter")
	assertErrorIs(t, err, ErrNotFound)
}

func TestDigitalGatesRegistrationOrder(t *testing.T) {
	device, _ := newTestDevice(t, "g2", "g0", "g1")

	gates := device.DigitalGates()
	want := []string{"g2", "g0", "g1"}
	if len(gates) != len(want) {
		t.Fatalf("got %d gates, want %d", len(gates), len(want))
	}
	for i, name := range want {
		if gates[i].Name() != name {
			t.Errorf("gate %d: got %s, want %s", i, gates[i].Name(), name)
		}
	}
}

func TestChannelControllerNotFound(t *testing.T) {
	device, _ := newTestDevice(t, "g0")

	_, err := device.ChannelController("never_registered")
	assertErrorIs(t, err, ErrNotFound)
}

func TestSetVHighFansOut(t *testing.T) {
	device, channels := newTestDevice(t, "g0", "g1", "g2")

	// Drive one gate high so the fan-out re-applies its level.
	w, err := device.ChannelController("g1")
	assertNoError(t, err)
	assertNoError(t, w.SetOut(true))

	assertNoError(t, device.SetVHigh(1.2))

	assertFloats(t, device.VHigh(), 1.2)
	for _, gw := range device.DigitalGates() {
		assertFloats(t, gw.VHigh(), 1.2)
	}
	voltage, _ := channels[1].Voltage()
	assertFloats(t, voltage, 1.2)
}

func TestSetVLowFansOut(t *testing.T) {
	device, _ := newTestDevice(t, "g0", "g1")

	assertNoError(t, device.SetVLow(-0.3))

	assertFloats(t, device.VLow(), -0.3)
	for _, gw := range device.DigitalGates() {
		assertFloats(t, gw.VLow(), -0.3)
	}
}

func TestDeviceParameterBundle(t *testing.T) {
	device, _ := newTestDevice(t, "g0", "g1")

	vHigh, err := device.Parameters().Get("v_high")
	assertNoError(t, err)
	assertNoError(t, vHigh.Set(1.0))

	assertFloats(t, device.VHigh(), 1.0)
	for _, gw := range device.DigitalGates() {
		assertFloats(t, gw.VHigh(), 1.0)
	}

	value, err := vHigh.Get()
	assertNoError(t, err)
	assertFloats(t, value.(float64), 1.0)

	assertErrorIs(t, vHigh.Set("high"), ErrInvalidArgument)
}

func TestDeviceAnalogGates(t *testing.T) {
	device := NewDigitalDevice("mixed")

	ch := drivers.NewMockChannel("ch01", drivers.KindGeneric)
	w, err := device.AddGate("plunger", ch)
	assertNoError(t, err)

	voltage, err := w.Parameters().Get("voltage")
	assertNoError(t, err)
	assertNoError(t, voltage.Set(0.35))
	v, _ := ch.Voltage()
	assertFloats(t, v, 0.35)

	looked, err := device.Gate("plunger")
	assertNoError(t, err)
	if looked != w {
		t.Error("gate lookup returned a different wrapper")
	}

	_, err = device.Gate("missing")
	assertErrorIs(t, err, ErrNotFound)
}
