package drivers

import (
	"fmt"
	"io"
)

// Route names the relay configuration a channel is switched to.
type Route string

const (
	RouteOpen   Route = "open"
	RouteDAC    Route = "dac"
	RouteProbe  Route = "probe"
	RouteGround Route = "ground"
)

// MockChannel is an in-memory channel for tests and dry runs. It tracks
// voltage, routing and filter state, can mirror state changes to a
// writer, and can be forced to fail its routing operations.
type MockChannel struct {
	name    string
	kind    ChannelKind
	voltage float64
	route   Route
	filter  int

	failWith         error
	writeTo          io.Writer
	writeStateChange bool
}

func NewMockChannel(name string, kind ChannelKind) *MockChannel {
	return &MockChannel{name: name, kind: kind, route: RouteOpen}
}

func (mc *MockChannel) Kind() ChannelKind {
	return mc.kind
}

func (mc *MockChannel) Label() string {
	return mc.name
}

func (mc *MockChannel) Voltage() (float64, error) {
	return mc.voltage, nil
}

func (mc *MockChannel) SetVoltage(v float64) error {
	if mc.writeStateChange && v != mc.voltage {
		fmt.Fprintf(mc.writeTo, "[%s] voltage changed to %v\n", mc.name, v)
	}
	mc.voltage = v
	return nil
}

func (mc *MockChannel) Open() error {
	return mc.switchTo(RouteOpen)
}

func (mc *MockChannel) DAC() error {
	return mc.switchTo(RouteDAC)
}

func (mc *MockChannel) Probe() error {
	return mc.switchTo(RouteProbe)
}

func (mc *MockChannel) Ground() error {
	return mc.switchTo(RouteGround)
}

func (mc *MockChannel) Filter() (int, error) {
	return mc.filter, nil
}

func (mc *MockChannel) SetFilter(level int) error {
	if mc.failWith != nil {
		return mc.failWith
	}
	mc.filter = level
	return nil
}

func (mc *MockChannel) switchTo(r Route) error {
	if mc.failWith != nil {
		return mc.failWith
	}
	if mc.writeStateChange && r != mc.route {
		fmt.Fprintf(mc.writeTo, "[%s] route changed to %s\n", mc.name, r)
	}
	mc.route = r
	return nil
}

// Route reports the relay configuration the channel was last switched to.
func (mc *MockChannel) Route() Route {
	return mc.route
}

// FailWith makes routing and filter operations return err until cleared
// with FailWith(nil).
func (mc *MockChannel) FailWith(err error) {
	mc.failWith = err
}

// MonitorStateChanges mirrors voltage and route changes to writer.
func (mc *MockChannel) MonitorStateChanges(writer io.Writer) {
	mc.writeTo = writer
	mc.writeStateChange = true
}
