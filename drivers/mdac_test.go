package drivers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort scripts instrument replies and records the command traffic.
type fakePort struct {
	replies  bytes.Buffer
	commands bytes.Buffer
	closed   bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	return p.replies.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	return p.commands.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) reply(lines ...string) {
	for _, line := range lines {
		p.replies.WriteString(line + "\n")
	}
}

func (p *fakePort) sentCommands() []string {
	return strings.Split(strings.TrimSpace(p.commands.String()), "\n")
}

func setupMDAC(t *testing.T, port *fakePort, channels int) *MDAC {
	t.Helper()

	port.reply("MDAC,16ch,rev1")
	m := NewMDAC(port, channels)
	require.NoError(t, m.Setup())
	require.True(t, m.IsReady())
	return m
}

func TestMDACSetup(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 2)

	assert.Equal(t, 2, m.NumChannels())
	assert.Equal(t, []string{"*IDN?"}, port.sentCommands())
}

func TestMDACSetupNoPort(t *testing.T) {
	m := NewMDAC(nil, 2)
	assert.Error(t, m.Setup())
}

func TestMDACSetupNoChannels(t *testing.T) {
	m := NewMDAC(&fakePort{}, 0)
	assert.Error(t, m.Setup())
}

func TestMDACChannelRange(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 2)

	_, err := m.Channel(0)
	assert.Error(t, err)
	_, err = m.Channel(3)
	assert.Error(t, err)

	ch, err := m.Channel(1)
	require.NoError(t, err)
	assert.Equal(t, "CH01", ch.Label())
	assert.Equal(t, KindMDAC, ch.Kind())
}

func TestMDACChannelNotReady(t *testing.T) {
	m := NewMDAC(&fakePort{}, 2)
	_, err := m.Channel(1)
	assert.Error(t, err)
}

func TestMDACVoltage(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 2)
	ch, err := m.Channel(1)
	require.NoError(t, err)

	port.reply("OK", "1.2345")

	require.NoError(t, ch.SetVoltage(1.2345))
	v, err := ch.Voltage()
	require.NoError(t, err)
	assert.Equal(t, 1.2345, v)

	assert.Equal(t, []string{
		"*IDN?",
		"CH01:VOLT 1.234500",
		"CH01:VOLT?",
	}, port.sentCommands())
}

func TestMDACRelays(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 1)
	ch, err := m.Channel(1)
	require.NoError(t, err)

	port.reply("OK", "OK", "OK", "OK")

	require.NoError(t, ch.Open())
	require.NoError(t, ch.DAC())
	require.NoError(t, ch.Probe())
	require.NoError(t, ch.Ground())

	assert.Equal(t, []string{
		"*IDN?",
		"CH01:RELAY SMC",
		"CH01:RELAY DAC",
		"CH01:RELAY BOTH",
		"CH01:RELAY GND",
	}, port.sentCommands())
}

func TestMDACFilter(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 1)
	ch, err := m.Channel(1)
	require.NoError(t, err)

	port.reply("OK", "2")

	require.NoError(t, ch.SetFilter(2))
	level, err := ch.Filter()
	require.NoError(t, err)
	assert.Equal(t, 2, level)

	assert.Error(t, ch.SetFilter(-1))
}

func TestMDACInstrumentError(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 1)
	ch, err := m.Channel(1)
	require.NoError(t, err)

	port.reply("ERR relay fault")
	err = ch.Ground()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay fault")
}

func TestMDACBadVoltageReply(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 1)
	ch, err := m.Channel(1)
	require.NoError(t, err)

	port.reply("garbage")
	_, err = ch.Voltage()
	assert.Error(t, err)
}

func TestMDACClose(t *testing.T) {
	port := &fakePort{}
	m := setupMDAC(t, port, 2)

	port.reply("OK", "OK")
	require.NoError(t, m.Close())

	assert.False(t, m.IsReady())
	assert.True(t, port.closed)
	assert.Equal(t, []string{
		"*IDN?",
		"CH01:RELAY GND",
		"CH02:RELAY GND",
	}, port.sentCommands())
}
