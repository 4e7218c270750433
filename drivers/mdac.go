package drivers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

const mdacDriverName = "mdac"

// MDAC drives a multi-channel DAC rack over a line-based text protocol.
// The port is supplied already opened by the host (typically a serial
// device file); the driver only owns the command traffic on it.
//
// Every command is answered with a single line: setters reply "OK",
// queries reply with the value, and anything starting with "ERR" is an
// instrument-side failure.
type MDAC struct {
	port        io.ReadWriter
	reader      *bufio.Reader
	numChannels int

	mu       sync.Mutex
	channels []*MDACChannel
	isReady  bool
	logger   *log.Logger
}

func NewMDAC(port io.ReadWriter, numChannels int) *MDAC {
	return &MDAC{
		port:        port,
		reader:      bufio.NewReader(port),
		numChannels: numChannels,
		logger:      log.Default(),
	}
}

func (m *MDAC) SetLogger(logger *log.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

func (m *MDAC) String() string {
	return mdacDriverName
}

func (m *MDAC) IsReady() bool {
	return m.isReady
}

func (m *MDAC) NumChannels() int {
	return m.numChannels
}

// Setup verifies the instrument answers an identification query and
// builds the channel handles.
func (m *MDAC) Setup() error {
	if m.port == nil {
		return errors.New("mdac port not set")
	}
	if m.numChannels < 1 {
		return errors.Errorf("mdac needs at least one channel, got %d", m.numChannels)
	}

	idn, err := m.ask("*IDN?")
	if err != nil {
		return errors.Wrap(err, "mdac identification failed")
	}
	m.logger.Info("mdac connected", "idn", idn, "channels", m.numChannels)

	m.channels = nil
	for n := 1; n <= m.numChannels; n++ {
		m.channels = append(m.channels, &MDACChannel{
			parent: m,
			name:   fmt.Sprintf("CH%02d", n),
		})
	}
	m.isReady = true
	return nil
}

// Channel returns the handle for a 1-based channel number.
func (m *MDAC) Channel(n int) (FilterChannel, error) {
	if !m.isReady {
		return nil, errors.New("mdac not set up")
	}
	if n < 1 || n > len(m.channels) {
		return nil, errors.Errorf("mdac channel %d out of range 1..%d", n, len(m.channels))
	}
	return m.channels[n-1], nil
}

// Close grounds every channel before releasing the port.
func (m *MDAC) Close() (err error) {
	if !m.isReady {
		return nil
	}
	for _, ch := range m.channels {
		groundErr := ch.Ground()
		if groundErr != nil {
			err = errors.Wrapf(groundErr, "grounding %s on close", ch.name)
		}
	}
	m.isReady = false
	if closer, ok := m.port.(io.Closer); ok {
		closeErr := closer.Close()
		if err == nil {
			err = closeErr
		}
	}
	return err
}

// ask sends one command line and returns the reply line. The port is
// shared by all channels, so traffic is serialized here.
func (m *MDAC) ask(cmd string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := fmt.Fprintf(m.port, "%s\n", cmd)
	if err != nil {
		return "", errors.Wrapf(err, "writing %q", cmd)
	}
	reply, err := m.reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrapf(err, "reading reply to %q", cmd)
	}
	reply = strings.TrimSpace(reply)
	m.logger.Debug("mdac exchange", "cmd", cmd, "reply", reply)
	if strings.HasPrefix(reply, "ERR") {
		return "", errors.Errorf("instrument error for %q: %s", cmd, reply)
	}
	return reply, nil
}

func (m *MDAC) send(cmd string) error {
	reply, err := m.ask(cmd)
	if err != nil {
		return err
	}
	if reply != "OK" {
		return errors.Errorf("unexpected reply to %q: %s", cmd, reply)
	}
	return nil
}

// MDACChannel is one output channel of the rack. Each channel carries
// its own relay set and output filter next to the DAC proper.
type MDACChannel struct {
	parent *MDAC
	name   string
}

func (ch *MDACChannel) Kind() ChannelKind {
	return KindMDAC
}

func (ch *MDACChannel) Label() string {
	return ch.name
}

func (ch *MDACChannel) Voltage() (float64, error) {
	reply, err := ch.parent.ask(ch.name + ":VOLT?")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(reply, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad voltage reply %q from %s", reply, ch.name)
	}
	return v, nil
}

func (ch *MDACChannel) SetVoltage(v float64) error {
	return ch.parent.send(fmt.Sprintf("%s:VOLT %.6f", ch.name, v))
}

func (ch *MDACChannel) Open() error {
	return ch.parent.send(ch.name + ":RELAY SMC")
}

func (ch *MDACChannel) DAC() error {
	return ch.parent.send(ch.name + ":RELAY DAC")
}

func (ch *MDACChannel) Probe() error {
	return ch.parent.send(ch.name + ":RELAY BOTH")
}

func (ch *MDACChannel) Ground() error {
	return ch.parent.send(ch.name + ":RELAY GND")
}

func (ch *MDACChannel) Filter() (int, error) {
	reply, err := ch.parent.ask(ch.name + ":FILTER?")
	if err != nil {
		return 0, err
	}
	level, err := strconv.Atoi(reply)
	if err != nil {
		return 0, errors.Wrapf(err, "bad filter reply %q from %s", reply, ch.name)
	}
	return level, nil
}

func (ch *MDACChannel) SetFilter(level int) error {
	if level < 0 {
		return errors.Errorf("filter level %d out of range", level)
	}
	return ch.parent.send(fmt.Sprintf("%s:FILTER %d", ch.name, level))
}
