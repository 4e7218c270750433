package qcm

import (
	"fmt"
	"io"
)

// PrintStatus dumps the current state of every registered gate.
func (d *DigitalDevice) PrintStatus(writer io.Writer) {
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "=== device %s ===\n", d.name)
	fmt.Fprintf(writer, "| v_high: %v  v_low: %v\n", d.vHigh, d.vLow)
	for _, w := range d.digitalGates {
		fmt.Fprintln(writer, "________")
		fmt.Fprintf(writer, "| gate: %s (channel %s)\n", w.Name(), w.Channel().Label())
		fmt.Fprintf(writer, "| io_mode: %s  lock: %v\n", w.IOMode(), w.Locked())
		fmt.Fprintf(writer, "| v_high: %v  v_low: %v  hysteresis: %v\n",
			w.VHigh(), w.VLow(), w.Gate().Hysteresis())
		level, err := w.Out()
		if err != nil {
			fmt.Fprintf(writer, "| state: read failed: %v\n", err)
		} else {
			fmt.Fprintf(writer, "| state: %s\n", level)
		}
		fmt.Fprintln(writer, "--------")
	}
	for _, w := range d.gates {
		fmt.Fprintln(writer, "________")
		fmt.Fprintf(writer, "| analog gate: %s (channel %s)\n", w.Name(), w.Channel().Label())
		voltage, err := w.channel.Voltage()
		if err != nil {
			fmt.Fprintf(writer, "| voltage: read failed: %v\n", err)
		} else {
			fmt.Fprintf(writer, "| voltage: %v\n", voltage)
		}
		fmt.Fprintln(writer, "--------")
	}
	fmt.Fprintln(writer, "-----------------------------")
	fmt.Fprintln(writer)
}
