package main

import (
	"log"
	"os"

	qcm "github.com/cjchua/qcodes-measurements"
	"github.com/cjchua/qcodes-measurements/drivers"
)

var (
	Version string
	Build   string
)

func main() {
	log.Println("qcodes-measurements mock device started")
	log.Println("mock instance for testing purposes, no hardware required")

	ch1 := drivers.NewMockChannel("ch01", drivers.KindMDAC)
	ch2 := drivers.NewMockChannel("ch02", drivers.KindBreakout)
	ch3 := drivers.NewMockChannel("ch03", drivers.KindGeneric)
	ch1.MonitorStateChanges(os.Stdout)
	ch2.MonitorStateChanges(os.Stdout)
	ch3.MonitorStateChanges(os.Stdout)

	device := qcm.NewDigitalDevice("mock_device")

	log.Println("will add digital gates...")
	if _, err := device.AddDigitalGate("reset", ch1, qcm.ModeOut); err != nil {
		panic(err)
	}
	if _, err := device.AddDigitalGate("enable", ch2, qcm.ModeHigh); err != nil {
		panic(err)
	}
	if _, err := device.AddDigitalGate("sense", ch3, qcm.ModeIn); err != nil {
		panic(err)
	}

	log.Println("gates OK! will exercise them:")

	reset, err := device.ChannelController("reset")
	if err != nil {
		panic(err)
	}
	if err := reset.SetOut(true); err != nil {
		panic(err)
	}
	if err := reset.SetOut(false); err != nil {
		panic(err)
	}

	log.Println("lowering device v_high to 1.2")
	if err := device.SetVHigh(1.2); err != nil {
		panic(err)
	}

	log.Println("grounding the sense line")
	sense, err := device.ChannelController("sense")
	if err != nil {
		panic(err)
	}
	if err := sense.SetIOMode(qcm.ModeGnd); err != nil {
		panic(err)
	}

	device.PrintStatus(os.Stdout)
}
