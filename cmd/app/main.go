package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	charmlog "github.com/charmbracelet/log"

	qcm "github.com/cjchua/qcodes-measurements"
	"github.com/cjchua/qcodes-measurements/drivers"
)

var (
	Version string
	Build   string

	configPath  = flag.String("config", "config.json", "path of the device configuration file")
	portPath    = flag.String("port", "/dev/ttyUSB0", "serial device of the MDAC rack")
	numChannels = flag.Int("channels", 16, "number of MDAC channels")
	debug       = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()
	log.Printf("qcodes-measurements %s started\n", Version)

	logger := charmlog.Default()
	if *debug {
		logger.SetLevel(charmlog.DebugLevel)
	}

	configFile, err := os.Open(*configPath)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	cfg, err := qcm.LoadConfig(configFile)
	configFile.Close()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	port, err := os.OpenFile(*portPath, os.O_RDWR, 0)
	if err != nil {
		log.Fatalf("failed to open MDAC port %s: %v", *portPath, err)
	}

	mdac := drivers.NewMDAC(port, *numChannels)
	mdac.SetLogger(logger)
	if err := mdac.Setup(); err != nil {
		log.Fatalf("failed to set MDAC up: %v", err)
	}
	defer mdac.Close()

	channels := make(map[string]drivers.Channel)
	for n := 1; n <= mdac.NumChannels(); n++ {
		ch, err := mdac.Channel(n)
		if err != nil {
			log.Fatalf("failed to get MDAC channel %d: %v", n, err)
		}
		channels[fmt.Sprintf("ch%02d", n)] = ch
	}

	device, err := cfg.BuildDevice(channels)
	if err != nil {
		log.Fatalf("failed to build device: %v", err)
	}
	device.SetLogger(logger)

	device.PrintStatus(os.Stdout)
}
