package main

import (
	"flag"
	"log"
	"time"

	bme68x "github.com/toitware/toit-bme68x"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func main() {
	bus := flag.String("bus", "", "Name of the I2C bus")
	alt := flag.Bool("alt", false, "Use the alternate I2C address (0x77)")
	interval := flag.Duration("interval", 1*time.Second, "Time between readings")
	flag.Parse()

	_, err := host.Init()
	if err != nil {
		log.Fatal(err)
	}

	b, err := i2creg.Open(*bus)
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	addr := bme68x.DefaultAddress
	if *alt {
		addr = bme68x.AlternateAddress
	}

	dev, err := bme68x.New(b, addr, bme68x.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer dev.PowerOff()
	log.Printf("Detected %s", dev.Variant())

	ticker := time.NewTicker(*interval)

	for {
		m, err := dev.Read()
		if err != nil {
			log.Print(err)
		} else {
			log.Printf("Temperature: %.2f°C Pressure: %.1fPa Humidity: %.2f%%", m.Temperature, m.Pressure, m.Humidity)
			if m.GasValid {
				log.Printf("Gas resistance: %.0fΩ", m.GasResistance)
			}
		}

		<-ticker.C
	}
}
