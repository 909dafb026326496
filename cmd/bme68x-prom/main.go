// Prometheus exporter for a BME68x sensor: reads the sensor on an interval
// and serves the compensated values as gauges on /metrics.
package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	bme68x "github.com/toitware/toit-bme68x"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// CLI args
var (
	listenAddr   = flag.String("listen-address", ":8080", "The address to listen on for HTTP requests.")
	busName      = flag.String("bus", "", "Name of the I2C bus")
	altAddr      = flag.Bool("alt", false, "Use the alternate I2C address (0x77)")
	readInterval = flag.Duration("read-int", 30*time.Second, "time interval between sensor reads")
	heaterTemp   = flag.Int("heater-temp", 320, "gas heater target temperature (degrees Celsius, 0 disables gas)")
	heaterDur    = flag.Duration("heater-dur", 150*time.Millisecond, "gas heater soak time (0 disables gas)")
)

// metrics to expose to Prometheus
var (
	gaugeTemperature = newGauge("env_temperature", "Air Temperature (units: degrees Celsius)")
	gaugeAtmPressure = newGauge("env_atm_pressure", "Atmospheric Pressure (units: Pa)")
	gaugeHumidity    = newGauge("env_humidity", "Humidity (units: % of relative Humidity)")
	gaugeGasRes      = newGauge("env_gas_resistance", "Gas sensor resistance (units: Ohm)")
)

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"variant"},
	)
}

func init() {
	prometheus.MustRegister(gaugeTemperature)
	prometheus.MustRegister(gaugeAtmPressure)
	prometheus.MustRegister(gaugeHumidity)
	prometheus.MustRegister(gaugeGasRes)

	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())

	// logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()

	dev, err := openSensor()
	if err != nil {
		log.Fatalf("failed to open sensor: %s", err)
	}
	defer dev.PowerOff()
	log.Printf("Detected %s", dev.Variant())

	go func() {
		// Expose the registered metrics via HTTP.
		http.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{
				// Opt into OpenMetrics to support exemplars.
				EnableOpenMetrics: true,
			},
		))
		log.Panic(http.ListenAndServe(*listenAddr, nil))
	}()

	variant := dev.Variant().String()
	for {
		m, err := dev.Read()
		if err != nil {
			log.Errorf("failed to read from sensor: %s", err)
		} else {
			log.Printf("Received: %+v", m)
			gaugeTemperature.WithLabelValues(variant).Set(m.Temperature)
			gaugeAtmPressure.WithLabelValues(variant).Set(m.Pressure)
			gaugeHumidity.WithLabelValues(variant).Set(m.Humidity)
			if m.GasValid {
				gaugeGasRes.WithLabelValues(variant).Set(m.GasResistance)
			}
		}
		time.Sleep(*readInterval)
	}
}

func openSensor() (*bme68x.Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "host init")
	}

	var b i2c.Bus
	b, err := i2creg.Open(*busName)
	if err != nil {
		return nil, errors.Wrap(err, "open i2c bus")
	}

	addr := bme68x.DefaultAddress
	if *altAddr {
		addr = bme68x.AlternateAddress
	}

	opts := bme68x.DefaultOptions()
	opts.HeaterTemperature = *heaterTemp
	opts.HeaterDuration = *heaterDur

	dev, err := bme68x.New(b, addr, opts)
	if err != nil {
		return nil, errors.Wrap(err, "init bme68x")
	}
	return dev, nil
}
