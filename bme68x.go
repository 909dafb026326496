// Package bme68x drives the Bosch BME680 and BME688 environmental sensors
// over I2C, measuring temperature, pressure, humidity and gas resistance.
package bme68x

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

var (
	ErrAlreadyPoweredOn = errors.New("bme68x: device already powered on")
	ErrUnexpectedChipID = errors.New("bme68x: unexpected chip id")
	ErrTimeout          = errors.New("bme68x: timed out waiting for measurement")
	ErrGasNotValid      = errors.New("bme68x: gas reading not valid")
	ErrHeaterNotStable  = errors.New("bme68x: gas heater not stabilized")
	ErrGasDisabled      = errors.New("bme68x: gas measurement not enabled")
)

// Opts holds the configuration applied during PowerOn.
type Opts struct {
	Temperature Oversampling
	Pressure    Oversampling
	Humidity    Oversampling
	Filter      FilterSize
	// HeaterTemperature is the gas plate set-point in degrees Celsius,
	// 0-400. Zero disables gas measurement.
	HeaterTemperature int
	// HeaterDuration is the heater soak time before the gas conversion,
	// up to 4032ms. Zero disables gas measurement.
	HeaterDuration time.Duration
}

// DefaultOptions is the recommended general-purpose profile, gas enabled.
func DefaultOptions() *Opts {
	return &Opts{
		Temperature:       Oversampling2x,
		Pressure:          Oversampling16x,
		Humidity:          Oversampling1x,
		Filter:            Filter3,
		HeaterTemperature: 320,
		HeaterDuration:    150 * time.Millisecond,
	}
}

// WeatherMonitoring is the low-power profile: minimal oversampling, no
// filtering, gas disabled.
func WeatherMonitoring() *Opts {
	return &Opts{
		Temperature: Oversampling1x,
		Pressure:    Oversampling1x,
		Humidity:    Oversampling1x,
		Filter:      Filter0,
	}
}

// New binds the sensor at addr on the given bus and powers it on with opts.
// Pass DefaultAddress or AlternateAddress depending on how the SDO pin is
// strapped.
func New(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	d := &Dev{
		d:     &i2c.Dev{Bus: b, Addr: addr},
		name:  "bme68x",
		sleep: time.Sleep,
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := d.PowerOn(opts); err != nil {
		return nil, err
	}
	return d, nil
}

type Dev struct {
	d     conn.Conn
	name  string
	sleep func(time.Duration)

	on         bool
	variant    Variant
	cal        calibration
	gasEnabled bool
	soak       time.Duration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.name, d.d)
}

// Variant reports the detected hardware variant. VariantUnknown before the
// first successful PowerOn.
func (d *Dev) Variant() Variant {
	return d.variant
}

// PowerOn resets the device, detects the hardware variant, loads the
// calibration coefficients and applies opts. Calling it while the device is
// already on is an error; PowerOff first.
func (d *Dev) PowerOn(opts *Opts) error {
	if d.on {
		return ErrAlreadyPoweredOn
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	id, err := d.readUint8(regChipID)
	if err != nil {
		return err
	}
	if id != chipID {
		return fmt.Errorf("%w: %#02x", ErrUnexpectedChipID, id)
	}

	if err := d.writeReg(regSoftReset, softResetCmd); err != nil {
		return err
	}
	d.sleep(10 * time.Millisecond)

	// Unknown variant ids fall back to the BME680 behavior.
	vid, err := d.readUint8(regVariantID)
	if err != nil {
		return err
	}
	if vid == variantIDBME688 {
		d.variant = VariantBME688
	} else {
		d.variant = VariantBME680
	}

	if err := d.readCalibration(); err != nil {
		return err
	}

	if err := d.SetTemperatureOversampling(opts.Temperature); err != nil {
		return err
	}
	if err := d.SetPressureOversampling(opts.Pressure); err != nil {
		return err
	}
	if err := d.SetHumidityOversampling(opts.Humidity); err != nil {
		return err
	}
	if err := d.SetFilterSize(opts.Filter); err != nil {
		return err
	}
	if err := d.SetGasHeater(opts.HeaterTemperature, opts.HeaterDuration); err != nil {
		return err
	}

	d.on = true
	return nil
}

// PowerOff disables the gas heater and puts the device back in sleep mode.
// Safe to call when already off.
func (d *Dev) PowerOff() error {
	if !d.on {
		return nil
	}
	if err := d.DisableGasHeater(); err != nil {
		return err
	}
	if err := d.writeBits(regCtrlMeas, maskMode, modeSleep); err != nil {
		return err
	}
	d.on = false
	d.variant = VariantUnknown
	return nil
}

// TemperatureOversampling reads the current factor back from the device.
func (d *Dev) TemperatureOversampling() (Oversampling, error) {
	code, err := d.readBits(regCtrlMeas, maskOsrsT)
	if err != nil {
		return OversamplingNone, err
	}
	return decodeOversampling(code), nil
}

func (d *Dev) SetTemperatureOversampling(os Oversampling) error {
	code, err := encodeOversampling(os)
	if err != nil {
		return err
	}
	return d.writeBits(regCtrlMeas, maskOsrsT, code)
}

func (d *Dev) PressureOversampling() (Oversampling, error) {
	code, err := d.readBits(regCtrlMeas, maskOsrsP)
	if err != nil {
		return OversamplingNone, err
	}
	return decodeOversampling(code), nil
}

func (d *Dev) SetPressureOversampling(os Oversampling) error {
	code, err := encodeOversampling(os)
	if err != nil {
		return err
	}
	return d.writeBits(regCtrlMeas, maskOsrsP, code)
}

func (d *Dev) HumidityOversampling() (Oversampling, error) {
	code, err := d.readBits(regCtrlHum, maskOsrsH)
	if err != nil {
		return OversamplingNone, err
	}
	return decodeOversampling(code), nil
}

func (d *Dev) SetHumidityOversampling(os Oversampling) error {
	code, err := encodeOversampling(os)
	if err != nil {
		return err
	}
	return d.writeBits(regCtrlHum, maskOsrsH, code)
}

func (d *Dev) FilterSize() (FilterSize, error) {
	code, err := d.readBits(regConfig, maskFilter)
	if err != nil {
		return Filter0, err
	}
	return decodeFilterSize(code), nil
}

func (d *Dev) SetFilterSize(fs FilterSize) error {
	code, err := encodeFilterSize(fs)
	if err != nil {
		return err
	}
	return d.writeBits(regConfig, maskFilter, code)
}

// SetGasHeater programs heater set-point slot 0 with a target temperature
// and soak duration, then enables gas measurement. A zero in either
// parameter disables the heater and gas conversion entirely.
func (d *Dev) SetGasHeater(targetTemp int, duration time.Duration) error {
	ms := int(duration / time.Millisecond)
	if targetTemp < 0 || targetTemp > maxHeaterTemp {
		return fmt.Errorf("bme68x: heater temperature out of range: %d", targetTemp)
	}
	if ms < 0 || ms > maxHeaterDuration {
		return fmt.Errorf("bme68x: heater duration out of range: %v", duration)
	}
	if targetTemp == 0 || ms == 0 {
		return d.DisableGasHeater()
	}

	// Only heater set-point slot 0 is used; make sure nb_conv points at it.
	if err := d.writeBits(regCtrlGas1, maskNbConv, 0); err != nil {
		return err
	}
	res := d.cal.heaterResistance(heaterAmbientTemp, targetTemp)
	if err := d.writeReg(regResHeat0, res); err != nil {
		return err
	}
	if err := d.writeReg(regGasWait0, encodeGasWait(ms)); err != nil {
		return err
	}
	if err := d.writeBits(regCtrlGas0, maskHeatOff, 0); err != nil {
		return err
	}
	if err := d.writeBits(regCtrlGas1, d.runGasMask(), 1); err != nil {
		return err
	}
	d.gasEnabled = true
	d.soak = time.Duration(ms) * time.Millisecond
	return nil
}

// DisableGasHeater turns the heater off and disables the gas conversion.
func (d *Dev) DisableGasHeater() error {
	if err := d.writeBits(regCtrlGas1, d.runGasMask(), 0); err != nil {
		return err
	}
	if err := d.writeBits(regCtrlGas0, maskHeatOff, 1); err != nil {
		return err
	}
	d.gasEnabled = false
	d.soak = 0
	return nil
}

// The run_gas bit moved between hardware variants.
func (d *Dev) runGasMask() uint8 {
	if d.variant == VariantBME688 {
		return maskRunGas688
	}
	return maskRunGas680
}

// Sense triggers a measurement and reports temperature, pressure and
// humidity. Gas is skipped to keep the conversion short; use Read for the
// full set.
func (d *Dev) Sense(e *physic.Env) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return errors.New("bme68x: already sensing continuously")
	}
	return d.sense(e)
}

// SenseContinuous returns measurements on a continuous basis.
//
// The application must call Halt() to stop the sensing when done to stop the
// sensor and close the channel.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		// Don't send the stop command to the device.
		close(d.stop)
		d.stop = nil
		d.wg.Wait()
	}

	sensing := make(chan physic.Env)
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(sensing)
		d.sensingContinuous(interval, sensing, d.stop)
	}()
	return sensing, nil
}

// Precision reports the resolution of the compensated values.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Pressure = physic.Pascal
	e.Humidity = physic.MilliRH
}

// Halt stops continuous sensing as initiated by SenseContinuous. It does not
// power the device off; use PowerOff for that.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	d.wg.Wait()
	return nil
}

func (d *Dev) sense(e *physic.Env) error {
	if err := d.triggerAndWait(true); err != nil {
		return err
	}
	tRaw, err := d.readUint20(regTempMSB)
	if err != nil {
		return err
	}
	pRaw, err := d.readUint20(regPressMSB)
	if err != nil {
		return err
	}
	hRaw, err := d.readUint16BE(regHumMSB)
	if err != nil {
		return err
	}

	temp, tFine := d.cal.compensateTemperature(tRaw)
	e.Temperature = physic.Temperature(temp*1000)*physic.MilliCelsius + physic.ZeroCelsius
	press := d.cal.compensatePressure(pRaw, tFine)
	e.Pressure = physic.Pressure(press*1000) * physic.MilliPascal
	hum := d.cal.compensateHumidity(int32(hRaw), temp)
	e.Humidity = physic.RelativeHumidity(hum*1000) * physic.MilliRH
	return nil
}

func (d *Dev) sensingContinuous(interval time.Duration, sensing chan<- physic.Env, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()

	var err error
	for {
		// Do one initial sensing right away.
		e := physic.Env{}
		d.mu.Lock()
		err = d.sense(&e)
		d.mu.Unlock()
		if err != nil {
			return
		}
		select {
		case sensing <- e:
		case <-stop:
			return
		}
		select {
		case <-stop:
			return
		case <-t.C:
		}
	}
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("%s: %v", d.name, err)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
