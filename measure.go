package bme68x

import (
	"time"
)

// Measurement is one compensated reading. GasResistance is only meaningful
// when GasValid is set; it stays false whenever gas measurement is disabled.
type Measurement struct {
	Temperature   float64 // degrees Celsius
	Pressure      float64 // Pascal
	Humidity      float64 // %RH
	GasResistance float64 // Ohm
	GasValid      bool
}

// Read triggers a forced conversion and returns all compensated quantities.
func (d *Dev) Read() (Measurement, error) {
	m := Measurement{}
	if err := d.triggerAndWait(!d.gasEnabled); err != nil {
		return m, err
	}

	tRaw, err := d.readUint20(regTempMSB)
	if err != nil {
		return m, err
	}
	pRaw, err := d.readUint20(regPressMSB)
	if err != nil {
		return m, err
	}
	hRaw, err := d.readUint16BE(regHumMSB)
	if err != nil {
		return m, err
	}

	var tFine float64
	m.Temperature, tFine = d.cal.compensateTemperature(tRaw)
	m.Pressure = d.cal.compensatePressure(pRaw, tFine)
	m.Humidity = d.cal.compensateHumidity(int32(hRaw), m.Temperature)

	if d.gasEnabled {
		gas, err := d.readGasResistance()
		if err != nil {
			return m, err
		}
		m.GasResistance = gas
		m.GasValid = true
	}
	return m, nil
}

// ReadTemperature triggers a conversion and returns degrees Celsius.
func (d *Dev) ReadTemperature() (float64, error) {
	raw, err := d.ReadTemperatureRaw()
	if err != nil {
		return 0, err
	}
	temp, _ := d.cal.compensateTemperature(raw)
	return temp, nil
}

// ReadTemperatureRaw triggers a conversion and returns the 20-bit ADC value.
func (d *Dev) ReadTemperatureRaw() (int32, error) {
	if err := d.triggerAndWait(true); err != nil {
		return 0, err
	}
	return d.readUint20(regTempMSB)
}

// ReadPressure triggers a conversion and returns Pascal.
func (d *Dev) ReadPressure() (float64, error) {
	if err := d.triggerAndWait(true); err != nil {
		return 0, err
	}
	tRaw, err := d.readUint20(regTempMSB)
	if err != nil {
		return 0, err
	}
	pRaw, err := d.readUint20(regPressMSB)
	if err != nil {
		return 0, err
	}
	_, tFine := d.cal.compensateTemperature(tRaw)
	return d.cal.compensatePressure(pRaw, tFine), nil
}

// ReadPressureRaw triggers a conversion and returns the 20-bit ADC value.
func (d *Dev) ReadPressureRaw() (int32, error) {
	if err := d.triggerAndWait(true); err != nil {
		return 0, err
	}
	return d.readUint20(regPressMSB)
}

// ReadHumidity triggers a conversion and returns %RH.
func (d *Dev) ReadHumidity() (float64, error) {
	if err := d.triggerAndWait(true); err != nil {
		return 0, err
	}
	tRaw, err := d.readUint20(regTempMSB)
	if err != nil {
		return 0, err
	}
	hRaw, err := d.readUint16BE(regHumMSB)
	if err != nil {
		return 0, err
	}
	temp, _ := d.cal.compensateTemperature(tRaw)
	return d.cal.compensateHumidity(int32(hRaw), temp), nil
}

// ReadHumidityRaw triggers a conversion and returns the 16-bit ADC value.
func (d *Dev) ReadHumidityRaw() (int32, error) {
	if err := d.triggerAndWait(true); err != nil {
		return 0, err
	}
	raw, err := d.readUint16BE(regHumMSB)
	return int32(raw), err
}

// ReadGasResistance triggers a conversion, including the heater soak, and
// returns the gas resistance in Ohm. The heater must be configured with
// SetGasHeater first.
func (d *Dev) ReadGasResistance() (float64, error) {
	if !d.gasEnabled {
		return 0, ErrGasDisabled
	}
	if err := d.triggerAndWait(false); err != nil {
		return 0, err
	}
	return d.readGasResistance()
}

// ReadGasRaw triggers a conversion and returns the 10-bit gas ADC value.
func (d *Dev) ReadGasRaw() (int32, error) {
	if !d.gasEnabled {
		return 0, ErrGasDisabled
	}
	if err := d.triggerAndWait(false); err != nil {
		return 0, err
	}
	raw, _, _, err := d.readGasRegs()
	return raw, err
}

// triggerAndWait starts a forced conversion and polls until the device
// reports completion. With skipGas the gas run bit is cleared for just this
// cycle so the device does not sit through the heater soak; the bit is put
// back on every exit path.
func (d *Dev) triggerAndWait(skipGas bool) error {
	gasRuns := d.gasEnabled
	if skipGas && d.gasEnabled {
		if err := d.writeBits(regCtrlGas1, d.runGasMask(), 0); err != nil {
			return err
		}
		gasRuns = false
		// Restoration must happen even when the wait below fails. A
		// restore failure is deliberately dropped; the primary error
		// wins.
		defer d.writeBits(regCtrlGas1, d.runGasMask(), 1)
	}

	if err := d.writeBits(regCtrlMeas, maskMode, modeForced); err != nil {
		return err
	}

	if gasRuns {
		// The conversion cannot finish before the heater soak elapses,
		// so don't burn bus traffic polling through it.
		d.sleep(d.soak)
	}

	for i := 0; i < measurePollMax; i++ {
		d.sleep(time.Duration(i+1) * time.Millisecond)
		measuring, err := d.readBits(regMeasStatus0, maskMeasuring)
		if err != nil {
			return err
		}
		if measuring == 0 {
			return nil
		}
	}
	return ErrTimeout
}

// readGasResistance reads and compensates the gas registers after a
// conversion. Fails unless the device flags the reading as valid and the
// heater as stabilized.
func (d *Dev) readGasResistance() (float64, error) {
	raw, gasRange, flags, err := d.readGasRegs()
	if err != nil {
		return 0, err
	}
	if flags&gasValidBit == 0 {
		return 0, ErrGasNotValid
	}
	if flags&heatStabBit == 0 {
		return 0, ErrHeaterNotStable
	}
	return compensateGas(d.variant, &d.cal, raw, gasRange), nil
}

// readGasRegs reads the 16-bit gas result: a 10-bit ADC value, the range
// nibble and the status flags. The register pair moved between variants.
func (d *Dev) readGasRegs() (raw int32, gasRange uint8, flags uint8, err error) {
	reg := regGasRMSB680
	if d.variant == VariantBME688 {
		reg = regGasRMSB688
	}
	var b [2]byte
	if err = d.readReg(reg, b[:]); err != nil {
		return 0, 0, 0, err
	}
	raw = int32(b[0])<<2 | int32(b[1])>>6
	gasRange = b[1] & gasRangeMsk
	flags = b[1]
	return raw, gasRange, flags, nil
}
