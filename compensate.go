package bme68x

// Compensation formulas from the manufacturer's reference implementation.
// The sequencing of the intermediate variables is deliberate: floating-point
// results must reproduce the reference bit-for-bit, so the algebra is not
// simplified.

// compensateTemperature converts a 20-bit raw temperature ADC value to
// degrees Celsius. The tFine intermediate feeds the pressure and humidity
// formulas.
func (c *calibration) compensateTemperature(raw int32) (temp, tFine float64) {
	var1 := ((float64(raw) / 16384.0) - (float64(c.t1) / 1024.0)) * float64(c.t2)
	var2 := ((float64(raw)/131072.0 - float64(c.t1)/8192.0) *
		(float64(raw)/131072.0 - float64(c.t1)/8192.0)) * (float64(c.t3) * 16.0)
	tFine = var1 + var2
	return tFine / 5120.0, tFine
}

// compensatePressure converts a 20-bit raw pressure ADC value to Pascal.
func (c *calibration) compensatePressure(raw int32, tFine float64) float64 {
	var1 := (tFine / 2.0) - 64000.0
	var2 := var1 * var1 * (float64(c.p6) / 131072.0)
	var2 = var2 + (var1 * float64(c.p5) * 2.0)
	var2 = (var2 / 4.0) + (float64(c.p4) * 65536.0)
	var1 = (((float64(c.p3) * var1 * var1) / 16384.0) + (float64(c.p2) * var1)) / 524288.0
	var1 = (1.0 + (var1 / 32768.0)) * float64(c.p1)
	press := 1048576.0 - float64(raw)
	if int32(var1) == 0 {
		// Guard against division by zero with degenerate calibration.
		return 0
	}
	press = ((press - (var2 / 4096.0)) * 6250.0) / var1
	var1 = (float64(c.p9) * press * press) / 2147483648.0
	var2 = press * (float64(c.p8) / 32768.0)
	var3 := (press / 256.0) * (press / 256.0) * (press / 256.0) * (float64(c.p10) / 131072.0)
	return press + (var1+var2+var3+(float64(c.p7)*128.0))/16.0
}

// compensateHumidity converts a 16-bit raw humidity ADC value to %RH,
// clamped to [0, 100]. temp is the already compensated temperature.
func (c *calibration) compensateHumidity(raw int32, temp float64) float64 {
	var1 := float64(raw) - ((float64(c.h1) * 16.0) + ((float64(c.h3) / 2.0) * temp))
	var2 := var1 * ((float64(c.h2) / 262144.0) *
		(1.0 + ((float64(c.h4) / 16384.0) * temp) +
			((float64(c.h5) / 1048576.0) * temp * temp)))
	var3 := float64(c.h6) / 16384.0
	var4 := float64(c.h7) / 2097152.0
	hum := var2 + ((var3 + (var4 * temp)) * var2 * var2)
	if hum > 100.0 {
		return 100.0
	}
	if hum < 0.0 {
		return 0.0
	}
	return hum
}

// compensateGas converts a 10-bit raw gas ADC value and its range nibble to
// a resistance in Ohm. The two hardware variants use unrelated formulas.
func compensateGas(variant Variant, c *calibration, raw int32, gasRange uint8) float64 {
	if variant == VariantBME688 {
		var1 := float64(uint32(262144) >> gasRange)
		var2 := float64(raw-512)*3.0 + 4096.0
		return 1000000.0 * var1 / var2
	}
	var1 := (1340.0 + 5.0*float64(c.rangeSwErr)) * gasRangeConst1[gasRange]
	return var1 * gasRangeConst2[gasRange] / (float64(raw) - 512.0 + var1)
}

// heaterResistance computes the res_heat register value that drives the gas
// plate to target degrees Celsius, assuming the fixed ambient temperature.
// The final float is truncated, not rounded.
func (c *calibration) heaterResistance(ambient, target int) uint8 {
	var1 := float64(c.g1)/16.0 + 49.0
	var2 := (float64(c.g2)/32768.0)*0.0005 + 0.00235
	var3 := float64(c.g3) / 1024.0
	var4 := var1 * (1.0 + var2*float64(target))
	var5 := var4 + var3*float64(ambient)
	return uint8(3.4 * ((var5 * (4.0 / (4.0 + float64(c.heatRange))) *
		(1.0 / (1.0 + float64(c.heatVal)*0.002))) - 25.0))
}
