package bme68x

import (
	"math"
	"testing"
)

func TestCompensateTemperature(t *testing.T) {
	cal := refCal()
	temp, tFine := cal.compensateTemperature(419430)
	if math.Abs(temp-20.015578053445644) > 1e-6 {
		t.Errorf("temp = %v", temp)
	}
	if math.Abs(tFine-102479.75963364169) > 1e-3 {
		t.Errorf("tFine = %v", tFine)
	}

	// Pure function: identical inputs, identical outputs.
	temp2, tFine2 := cal.compensateTemperature(419430)
	if temp2 != temp || tFine2 != tFine {
		t.Error("compensateTemperature is not deterministic")
	}
}

func TestCompensatePressure(t *testing.T) {
	cal := refCal()
	_, tFine := cal.compensateTemperature(419430)
	press := cal.compensatePressure(415148, tFine)
	if math.Abs(press-86359.98055269913) > 1e-3 {
		t.Errorf("pressure = %v", press)
	}
}

func TestCompensatePressureDegenerateCalibration(t *testing.T) {
	cal := calibration{}
	if press := cal.compensatePressure(415148, 102479.76); press != 0 {
		t.Errorf("pressure with zero p1 = %v, want 0", press)
	}
}

func TestCompensateHumidity(t *testing.T) {
	cal := refCal()
	temp, _ := cal.compensateTemperature(419430)
	hum := cal.compensateHumidity(20000, temp)
	if math.Abs(hum-43.229633354480114) > 1e-6 {
		t.Errorf("humidity = %v", hum)
	}
}

func TestCompensateHumidityClamps(t *testing.T) {
	cal := refCal()
	temp, _ := cal.compensateTemperature(419430)
	if hum := cal.compensateHumidity(0, temp); hum != 0 {
		t.Errorf("humidity floor = %v", hum)
	}
	if hum := cal.compensateHumidity(65535, temp); hum != 100 {
		t.Errorf("humidity ceiling = %v", hum)
	}
}

func TestCompensateGasBME680(t *testing.T) {
	cal := refCal()
	gas := compensateGas(VariantBME680, &cal, 600, 5)
	if math.Abs(gas-232872.0267263851) > 1e-3 {
		t.Errorf("gas = %v", gas)
	}
}

func TestCompensateGasBME688(t *testing.T) {
	// The BME688 formula uses no calibration coefficients at all.
	cal := calibration{}
	gas := compensateGas(VariantBME688, &cal, 600, 5)
	if math.Abs(gas-1878899.0825688073) > 1e-3 {
		t.Errorf("gas = %v", gas)
	}
}

func TestCompensateGasVariantsDiverge(t *testing.T) {
	cal := refCal()
	a := compensateGas(VariantBME680, &cal, 600, 5)
	b := compensateGas(VariantBME688, &cal, 600, 5)
	if a == b {
		t.Fatalf("both variants computed %v", a)
	}
}

func TestHeaterResistance(t *testing.T) {
	cal := refCal()
	if got := cal.heaterResistance(heaterAmbientTemp, 300); got != 114 {
		t.Errorf("heaterResistance(25, 300) = %d, want 114", got)
	}
	// Truncation, not rounding: a higher target moves the register value
	// monotonically.
	lo := cal.heaterResistance(heaterAmbientTemp, 200)
	hi := cal.heaterResistance(heaterAmbientTemp, 400)
	if lo >= hi {
		t.Errorf("heater resistance not monotonic: %d >= %d", lo, hi)
	}
}
