package bme68x

// I2C addresses the sensor can be strapped to. Which one is wired up is the
// caller's choice; pass the right one to New.
const (
	DefaultAddress   uint16 = 0x76
	AlternateAddress uint16 = 0x77
)

// Variant identifies the hardware flavor of the sensor. It is detected from
// the variant id register during power-on and fixed for the session.
type Variant int

const (
	// VariantUnknown is the zero value before power-on detection has run.
	VariantUnknown Variant = iota
	VariantBME680
	VariantBME688
)

func (v Variant) String() string {
	switch v {
	case VariantBME680:
		return "BME680"
	case VariantBME688:
		return "BME688"
	default:
		return "unknown"
	}
}

// Oversampling is the on-device sample averaging factor. The value is the
// factor itself, not the register encoding.
type Oversampling int

const (
	// OversamplingNone means the channel is disabled. It is only ever
	// returned by getters; setters reject it.
	OversamplingNone Oversampling = 0
	Oversampling1x   Oversampling = 1
	Oversampling2x   Oversampling = 2
	Oversampling4x   Oversampling = 4
	Oversampling8x   Oversampling = 8
	Oversampling16x  Oversampling = 16
)

// FilterSize is the IIR low-pass filter coefficient applied on-device to
// temperature and pressure samples. 0 disables the filter.
type FilterSize int

const (
	Filter0   FilterSize = 0
	Filter1   FilterSize = 1
	Filter3   FilterSize = 3
	Filter7   FilterSize = 7
	Filter15  FilterSize = 15
	Filter31  FilterSize = 31
	Filter63  FilterSize = 63
	Filter127 FilterSize = 127
)

const (
	chipID       uint8 = 0x61
	softResetCmd uint8 = 0xB6

	variantIDBME688 uint8 = 0x01
)

const (
	regHeatVal     uint8 = 0x00
	regHeatRange   uint8 = 0x02
	regRangeSwErr  uint8 = 0x04
	regMeasStatus0 uint8 = 0x1D
	regPressMSB    uint8 = 0x1F
	regTempMSB     uint8 = 0x22
	regHumMSB      uint8 = 0x25
	regGasRMSB680  uint8 = 0x2A
	regGasRMSB688  uint8 = 0x2C
	regIdacHeat0   uint8 = 0x50
	regResHeat0    uint8 = 0x5A
	regGasWait0    uint8 = 0x64
	regCtrlGas0    uint8 = 0x70
	regCtrlGas1    uint8 = 0x71
	regCtrlHum     uint8 = 0x72
	regCtrlMeas    uint8 = 0x74
	regConfig      uint8 = 0x75
	regChipID      uint8 = 0xD0
	regSoftReset   uint8 = 0xE0
	regVariantID   uint8 = 0xF0
)

// Calibration coefficient registers. 16-bit values are little-endian.
const (
	regCalT1 uint8 = 0xE9
	regCalT2 uint8 = 0x8A
	regCalT3 uint8 = 0x8C

	regCalP1  uint8 = 0x8E
	regCalP2  uint8 = 0x90
	regCalP3  uint8 = 0x92
	regCalP4  uint8 = 0x94
	regCalP5  uint8 = 0x96
	regCalP6  uint8 = 0x99
	regCalP7  uint8 = 0x98
	regCalP8  uint8 = 0x9C
	regCalP9  uint8 = 0x9E
	regCalP10 uint8 = 0xA0

	// h1 and h2 share the nibbles of 0xE2: bits 0-3 belong to h1, bits
	// 4-7 to h2.
	regCalH1MSB uint8 = 0xE3
	regCalH2MSB uint8 = 0xE1
	regCalHxLSB uint8 = 0xE2
	regCalH3    uint8 = 0xE4
	regCalH4    uint8 = 0xE5
	regCalH5    uint8 = 0xE6
	regCalH6    uint8 = 0xE7
	regCalH7    uint8 = 0xE8

	regCalG1 uint8 = 0xED
	regCalG2 uint8 = 0xEB
	regCalG3 uint8 = 0xEE
)

// Bit-field masks consumed by readBits/writeBits.
const (
	maskMode      uint8 = 0x03 // ctrl_meas
	maskOsrsP     uint8 = 0x1C // ctrl_meas
	maskOsrsT     uint8 = 0xE0 // ctrl_meas
	maskOsrsH     uint8 = 0x07 // ctrl_hum
	maskFilter    uint8 = 0x1C // config
	maskHeatOff   uint8 = 0x08 // ctrl_gas_0
	maskNbConv    uint8 = 0x0F // ctrl_gas_1
	maskRunGas680 uint8 = 0x10 // ctrl_gas_1
	maskRunGas688 uint8 = 0x20 // ctrl_gas_1
	maskMeasuring uint8 = 0x20 // meas_status_0
	maskHeatRange uint8 = 0x30 // res_heat_range
)

const (
	modeSleep  uint8 = 0x00
	modeForced uint8 = 0x01
)

// gas_r_lsb layout: bits 6-7 are the low end of the 10-bit ADC value, the
// rest are status flags and the range nibble.
const (
	gasValidBit uint8 = 0x20
	heatStabBit uint8 = 0x10
	gasRangeMsk uint8 = 0x0F
)

// Bounded completion poll: up to measurePollMax status checks, check i
// sleeping i+1 ms first.
const measurePollMax = 100

// Ambient temperature assumed by the heater resistance formula. The heater
// set-point does not track the measured temperature; 25 degrees is assumed.
const heaterAmbientTemp = 25

const (
	maxHeaterTemp     = 400  // degrees Celsius
	maxHeaterDuration = 4032 // milliseconds, 0x3F * 4^3
)

// Gas resistance range constants for the BME680, indexed by the range nibble
// reported alongside the raw gas ADC value. The BME688 uses a closed-form
// formula instead.
var gasRangeConst1 = [16]float64{
	1.0, 1.0, 1.0, 1.0, 1.0, 0.99, 1.0, 0.992,
	1.0, 1.0, 0.998, 0.995, 1.0, 0.99, 1.0, 1.0,
}

var gasRangeConst2 = [16]float64{
	8000000.0, 4000000.0, 2000000.0, 1000000.0,
	499500.4995, 248262.1648, 125000.0, 63004.03226,
	31281.28128, 15625.0, 7812.5, 3906.25,
	1953.125, 976.5625, 488.28125, 244.140625,
}
