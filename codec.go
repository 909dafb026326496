package bme68x

import "fmt"

// Register encodings for oversampling factors and filter sizes. Both
// directions are pure; setters encode before touching the bus so an invalid
// value never reaches the device.

func encodeOversampling(os Oversampling) (uint8, error) {
	switch os {
	case Oversampling1x:
		return 1, nil
	case Oversampling2x:
		return 2, nil
	case Oversampling4x:
		return 3, nil
	case Oversampling8x:
		return 4, nil
	case Oversampling16x:
		return 5, nil
	default:
		return 0, fmt.Errorf("bme68x: invalid oversampling: %d", os)
	}
}

func decodeOversampling(code uint8) Oversampling {
	switch code {
	case 1:
		return Oversampling1x
	case 2:
		return Oversampling2x
	case 3:
		return Oversampling4x
	case 4:
		return Oversampling8x
	default:
		if code >= 5 {
			return Oversampling16x
		}
		return OversamplingNone
	}
}

func encodeFilterSize(fs FilterSize) (uint8, error) {
	switch fs {
	case Filter0:
		return 0, nil
	case Filter1:
		return 1, nil
	case Filter3:
		return 2, nil
	case Filter7:
		return 3, nil
	case Filter15:
		return 4, nil
	case Filter31:
		return 5, nil
	case Filter63:
		return 6, nil
	case Filter127:
		return 7, nil
	default:
		return 0, fmt.Errorf("bme68x: invalid filter size: %d", fs)
	}
}

func decodeFilterSize(code uint8) FilterSize {
	return FilterSize(1<<code - 1)
}

// encodeGasWait packs a heater soak time in milliseconds into the device's
// floating byte format: a 6-bit mantissa scaled by a 2-bit power-of-4
// exponent in the top bits. ms must already be validated to [0, 4032].
func encodeGasWait(ms int) uint8 {
	factor := 0
	for ms > 0x3F {
		ms /= 4
		factor++
	}
	return uint8(ms + factor*64)
}
