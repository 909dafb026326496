package bme68x

import "math/bits"

// readReg reads len(b) bytes starting at reg. The device auto-increments the
// register address on multi-byte reads.
func (d *Dev) readReg(reg uint8, b []byte) error {
	if err := d.d.Tx([]byte{reg}, b); err != nil {
		return d.wrap(err)
	}
	return nil
}

func (d *Dev) readUint8(reg uint8) (uint8, error) {
	var b [1]byte
	if err := d.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Dev) readUint16LE(reg uint8) (uint16, error) {
	var b [2]byte
	if err := d.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	return uint16(b[1])<<8 | uint16(b[0]), nil
}

// readUint20 reads a 20-bit big-endian ADC value packed msb/lsb/xlsb with the
// low nibble in the top half of the third byte.
func (d *Dev) readUint20(reg uint8) (int32, error) {
	var b [3]byte
	if err := d.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	return int32(b[0])<<12 | int32(b[1])<<4 | int32(b[2])>>4, nil
}

func (d *Dev) readUint16BE(reg uint8) (uint16, error) {
	var b [2]byte
	if err := d.readReg(reg, b[:]); err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (d *Dev) writeReg(reg, value uint8) error {
	if err := d.d.Tx([]byte{reg, value}, nil); err != nil {
		return d.wrap(err)
	}
	return nil
}

// readBits reads reg and returns the field selected by mask, shifted down so
// the field's lowest bit lands at bit 0. mask must be non-zero.
func (d *Dev) readBits(reg, mask uint8) (uint8, error) {
	v, err := d.readUint8(reg)
	if err != nil {
		return 0, err
	}
	return (v & mask) >> bits.TrailingZeros8(mask), nil
}

// writeBits read-modify-writes the field selected by mask: the current byte
// is read, the masked bits cleared, and value shifted up into their place.
// One read and one write, no retries; transport errors propagate.
func (d *Dev) writeBits(reg, mask, value uint8) error {
	v, err := d.readUint8(reg)
	if err != nil {
		return err
	}
	v &^= mask
	v |= (value << bits.TrailingZeros8(mask)) & mask
	return d.writeReg(reg, v)
}
