package bme68x

// calibration holds the per-device compensation coefficients. It is loaded
// once per power-on cycle and never written afterwards.
type calibration struct {
	t1 uint16
	t2 int16
	t3 int8

	p1                 uint16
	p2, p4, p5, p8, p9 int16
	p3, p6, p7         int8
	p10                uint8

	h1, h2         uint16
	h3, h4, h5, h7 int8
	h6             uint8

	g1, g3 int8
	g2     int16

	heatRange uint8
	heatVal   int8
	// Only the BME680 carries a range switching error; the BME688 leaves
	// it at zero.
	rangeSwErr int8
}

// readCalibration populates d.cal from the coefficient registers. Runs once
// during PowerOn; the variant must already be detected because the range
// switching error register only exists on the BME680.
func (d *Dev) readCalibration() error {
	c := calibration{}

	var err error
	read16 := func(reg uint8) int16 {
		if err != nil {
			return 0
		}
		var v uint16
		v, err = d.readUint16LE(reg)
		return int16(v)
	}
	read8 := func(reg uint8) int8 {
		if err != nil {
			return 0
		}
		var v uint8
		v, err = d.readUint8(reg)
		return int8(v)
	}

	c.t1 = uint16(read16(regCalT1))
	c.t2 = read16(regCalT2)
	c.t3 = read8(regCalT3)

	c.p1 = uint16(read16(regCalP1))
	c.p2 = read16(regCalP2)
	c.p3 = read8(regCalP3)
	c.p4 = read16(regCalP4)
	c.p5 = read16(regCalP5)
	c.p6 = read8(regCalP6)
	c.p7 = read8(regCalP7)
	c.p8 = read16(regCalP8)
	c.p9 = read16(regCalP9)
	c.p10 = uint8(read8(regCalP10))

	h1msb := uint8(read8(regCalH1MSB))
	h2msb := uint8(read8(regCalH2MSB))
	shared := uint8(read8(regCalHxLSB))
	c.h1 = uint16(h1msb)<<4 | uint16(shared&0x0F)
	c.h2 = uint16(h2msb)<<4 | uint16(shared>>4)
	c.h3 = read8(regCalH3)
	c.h4 = read8(regCalH4)
	c.h5 = read8(regCalH5)
	c.h6 = uint8(read8(regCalH6))
	c.h7 = read8(regCalH7)

	c.g1 = read8(regCalG1)
	c.g2 = read16(regCalG2)
	c.g3 = read8(regCalG3)

	if err != nil {
		return err
	}

	hr, err := d.readBits(regHeatRange, maskHeatRange)
	if err != nil {
		return err
	}
	c.heatRange = hr
	hv, err := d.readUint8(regHeatVal)
	if err != nil {
		return err
	}
	c.heatVal = int8(hv)

	if d.variant == VariantBME680 {
		rse, err := d.readUint8(regRangeSwErr)
		if err != nil {
			return err
		}
		// Signed high nibble.
		c.rangeSwErr = int8(rse&0xF0) >> 4
	}

	d.cal = c
	return nil
}
