package pngforensic

// pHYs gives the intended pixel aspect ratio/density as pixels-per-unit on
// each axis plus a unit specifier (0 = unknown/unspecified, 1 = metre).
type physHandler struct{ baseHandler }

func newPHYSHandler() *physHandler {
	return &physHandler{baseHandler{
		typ:  "pHYs",
		spec: fixedLength(9),
		seed: []byte{0, 0, 0x0b, 0x13, 0, 0, 0x0b, 0x13, 1}, // ~2835 ppu (72 dpi), metre
	}}
}

func (h *physHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	out := map[Key]interface{}{}
	for _, k := range []Key{KeyPPUX, KeyPPUY, KeyUnit, KeyDPI} {
		v, err := h.Get(c, k, ihdr)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (h *physHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	d := c.Data()
	switch key {
	case KeyPPUX:
		return getUint32(d[0:4]), nil
	case KeyPPUY:
		return getUint32(d[4:8]), nil
	case KeyUnit:
		return d[8], nil
	case KeyDPI:
		if d[8] != 1 {
			return nil, nil
		}
		// 1 metre = 39.3701 inches.
		ppux := float64(getUint32(d[0:4]))
		ppuy := float64(getUint32(d[4:8]))
		return [2]float64{ppux * 0.0254, ppuy * 0.0254}, nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *physHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	d := c.Data()
	switch key {
	case KeyPPUX:
		v, err := asUint32(value)
		if err != nil {
			return err
		}
		putUint32(d[0:4], v)
	case KeyPPUY:
		v, err := asUint32(value)
		if err != nil {
			return err
		}
		putUint32(d[4:8], v)
	case KeyUnit:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		d[8] = v
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	return c.SetData(d)
}

func (h *physHandler) ValidatePayload(c *Chunk) bool {
	d := c.Data()
	return len(d) == 9 && (d[8] == 0 || d[8] == 1)
}

var daysInMonth = [...]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(y uint16) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

func daysIn(y uint16, m uint8) uint8 {
	if m == 2 && isLeapYear(y) {
		return 29
	}
	return daysInMonth[m-1]
}

// tIME records the image's last-modification time (UTC): year as a u16,
// then month/day/hour/minute/second as single bytes.
type timeHandler struct{ baseHandler }

func newTIMEHandler() *timeHandler {
	return &timeHandler{baseHandler{
		typ:  "tIME",
		spec: fixedLength(7),
		seed: []byte{0x07, 0xe8, 1, 1, 0, 0, 0}, // 2024-01-01T00:00:00
	}}
}

func (h *timeHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	d := c.Data()
	return map[Key]interface{}{
		KeyYear:   getUint16(d[0:2]),
		KeyMonth:  d[2],
		KeyDay:    d[3],
		KeyHour:   d[4],
		KeyMinute: d[5],
		KeySecond: d[6],
	}, nil
}

func (h *timeHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	d := c.Data()
	switch key {
	case KeyYear:
		return getUint16(d[0:2]), nil
	case KeyMonth:
		return d[2], nil
	case KeyDay:
		return d[3], nil
	case KeyHour:
		return d[4], nil
	case KeyMinute:
		return d[5], nil
	case KeySecond:
		return d[6], nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *timeHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	d := c.Data()
	switch key {
	case KeyYear:
		v, err := asUint16(value)
		if err != nil {
			return err
		}
		putUint16(d[0:2], v)
	case KeyMonth:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		d[2] = v
	case KeyDay:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		d[3] = v
	case KeyHour:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		d[4] = v
	case KeyMinute:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		d[5] = v
	case KeySecond:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		d[6] = v
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	return c.SetData(d)
}

// ValidatePayload checks the calendar fields are self-consistent: month in
// 1..12, day within that month's length for the given year (leap years
// included), hour in 0..23, minute in 0..59, second in 0..60 (PNG allows a
// leap second per the specification's wording).
func (h *timeHandler) ValidatePayload(c *Chunk) bool {
	d := c.Data()
	if len(d) != 7 {
		return false
	}
	year := getUint16(d[0:2])
	month, day, hour, minute, second := d[2], d[3], d[4], d[5], d[6]
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > daysIn(year, month) {
		return false
	}
	if hour > 23 || minute > 59 || second > 60 {
		return false
	}
	return true
}

func init() {
	register(newPHYSHandler())
	register(newTIMEHandler())
}
