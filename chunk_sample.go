package pngforensic

// bKGD's shape depends on the image's color type: a palette index for
// indexed-colour images, a single grey sample for greyscale images, or an
// RGB triple for truecolour images. Its class is always inferred from the
// payload length (1, 2 or 6 bytes) and any IHDR context passed in is
// ignored, so a standalone chunk can be inspected without a parent
// container.
type bkgdHandler struct{ baseHandler }

func newBKGDHandler() *bkgdHandler {
	return &bkgdHandler{baseHandler{
		typ:  "bKGD",
		spec: enumLength(1, 2, 6),
		seed: []byte{0},
	}}
}

func (h *bkgdHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	d := c.Data()
	switch len(d) {
	case 1:
		return map[Key]interface{}{KeyPaletteIndex: d[0]}, nil
	case 2:
		return map[Key]interface{}{KeyGray: getUint16(d)}, nil
	case 6:
		return map[Key]interface{}{
			KeyRed:   getUint16(d[0:2]),
			KeyGreen: getUint16(d[2:4]),
			KeyBlue:  getUint16(d[4:6]),
		}, nil
	default:
		return nil, newErr(ErrInvalidChunkStructure, "bKGD length must be 1, 2 or 6")
	}
}

func (h *bkgdHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	d := c.Data()
	switch {
	case key == KeyPaletteIndex && len(d) == 1:
		return d[0], nil
	case key == KeyGray && len(d) == 2:
		return getUint16(d), nil
	case key == KeyRed && len(d) == 6:
		return getUint16(d[0:2]), nil
	case key == KeyGreen && len(d) == 6:
		return getUint16(d[2:4]), nil
	case key == KeyBlue && len(d) == 6:
		return getUint16(d[4:6]), nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *bkgdHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	d := c.Data()
	switch {
	case key == KeyPaletteIndex && len(d) == 1:
		v, err := asUint8(value)
		if err != nil {
			return err
		}
		return c.SetData([]byte{v})
	case key == KeyGray && len(d) == 2:
		v, err := asUint16(value)
		if err != nil {
			return err
		}
		out := make([]byte, 2)
		putUint16(out, v)
		return c.SetData(out)
	case (key == KeyRed || key == KeyGreen || key == KeyBlue) && len(d) == 6:
		v, err := asUint16(value)
		if err != nil {
			return err
		}
		out := asOwned(d)
		switch key {
		case KeyRed:
			putUint16(out[0:2], v)
		case KeyGreen:
			putUint16(out[2:4], v)
		case KeyBlue:
			putUint16(out[4:6], v)
		}
		return c.SetData(out)
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
}

func (h *bkgdHandler) ValidatePayload(c *Chunk) bool {
	n := len(c.Data())
	return n == 1 || n == 2 || n == 6
}

// sBIT records the true bit depth of each sample before any encoder
// rescaling, one byte per channel. Its length (1 to 4) is determined by
// color type, which isn't known without IHDR context, so only the raw
// values are exposed here.
type sbitHandler struct{ baseHandler }

func newSBITHandler() *sbitHandler {
	return &sbitHandler{baseHandler{
		typ:  "sBIT",
		spec: rangeLength(1, 4),
		seed: []byte{8},
	}}
}

func (h *sbitHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	return map[Key]interface{}{KeyValues: asOwned(c.Data())}, nil
}

func (h *sbitHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	if key != KeyValues {
		return h.baseHandler.Get(c, key, ihdr)
	}
	return asOwned(c.Data()), nil
}

func (h *sbitHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	if key != KeyValues {
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	v, ok := value.([]byte)
	if !ok || len(v) < 1 || len(v) > 4 {
		return newErr(ErrValueError, "sBIT values must be 1 to 4 bytes")
	}
	return c.SetData(v)
}

func (h *sbitHandler) ValidatePayload(c *Chunk) bool {
	n := len(c.Data())
	return n >= 1 && n <= 4
}

// sPLT suggests a reduced palette for quantizing the image, at a declared
// sample depth of 8 or 16 bits: name \0 sample_depth:u8, then entries of
// (r,g,b,a,freq) at that depth.
type spltHandler struct{ baseHandler }

func newSPLTHandler() *spltHandler {
	return &spltHandler{baseHandler{
		typ:  "sPLT",
		spec: minLength(2),
		seed: []byte("A\x00\x08"),
	}}
}

func sampleWidth(depth uint8) int {
	if depth == 16 {
		return 2
	}
	return 1
}

func (h *spltHandler) split(c *Chunk) (name []byte, depth uint8, entries []byte, err error) {
	d := c.Data()
	sep := indexByte(d, 0)
	if sep < 0 || sep > 79 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "sPLT palette name separator missing or too far in")
	}
	if len(d) < sep+2 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "sPLT payload too short for a sample depth byte")
	}
	depth = d[sep+1]
	if depth != 8 && depth != 16 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "sPLT sample depth must be 8 or 16")
	}
	return d[:sep], depth, d[sep+2:], nil
}

type sPLTEntry struct {
	R, G, B, A uint16
	Frequency  uint16
}

func spltEntries(entries []byte, depth uint8) ([]sPLTEntry, error) {
	w := sampleWidth(depth)
	stride := 4*w + 2
	if len(entries)%stride != 0 {
		return nil, newErr(ErrInvalidChunkStructure, "sPLT entry table length doesn't match its sample depth")
	}
	readSample := func(b []byte) uint16 {
		if w == 1 {
			return uint16(b[0])
		}
		return getUint16(b)
	}
	n := len(entries) / stride
	out := make([]sPLTEntry, n)
	for i := 0; i < n; i++ {
		e := entries[i*stride : (i+1)*stride]
		out[i] = sPLTEntry{
			R:         readSample(e[0*w:]),
			G:         readSample(e[1*w:]),
			B:         readSample(e[2*w:]),
			A:         readSample(e[3*w:]),
			Frequency: getUint16(e[4*w:]),
		}
	}
	return out, nil
}

func (h *spltHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	name, depth, raw, err := h.split(c)
	if err != nil {
		return nil, err
	}
	entries, err := spltEntries(raw, depth)
	if err != nil {
		return nil, err
	}
	return map[Key]interface{}{KeyPaletteName: string(name), KeySampleDepth: depth, KeyEntries: entries}, nil
}

func (h *spltHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	name, depth, raw, err := h.split(c)
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyPaletteName:
		return string(name), nil
	case KeySampleDepth:
		return depth, nil
	case KeyEntries:
		return spltEntries(raw, depth)
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *spltHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	name, depth, raw, err := h.split(c)
	if err != nil {
		return err
	}
	switch key {
	case KeyPaletteName:
		s, ok := value.(string)
		if !ok || len(s) > 79 {
			return newErr(ErrValueError, "palette name must be a string of at most 79 bytes")
		}
		return c.SetData(append(append([]byte(s), 0, depth), raw...))
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
}

func (h *spltHandler) ValidatePayload(c *Chunk) bool {
	_, depth, raw, err := h.split(c)
	if err != nil {
		return false
	}
	_, err = spltEntries(raw, depth)
	return err == nil
}

func indexByte(b []byte, target byte) int {
	for i, v := range b {
		if v == target {
			return i
		}
	}
	return -1
}

// tRNS supplies alpha values for color types that have no explicit alpha
// channel. Its layout depends on the image's color type, so it's the one
// handler here that genuinely needs IHDRInfo to interpret its payload: a
// palette index table for color type 3, a single grey key for 0, or an RGB
// key for 2 (color types 4 and 6 already carry alpha and never have tRNS).
type trnsHandler struct{ baseHandler }

func newTRNSHandler() *trnsHandler {
	return &trnsHandler{baseHandler{
		typ:  "tRNS",
		spec: minLength(0),
		seed: []byte{},
	}}
}

// GetAll without IHDR context falls back to exposing the raw bytes: the
// original implementation never validated tRNS payloads against the image's
// color type either, leaving that cross-check as a standing gap (see
// DESIGN.md).
func (h *trnsHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	if ihdr == nil {
		return map[Key]interface{}{KeyData: asOwned(c.Data())}, nil
	}
	d := c.Data()
	switch ihdr.ColorType {
	case 3:
		return map[Key]interface{}{KeyValues: asOwned(d)}, nil
	case 0:
		if len(d) != 2 {
			return nil, newErr(ErrInvalidChunkStructure, "tRNS for greyscale must be 2 bytes")
		}
		return map[Key]interface{}{KeyGray: getUint16(d)}, nil
	case 2:
		if len(d) != 6 {
			return nil, newErr(ErrInvalidChunkStructure, "tRNS for truecolour must be 6 bytes")
		}
		return map[Key]interface{}{
			KeyRed:   getUint16(d[0:2]),
			KeyGreen: getUint16(d[2:4]),
			KeyBlue:  getUint16(d[4:6]),
		}, nil
	default:
		return nil, newErr(ErrInvalidChunkStructure, "tRNS is not valid for this color type")
	}
}

func (h *trnsHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	all, err := h.GetAll(c, ihdr)
	if err != nil {
		return nil, err
	}
	v, ok := all[key]
	if !ok {
		return h.baseHandler.Get(c, key, ihdr)
	}
	return v, nil
}

func (h *trnsHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	if ihdr == nil {
		if key != KeyData {
			return h.baseHandler.Set(c, key, value, ihdr)
		}
		v, ok := value.([]byte)
		if !ok {
			return newErr(ErrTypeError, "data must be []byte")
		}
		return c.SetData(v)
	}
	switch ihdr.ColorType {
	case 3:
		if key != KeyValues {
			return h.baseHandler.Set(c, key, value, ihdr)
		}
		v, ok := value.([]byte)
		if !ok {
			return newErr(ErrTypeError, "values must be []byte")
		}
		return c.SetData(v)
	case 0:
		if key != KeyGray {
			return h.baseHandler.Set(c, key, value, ihdr)
		}
		v, err := asUint16(value)
		if err != nil {
			return err
		}
		out := make([]byte, 2)
		putUint16(out, v)
		return c.SetData(out)
	case 2:
		d := c.Data()
		if len(d) != 6 {
			d = make([]byte, 6)
		}
		out := asOwned(d)
		v, err := asUint16(value)
		if err != nil {
			return err
		}
		switch key {
		case KeyRed:
			putUint16(out[0:2], v)
		case KeyGreen:
			putUint16(out[2:4], v)
		case KeyBlue:
			putUint16(out[4:6], v)
		default:
			return h.baseHandler.Set(c, key, value, ihdr)
		}
		return c.SetData(out)
	default:
		return newErr(ErrInvalidChunkStructure, "tRNS is not valid for this color type")
	}
}

// ValidatePayload mirrors GetAll's tolerance: without IHDR context there is
// no color type to validate length against, so any length is accepted, the
// same gap the original implementation carried (see DESIGN.md).
func (h *trnsHandler) ValidatePayload(c *Chunk) bool { return true }

func init() {
	register(newBKGDHandler())
	register(newSBITHandler())
	register(newSPLTHandler())
	register(newTRNSHandler())
}
