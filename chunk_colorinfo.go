package pngforensic

import "bytes"

var renderingIntentNames = map[uint8]string{
	0: "Perceptual",
	1: "Relative colorimetric",
	2: "Saturation",
	3: "Absolute colorimetric",
}

type srgbHandler struct{ baseHandler }

func newSRGBHandler() *srgbHandler {
	return &srgbHandler{baseHandler{
		typ:  "sRGB",
		spec: fixedLength(1),
		seed: []byte{0},
	}}
}

func (h *srgbHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	d := c.Data()
	name, ok := renderingIntentNames[d[0]]
	if !ok {
		name = "Wrong!!"
	}
	return map[Key]interface{}{KeyRenderingIntentCode: d[0], KeyRenderingIntentName: name}, nil
}

func (h *srgbHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	d := c.Data()
	switch key {
	case KeyRenderingIntentCode:
		return d[0], nil
	case KeyRenderingIntentName:
		if name, ok := renderingIntentNames[d[0]]; ok {
			return name, nil
		}
		return "Wrong!!", nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *srgbHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	if key != KeyRenderingIntentCode {
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	v, err := asUint8(value)
	if err != nil {
		return err
	}
	return c.SetData([]byte{v})
}

func (h *srgbHandler) ValidatePayload(c *Chunk) bool {
	_, ok := renderingIntentNames[c.Data()[0]]
	return ok
}

type gamaHandler struct{ baseHandler }

func newGAMAHandler() *gamaHandler {
	return &gamaHandler{baseHandler{
		typ:  "gAMA",
		spec: fixedLength(4),
		seed: []byte{0, 1, 0x86, 0xa0}, // 100000, a gamma of 1.0
	}}
}

func (h *gamaHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	return map[Key]interface{}{KeyGamma: getUint32(c.Data())}, nil
}

func (h *gamaHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	if key != KeyGamma {
		return h.baseHandler.Get(c, key, ihdr)
	}
	return getUint32(c.Data()), nil
}

func (h *gamaHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	if key != KeyGamma {
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	v, err := asUint32(value)
	if err != nil {
		return err
	}
	d := make([]byte, 4)
	putUint32(d, v)
	return c.SetData(d)
}

func (h *gamaHandler) ValidatePayload(c *Chunk) bool { return len(c.Data()) == 4 }

// cHRM stores eight u32/100000 fixed-point chromaticity coordinates in a
// fixed order: white point, red, green, blue.
type chrmHandler struct{ baseHandler }

func newCHRMHandler() *chrmHandler {
	return &chrmHandler{baseHandler{
		typ:  "cHRM",
		spec: fixedLength(32),
		seed: make([]byte, 32),
	}}
}

var chrmFieldOrder = []Key{KeyWhiteX, KeyWhiteY, KeyRedX, KeyRedY, KeyGreenX, KeyGreenY, KeyBlueX, KeyBlueY}

func chrmOffset(key Key) (int, bool) {
	for i, k := range chrmFieldOrder {
		if k == key {
			return i * 4, true
		}
	}
	return 0, false
}

func (h *chrmHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	out := map[Key]interface{}{}
	d := c.Data()
	for i, k := range chrmFieldOrder {
		out[k] = getUint32(d[i*4 : i*4+4])
	}
	return out, nil
}

func (h *chrmHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	off, ok := chrmOffset(key)
	if !ok {
		return h.baseHandler.Get(c, key, ihdr)
	}
	return getUint32(c.Data()[off : off+4]), nil
}

func (h *chrmHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	off, ok := chrmOffset(key)
	if !ok {
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	v, err := asUint32(value)
	if err != nil {
		return err
	}
	d := c.Data()
	putUint32(d[off:off+4], v)
	return c.SetData(d)
}

func (h *chrmHandler) ValidatePayload(c *Chunk) bool { return len(c.Data()) == 32 }

// iCCP carries an embedded ICC colour profile, deflate-compressed the same
// way as zTXt's text field.
type iccpHandler struct{ baseHandler }

func newICCPHandler() *iccpHandler {
	return &iccpHandler{baseHandler{
		typ:  "iCCP",
		spec: minLength(2),
		seed: []byte("A\x00\x00"),
	}}
}

func (h *iccpHandler) parts(c *Chunk) (name []byte, method byte, compressed []byte, err error) {
	d := c.Data()
	sep := bytes.IndexByte(d, 0)
	if sep < 0 || sep > 79 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "iCCP profile name separator missing or too far in")
	}
	if len(d) < sep+2 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "iCCP payload too short for a compression method byte")
	}
	return d[:sep], d[sep+1], d[sep+2:], nil
}

func (h *iccpHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	name, method, comp, err := h.parts(c)
	if err != nil {
		return nil, err
	}
	if method != 0 {
		return nil, newErr(ErrUnsupportedCompression, "iCCP compression method")
	}
	profile, err := deflateDecompress(comp)
	if err != nil {
		return nil, newErr(ErrInvalidChunkStructure, "iCCP profile did not inflate: "+err.Error())
	}
	return map[Key]interface{}{KeyProfileName: string(name), KeyCompressionMethod: method, KeyProfile: profile}, nil
}

func (h *iccpHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	name, method, comp, err := h.parts(c)
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyProfileName:
		return string(name), nil
	case KeyCompressionMethod:
		return method, nil
	case KeyProfile:
		if method != 0 {
			return nil, newErr(ErrUnsupportedCompression, "iCCP compression method")
		}
		profile, err := deflateDecompress(comp)
		if err != nil {
			return nil, newErr(ErrInvalidChunkStructure, "iCCP profile did not inflate: "+err.Error())
		}
		return profile, nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *iccpHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	name, method, comp, err := h.parts(c)
	if err != nil {
		return err
	}
	switch key {
	case KeyProfileName:
		s, ok := value.(string)
		if !ok || len(s) > 79 {
			return newErr(ErrValueError, "profile name must be a string of at most 79 bytes")
		}
		return c.SetData(append(append([]byte(s), 0, method), comp...))
	case KeyProfile:
		raw, ok := value.([]byte)
		if !ok {
			return newErr(ErrTypeError, "profile must be []byte")
		}
		newComp, err := deflateCompress(raw)
		if err != nil {
			return err
		}
		return c.SetData(append(append(append([]byte{}, name...), 0, 0), newComp...))
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
}

func (h *iccpHandler) ValidatePayload(c *Chunk) bool {
	_, method, _, err := h.parts(c)
	return err == nil && method == 0
}

func init() {
	register(newSRGBHandler())
	register(newGAMAHandler())
	register(newCHRMHandler())
	register(newICCPHandler())
}
