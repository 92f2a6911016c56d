package pngforensic

// RGB is one three-byte PLTE palette entry.
type RGB struct {
	R, G, B uint8
}

type plteHandler struct{ baseHandler }

func newPLTEHandler() *plteHandler {
	return &plteHandler{baseHandler{
		typ:  "PLTE",
		spec: rangeLength(3, 768),
		seed: []byte{0, 0, 0},
	}}
}

func plteEntries(data []byte) ([]RGB, error) {
	if len(data)%3 != 0 {
		return nil, newErr(ErrInvalidChunkStructure, "PLTE length must be a multiple of 3")
	}
	n := len(data) / 3
	out := make([]RGB, n)
	for i := 0; i < n; i++ {
		out[i] = RGB{data[3*i], data[3*i+1], data[3*i+2]}
	}
	return out, nil
}

func (h *plteHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	entries, err := plteEntries(c.Data())
	if err != nil {
		return nil, err
	}
	return map[Key]interface{}{KeyEntries: entries, KeyCount: len(entries)}, nil
}

func (h *plteHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	entries, err := plteEntries(c.Data())
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyEntries:
		return entries, nil
	case KeyCount:
		return len(entries), nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *plteHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	if key != KeyEntries {
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	entries, ok := value.([]RGB)
	if !ok {
		return newErr(ErrTypeError, "entries must be a []RGB")
	}
	data := make([]byte, 3*len(entries))
	for i, e := range entries {
		data[3*i] = e.R
		data[3*i+1] = e.G
		data[3*i+2] = e.B
	}
	return c.SetData(data)
}

// ValidatePayload only checks the length is a multiple of 3, within range:
// the original implementation left deeper palette-validity checking (e.g.
// cross-referencing bit depth against entry count) as a standing TODO, so
// this does the same rather than inventing a stricter rule (see
// DESIGN.md).
func (h *plteHandler) ValidatePayload(c *Chunk) bool {
	return len(c.Data())%3 == 0
}

func init() {
	register(newPLTEHandler())
}
