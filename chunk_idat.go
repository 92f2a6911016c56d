package pngforensic

// idatHandler exposes IDAT's raw bytes only; it carries an opaque fragment
// of the concatenated deflate datastream and has no fields of its own. The
// Png container is responsible for concatenating, decompressing and
// re-chunking across multiple IDATs.
type idatHandler struct{ baseHandler }

func newIDATHandler() *idatHandler {
	return &idatHandler{baseHandler{
		typ:  "IDAT",
		spec: minLength(0),
		seed: []byte{},
	}}
}

func (h *idatHandler) ValidatePayload(c *Chunk) bool { return true }

func (h *idatHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	return map[Key]interface{}{KeyData: c.Data()}, nil
}

func (h *idatHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	if key == KeyData {
		return c.Data(), nil
	}
	return h.baseHandler.Get(c, key, ihdr)
}

type iendHandler struct{ baseHandler }

func newIENDHandler() *iendHandler {
	return &iendHandler{baseHandler{
		typ:  "IEND",
		spec: fixedLength(0),
		seed: []byte{},
	}}
}

func init() {
	register(newIDATHandler())
	register(newIENDHandler())
}
