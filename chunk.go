package pngforensic

// Chunk owns the raw bytes of one PNG chunk, laid out as
// [length:4 big-endian | type:4 ASCII | data:length | crc:4 big-endian].
// length, type, data and crc are views derived from that single buffer;
// there is no separate copy kept in sync.
//
// edit gates every mutator: a Chunk built with edit=false fails every
// setter with ErrReadOnly. autoUpdateCRC recomputes the trailing CRC on
// every byte-modifying mutation except an explicit SetCRC, which is always
// an override.
type Chunk struct {
	raw           []byte
	edit          bool
	autoUpdateCRC bool
}

// NewChunkFromBytes builds a Chunk from the raw bytes of a single chunk
// (length, type, data, crc). Bytes beyond the declared length+12 are
// silently truncated, matching a decoder handed more of the stream than
// one chunk's worth.
func NewChunkFromBytes(raw []byte) (*Chunk, error) {
	return newChunk(raw, true, true)
}

// newChunkFromBytesWith is NewChunkFromBytes with explicit edit/autoUpdateCRC
// flags, used internally by the container so parsed chunks can be marked
// read-only when the Png itself is read-only.
func newChunkFromBytesWith(raw []byte, edit, autoUpdateCRC bool) (*Chunk, error) {
	return newChunk(raw, edit, autoUpdateCRC)
}

func newChunk(raw []byte, edit, autoUpdateCRC bool) (*Chunk, error) {
	if len(raw) < 12 {
		return nil, newErr(ErrMalformedFraming, "chunk shorter than the 12-byte minimum framing")
	}
	length := getUint32(raw[0:4])
	end := int(length) + 12
	if end < 12 || len(raw) < end {
		return nil, newErr(ErrMalformedFraming, "declared length runs past the end of the buffer")
	}
	return &Chunk{raw: asOwned(raw[:end]), edit: edit, autoUpdateCRC: autoUpdateCRC}, nil
}

// NewChunk synthesizes a Chunk of the given 4-character type with a
// zero-length payload, then seeds it with a minimal valid payload unless
// reallyEmpty is set or the type has no registered handler.
func NewChunk(chunkType string, reallyEmpty bool) (*Chunk, error) {
	c := &Chunk{raw: make([]byte, 12), edit: true, autoUpdateCRC: true}
	if err := c.SetType(chunkType); err != nil {
		return nil, err
	}
	if !reallyEmpty {
		if h, ok := registry[chunkType]; ok {
			if err := c.SetData(h.EmptySeed()); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Bytes returns the chunk's full on-disk encoding: length, type, data, crc.
func (c *Chunk) Bytes() []byte { return asOwned(c.raw) }

// Length returns the chunk's declared data length; it always matches
// len(c.Data()).
func (c *Chunk) Length() uint32 { return getUint32(c.raw[0:4]) }

// Type returns the chunk's 4-byte type field. It is not guaranteed to be
// valid ASCII: a chunk built with NewChunkFromBytes can carry arbitrary
// bytes here (the container's parser rejects such chunks).
func (c *Chunk) Type() string { return string(c.raw[4:8]) }

// Data returns the chunk's payload bytes.
func (c *Chunk) Data() []byte { return asOwned(c.raw[8 : len(c.raw)-4]) }

// CRC returns the chunk's stored 32-bit checksum.
func (c *Chunk) CRC() uint32 { return getUint32(c.raw[len(c.raw)-4:]) }

// Editable reports whether this chunk accepts mutation.
func (c *Chunk) Editable() bool { return c.edit }

func (c *Chunk) checkEdit() error {
	if !c.edit {
		return newErr(ErrReadOnly, "chunk was constructed read-only")
	}
	return nil
}

func (c *Chunk) maybeUpdateCRC() {
	if c.autoUpdateCRC {
		putUint32(c.raw[len(c.raw)-4:], c.ComputeCRC())
	}
}

// SetType overwrites the chunk's 4-byte type field. The value must be
// exactly 4 ASCII letters (each byte in 'A'-'Z' or 'a'-'z'); anything else
// is a ErrValueError/ErrTypeError, matching the constraints a real decoder
// places on chunk type bytes.
func (c *Chunk) SetType(v string) error {
	if err := c.checkEdit(); err != nil {
		return err
	}
	if len(v) != 4 {
		return newErr(ErrValueError, "a chunk's type must be 4 characters long")
	}
	if !isASCIILetters(v) {
		return newErr(ErrTypeError, "a chunk's type must be ASCII letters")
	}
	copy(c.raw[4:8], v)
	c.maybeUpdateCRC()
	return nil
}

// SetData replaces the chunk's payload, rewriting the length header to
// match and recomputing the CRC when autoUpdateCRC is set.
func (c *Chunk) SetData(d []byte) error {
	if err := c.checkEdit(); err != nil {
		return err
	}
	newRaw := make([]byte, 8+len(d)+4)
	copy(newRaw[0:8], c.raw[0:8])
	copy(newRaw[8:8+len(d)], d)
	copy(newRaw[8+len(d):], c.raw[len(c.raw)-4:])
	putUint32(newRaw[0:4], uint32(len(d)))
	c.raw = newRaw
	c.maybeUpdateCRC()
	return nil
}

// SetCRC writes the trailing checksum bytes verbatim. Unlike every other
// mutator, this never triggers a recompute: it's the explicit override
// used to construct or study a chunk with a deliberately wrong checksum.
func (c *Chunk) SetCRC(v uint32) error {
	if err := c.checkEdit(); err != nil {
		return err
	}
	putUint32(c.raw[len(c.raw)-4:], v)
	return nil
}

// ComputeCRC returns the IEEE CRC-32 of the chunk's type and data bytes,
// independent of what is currently stored in the CRC field.
func (c *Chunk) ComputeCRC() uint32 {
	return crc32(c.raw[4 : len(c.raw)-4])
}

// UpdateCRC sets the stored CRC to ComputeCRC().
func (c *Chunk) UpdateCRC() error {
	if err := c.checkEdit(); err != nil {
		return err
	}
	putUint32(c.raw[len(c.raw)-4:], c.ComputeCRC())
	return nil
}

// CheckCRC reports whether the stored CRC matches ComputeCRC(). It never
// rewrites anything.
func (c *Chunk) CheckCRC() bool { return c.CRC() == c.ComputeCRC() }

// IsCritical reports whether a conforming decoder unable to interpret this
// chunk must treat that as an error: true iff bit 5 of the first type byte
// is clear (an uppercase first letter).
func (c *Chunk) IsCritical() bool { return c.raw[4]&0x20 == 0 }

// IsAncillary is the complement of IsCritical.
func (c *Chunk) IsAncillary() bool { return !c.IsCritical() }

// IsSupported reports whether a Handler is registered for this chunk's
// type.
func (c *Chunk) IsSupported() bool { return IsRegisteredType(c.Type()) }

func (c *Chunk) handler() (Handler, error) { return HandlerFor(c.Type()) }

// IsValid reports whether the chunk's length and payload satisfy its
// type's handler. It never consults the CRC; use CheckCRC for that.
func (c *Chunk) IsValid() (bool, error) {
	h, err := c.handler()
	if err != nil {
		return false, err
	}
	if !h.IsLengthValid(c) {
		return false, nil
	}
	return h.ValidatePayload(c), nil
}

// Get reads a single named field from the chunk's payload using the
// registered handler for its type. ihdr is read only by tRNS, whose layout
// depends on the color type (with nil, tRNS exposes just its raw data);
// every other type ignores it, so pass nil.
func (c *Chunk) Get(key Key, ihdr *IHDRInfo) (interface{}, error) {
	h, err := c.handler()
	if err != nil {
		return nil, err
	}
	return h.Get(c, key, ihdr)
}

// Set writes a single named field into the chunk's payload.
func (c *Chunk) Set(key Key, value interface{}, ihdr *IHDRInfo) error {
	if err := c.checkEdit(); err != nil {
		return err
	}
	h, err := c.handler()
	if err != nil {
		return err
	}
	return h.Set(c, key, value, ihdr)
}

// GetAll returns every named field the handler for this chunk's type
// exposes.
func (c *Chunk) GetAll(ihdr *IHDRInfo) (map[Key]interface{}, error) {
	h, err := c.handler()
	if err != nil {
		return nil, err
	}
	return h.GetAll(c, ihdr)
}

// GetPayload is an alias for GetAll, named to match the external surface
// enumerated for this library.
func (c *Chunk) GetPayload(ihdr *IHDRInfo) (map[Key]interface{}, error) {
	return c.GetAll(ihdr)
}

func isASCIILetters(v string) bool {
	for i := 0; i < len(v); i++ {
		if !isASCIILetter(v[i]) {
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isASCIILetterBytes(b []byte) bool {
	for _, v := range b {
		if !isASCIILetter(v) {
			return false
		}
	}
	return true
}
