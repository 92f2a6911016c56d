package pngforensic

import (
	"bytes"
	"os"
)

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// ReadPNGSignature reports whether b begins with the 8-byte PNG magic
// sequence.
func ReadPNGSignature(b []byte) bool {
	return len(b) >= 8 && bytes.Equal(b[:8], pngSignature[:])
}

// Png owns a PNG's signature bytes, its ordered chunk list, and a trailer
// blob capturing anything a conforming decoder would see after IEND and
// discard. It parses lazily: the constructor only validates (or skips
// validating) the signature, and the chunk stream is walked on first access
// to chunks, extra data, or anything that needs either.
type Png struct {
	raw    []byte
	parsed bool
	edit   bool

	signature [8]byte
	chunks    []*Chunk
	trailer   []byte

	scanlines      []*Scanline
	scanlinesValid bool
}

// FromBytes parses b as a PNG. Unless ignoreSignature is set, bytes not
// starting with the PNG signature fail with ErrMissingSignature. With
// ignoreSignature set, the first 8 bytes are still consumed as a
// (possibly bogus) signature and chunk parsing resumes from byte 8
// regardless of what they contain.
func FromBytes(b []byte, ignoreSignature bool) (*Png, error) {
	if len(b) < 8 {
		return nil, newErr(ErrMalformedFraming, "fewer than 8 bytes: no room for a signature")
	}
	if !ignoreSignature && !ReadPNGSignature(b) {
		return nil, newErr(ErrMissingSignature, "input does not begin with the PNG signature")
	}
	return &Png{raw: asOwned(b), edit: true}, nil
}

// Open reads path and parses it as a PNG.
func Open(path string, ignoreSignature bool) (*Png, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(b, ignoreSignature)
}

// Empty synthesizes a minimal valid PNG: signature, a seeded 1x1 IHDR, an
// empty IDAT, and IEND.
func Empty() (*Png, error) {
	p := &Png{edit: true, parsed: true, signature: pngSignature}
	ihdr, err := NewChunk("IHDR", false)
	if err != nil {
		return nil, err
	}
	idat, err := NewChunk("IDAT", true)
	if err != nil {
		return nil, err
	}
	iend, err := NewChunk("IEND", true)
	if err != nil {
		return nil, err
	}
	p.chunks = []*Chunk{ihdr, idat, iend}
	return p, nil
}

// CreateEmptyPng is Empty, named to match the library's enumerated
// external surface.
func CreateEmptyPng() (*Png, error) { return Empty() }

// CreateEmptyChunk is NewChunk, named to match the library's enumerated
// external surface.
func CreateEmptyChunk(chunkType string, reallyEmpty bool) (*Chunk, error) {
	return NewChunk(chunkType, reallyEmpty)
}

func (p *Png) ensureParsed() error {
	if p.parsed {
		return nil
	}
	if len(p.raw) < 8 {
		return newErr(ErrMalformedFraming, "fewer than 8 bytes: no room for a signature")
	}
	copy(p.signature[:], p.raw[:8])

	offset := 8
	var chunks []*Chunk
	for {
		if offset+8 > len(p.raw) {
			return newErr(ErrMalformedFraming, "truncated chunk header")
		}
		length := getUint32(p.raw[offset : offset+4])
		end := offset + 12 + int(length)
		if end < offset+12 || end > len(p.raw) {
			return newErr(ErrMalformedFraming, "declared chunk length runs past the end of the buffer")
		}
		typeBytes := p.raw[offset+4 : offset+8]
		if !isASCIILetterBytes(typeBytes) {
			return newErr(ErrMalformedType, "chunk type is not 4 ASCII letters")
		}
		c, err := newChunkFromBytesWith(p.raw[offset:end], p.edit, true)
		if err != nil {
			return err
		}
		chunks = append(chunks, c)
		offset = end
		if string(typeBytes) == "IEND" {
			break
		}
	}
	p.chunks = chunks
	p.trailer = asOwned(p.raw[offset:])
	p.parsed = true
	return nil
}

// Chunks returns the container's chunks in file order.
func (p *Png) Chunks() ([]*Chunk, error) {
	if err := p.ensureParsed(); err != nil {
		return nil, err
	}
	return p.chunks, nil
}

// Bytes serializes the container back to its on-disk form: signature,
// every chunk's bytes in order, then the trailer.
func (p *Png) Bytes() ([]byte, error) {
	if err := p.ensureParsed(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(p.signature[:])
	for _, c := range p.chunks {
		buf.Write(c.Bytes())
	}
	buf.Write(p.trailer)
	return buf.Bytes(), nil
}

// Save writes Bytes() to path, overwriting any existing file.
func (p *Png) Save(path string) error {
	b, err := p.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Copy returns an independent deep copy: edits to one do not affect the
// other.
func (p *Png) Copy() (*Png, error) {
	b, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	cp, err := FromBytes(b, true)
	if err != nil {
		return nil, err
	}
	cp.edit = p.edit
	return cp, nil
}

// Reset discards any parsed/edited state and re-parses from the original
// bytes the container was constructed from.
func (p *Png) Reset() error {
	if p.raw == nil {
		return newErr(ErrValueError, "Reset has nothing to re-parse: this Png was not constructed from bytes")
	}
	p.parsed = false
	p.chunks = nil
	p.trailer = nil
	p.scanlinesValid = false
	p.scanlines = nil
	return p.ensureParsed()
}

func (p *Png) invalidateScanlines() {
	p.scanlinesValid = false
	p.scanlines = nil
}

// AddChunk inserts c. With no index given, the default policy is: IHDR
// goes to index 0, IEND goes to the end, anything else goes immediately
// before the current last chunk (the presumed IEND). No structural
// validation is performed.
func (p *Png) AddChunk(c *Chunk, index ...int) error {
	if err := p.ensureParsed(); err != nil {
		return err
	}
	if !p.edit {
		return newErr(ErrReadOnly, "container was constructed read-only")
	}
	pos := len(p.chunks)
	if len(index) > 0 {
		pos = index[0]
		if pos < 0 || pos > len(p.chunks) {
			return newErr(ErrOutOfRange, "chunk index out of range")
		}
	} else {
		switch c.Type() {
		case "IHDR":
			pos = 0
		case "IEND":
			pos = len(p.chunks)
		default:
			pos = len(p.chunks)
			if pos > 0 {
				pos--
			}
		}
	}
	p.chunks = append(p.chunks, nil)
	copy(p.chunks[pos+1:], p.chunks[pos:])
	p.chunks[pos] = c
	p.invalidateScanlines()
	return nil
}

// RemoveChunk removes c by identity. ErrNotFound if it isn't present.
func (p *Png) RemoveChunk(c *Chunk) error {
	idx, err := p.IndexOf(c)
	if err != nil {
		return err
	}
	p.chunks = append(p.chunks[:idx], p.chunks[idx+1:]...)
	p.invalidateScanlines()
	return nil
}

// IndexOf returns c's position by identity. ErrNotFound if it isn't
// present.
func (p *Png) IndexOf(c *Chunk) (int, error) {
	if err := p.ensureParsed(); err != nil {
		return 0, err
	}
	for i, cur := range p.chunks {
		if cur == c {
			return i, nil
		}
	}
	return 0, newErr(ErrNotFound, "chunk is not in this container")
}

// AddressOf returns c's cumulative byte offset from the start of the file,
// counting the 8-byte signature plus every preceding chunk's full length.
func (p *Png) AddressOf(c *Chunk) (int, error) {
	idx, err := p.IndexOf(c)
	if err != nil {
		return 0, err
	}
	offset := 8
	for _, cur := range p.chunks[:idx] {
		offset += len(cur.Bytes())
	}
	return offset, nil
}

// ByType returns every chunk whose type exactly matches t, in file order.
func (p *Png) ByType(t string) ([]*Chunk, error) {
	if err := p.ensureParsed(); err != nil {
		return nil, err
	}
	var out []*Chunk
	for _, c := range p.chunks {
		if c.Type() == t {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Png) firstIHDR() (*Chunk, error) {
	if err := p.ensureParsed(); err != nil {
		return nil, err
	}
	if len(p.chunks) == 0 || p.chunks[0].Type() != "IHDR" {
		return nil, newErr(ErrMissingIHDR, "first chunk is not IHDR")
	}
	return p.chunks[0], nil
}

func (p *Png) ihdrInfo() (*IHDRInfo, error) {
	ihdr, err := p.firstIHDR()
	if err != nil {
		return nil, err
	}
	width, err := ihdr.Get(KeyWidth, nil)
	if err != nil {
		return nil, err
	}
	height, err := ihdr.Get(KeyHeight, nil)
	if err != nil {
		return nil, err
	}
	bitDepth, err := ihdr.Get(KeyBitDepth, nil)
	if err != nil {
		return nil, err
	}
	colorType, err := ihdr.Get(KeyColorTypeCode, nil)
	if err != nil {
		return nil, err
	}
	return &IHDRInfo{
		Width:     width.(uint32),
		Height:    height.(uint32),
		BitDepth:  bitDepth.(uint8),
		ColorType: colorType.(uint8),
	}, nil
}

// Width returns the image width from the first chunk's IHDR, or
// ErrMissingIHDR if the first chunk isn't IHDR.
func (p *Png) Width() (uint32, error) {
	ihdr, err := p.ihdrInfo()
	if err != nil {
		return 0, err
	}
	return ihdr.Width, nil
}

// Height mirrors Width.
func (p *Png) Height() (uint32, error) {
	ihdr, err := p.ihdrInfo()
	if err != nil {
		return 0, err
	}
	return ihdr.Height, nil
}

// Size returns (width, height).
func (p *Png) Size() (uint32, uint32, error) {
	ihdr, err := p.ihdrInfo()
	if err != nil {
		return 0, 0, err
	}
	return ihdr.Width, ihdr.Height, nil
}

// SetSize rewrites the IHDR width and height fields.
func (p *Png) SetSize(width, height uint32) error {
	ihdr, err := p.firstIHDR()
	if err != nil {
		return err
	}
	if err := ihdr.Set(KeyWidth, width, nil); err != nil {
		return err
	}
	if err := ihdr.Set(KeyHeight, height, nil); err != nil {
		return err
	}
	p.invalidateScanlines()
	return nil
}

// ExtraData returns the trailer: any bytes found after the IEND chunk when
// this container was parsed.
func (p *Png) ExtraData() ([]byte, error) {
	if err := p.ensureParsed(); err != nil {
		return nil, err
	}
	return asOwned(p.trailer), nil
}

// SetExtraData overwrites the trailer.
func (p *Png) SetExtraData(d []byte) error {
	if err := p.ensureParsed(); err != nil {
		return err
	}
	if !p.edit {
		return newErr(ErrReadOnly, "container was constructed read-only")
	}
	p.trailer = asOwned(d)
	return nil
}

// Datastream concatenates every IDAT chunk's payload in order.
func (p *Png) Datastream() ([]byte, error) {
	idats, err := p.ByType("IDAT")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, c := range idats {
		buf.Write(c.Data())
	}
	return buf.Bytes(), nil
}

// ImageData inflates Datastream.
func (p *Png) ImageData() ([]byte, error) {
	ds, err := p.Datastream()
	if err != nil {
		return nil, err
	}
	return deflateDecompress(ds)
}

// SetImageData deflates d, then refills the existing IDAT chunks in order
// preserving each one's current length, spilling any remainder into a
// freshly inserted IDAT placed immediately after the last existing one.
// This keeps the on-disk IDAT count and layout stable whenever the new
// stream fits; callers wanting a single IDAT must remove the extras first.
func (p *Png) SetImageData(d []byte) error {
	idats, err := p.ByType("IDAT")
	if err != nil {
		return err
	}
	compressed, err := deflateCompress(d)
	if err != nil {
		return err
	}

	rest := compressed
	for _, c := range idats {
		n := len(c.Data())
		if n > len(rest) {
			n = len(rest)
		}
		if err := c.SetData(rest[:n]); err != nil {
			return err
		}
		rest = rest[n:]
	}
	if len(rest) > 0 {
		extra, err := NewChunk("IDAT", true)
		if err != nil {
			return err
		}
		if err := extra.SetData(rest); err != nil {
			return err
		}
		if len(idats) > 0 {
			last, err := p.IndexOf(idats[len(idats)-1])
			if err != nil {
				return err
			}
			if err := p.AddChunk(extra, last+1); err != nil {
				return err
			}
		} else if err := p.AddChunk(extra); err != nil {
			return err
		}
	}
	p.invalidateScanlines()
	return nil
}

// Scanlines decodes ImageData into per-row filter state, caching the
// result until the next SetImageData, AddChunk, RemoveChunk or SetSize.
// Interlaced images fail here with ErrUnimplemented. Rows are segmented as
// width × ceil(channels × depth / 8) bytes plus the filter byte (depth
// counted as 8 for indexed colour), and filter inversion runs at any bit
// depth; decoding pixels from a row needs bit depth 8 and otherwise fails
// with ErrUnimplemented.
func (p *Png) Scanlines() ([]*Scanline, error) {
	if p.scanlinesValid {
		return p.scanlines, nil
	}
	ihdr, err := p.ihdrInfo()
	if err != nil {
		return nil, err
	}
	interlace, err := p.chunks[0].Get(KeyInterlace, nil)
	if err != nil {
		return nil, err
	}
	if interlace.(uint8) != 0 {
		return nil, newErr(ErrUnimplemented, "interlaced (Adam7) images are not decoded")
	}

	channelCount, err := channelCountForColorType(ihdr.ColorType)
	if err != nil {
		return nil, err
	}
	effectiveDepth := ihdr.BitDepth
	if ihdr.ColorType == 3 {
		effectiveDepth = 8
	}
	stride := ceilDiv(channelCount*int(effectiveDepth), 8)
	rowBytes := int(ihdr.Width)*stride + 1

	raw, err := p.ImageData()
	if err != nil {
		return nil, err
	}

	var rows []*Scanline
	var prev *Scanline
	for off := 0; off+rowBytes <= len(raw); off += rowBytes {
		row := raw[off : off+rowBytes]
		sl := newScanline(channelCount, ihdr.BitDepth, stride, row[0], row[1:], prev)
		rows = append(rows, sl)
		prev = sl
	}
	p.scanlines = rows
	p.scanlinesValid = true
	return rows, nil
}

// GetPixel returns the pixel at (x, y), bounds-checked against the IHDR
// size. Indexed-color images (color type 3) are resolved through PLTE;
// single-channel non-indexed images are unwrapped to a bare Pixel of
// length 1 (matching IHDR's channel count), not a further scalar type.
func (p *Png) GetPixel(x, y int) (Pixel, error) {
	ihdr, err := p.ihdrInfo()
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || uint32(x) >= ihdr.Width || uint32(y) >= ihdr.Height {
		return nil, newErr(ErrOutOfRange, "pixel coordinate outside image bounds")
	}
	rows, err := p.Scanlines()
	if err != nil {
		return nil, err
	}
	if y >= len(rows) {
		return nil, newErr(ErrOutOfRange, "fewer decoded rows than the declared height")
	}
	px, err := rows[y].Pixels()
	if err != nil {
		return nil, err
	}
	if x >= len(px) {
		return nil, newErr(ErrOutOfRange, "fewer decoded pixels than the declared width")
	}
	pixel := px[x]

	if ihdr.ColorType == 3 {
		plates, err := p.ByType("PLTE")
		if err != nil {
			return nil, err
		}
		if len(plates) == 0 {
			return nil, newErr(ErrMissingPLTE, "indexed-color image has no PLTE chunk")
		}
		entries, err := plteEntries(plates[0].Data())
		if err != nil {
			return nil, err
		}
		idx := int(pixel[0])
		if idx < 0 || idx >= len(entries) {
			return nil, newErr(ErrOutOfRange, "palette index out of range")
		}
		e := entries[idx]
		return Pixel{e.R, e.G, e.B}, nil
	}
	return pixel, nil
}
