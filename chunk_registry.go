package pngforensic

// Key names a typed field inside a chunk's payload, as understood by the
// handler registered for that chunk's type. The registry is a table of
// Handler implementations rather than a class hierarchy, but every
// accessor still goes through Key rather than a raw string so a typo
// surfaces as an unknown-identifier compile error, not a runtime KeyError.
type Key string

const (
	KeySize            Key = "size"
	KeyWidth           Key = "width"
	KeyHeight          Key = "height"
	KeyBitDepth        Key = "bit_depth"
	KeyColorTypeCode   Key = "colortype_code"
	KeyColorTypeName   Key = "colortype_name"
	KeyColorTypeDepth  Key = "colortype_depth"
	KeyChannelCount    Key = "channel_count"
	KeyCompression     Key = "compression"
	KeyFilterMethod    Key = "filter_method"
	KeyInterlace       Key = "interlace"

	KeyEntries Key = "entries"
	KeyCount   Key = "count"

	KeyData Key = "data"

	KeyKeyword           Key = "keyword"
	KeyText              Key = "text"
	KeyCompressionMethod Key = "compression_method"
	KeyCompressionFlag   Key = "compression_flag"
	KeyLanguageTag       Key = "language_tag"
	KeyTranslatedKeyword Key = "translated_keyword"

	KeyRenderingIntentCode Key = "rendering_intent_code"
	KeyRenderingIntentName Key = "rendering_intent_name"

	KeyGamma Key = "gamma"

	KeyWhiteX Key = "white_x"
	KeyWhiteY Key = "white_y"
	KeyRedX   Key = "red_x"
	KeyRedY   Key = "red_y"
	KeyGreenX Key = "green_x"
	KeyGreenY Key = "green_y"
	KeyBlueX  Key = "blue_x"
	KeyBlueY  Key = "blue_y"

	KeyPPUX Key = "ppu_x"
	KeyPPUY Key = "ppu_y"
	KeyUnit Key = "unit"
	KeyDPI  Key = "dpi"

	KeyYear   Key = "year"
	KeyMonth  Key = "month"
	KeyDay    Key = "day"
	KeyHour   Key = "hour"
	KeyMinute Key = "minute"
	KeySecond Key = "second"

	KeyPaletteIndex Key = "palette_index"
	KeyGray         Key = "gray"
	KeyRed          Key = "red"
	KeyGreen        Key = "green"
	KeyBlue         Key = "blue"
	KeyAlpha        Key = "alpha"

	KeyPaletteName Key = "palette_name"
	KeySampleDepth Key = "sample_depth"

	KeyValues Key = "values"

	KeyProfileName Key = "profile_name"
	KeyProfile     Key = "profile"
)

// IHDRInfo carries the handful of IHDR fields that tRNS needs to interpret
// its payload, passed explicitly by the caller rather than
// threaded through a Chunk<->Png back-reference (see DESIGN.md).
type IHDRInfo struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType uint8
}

// LengthSpec describes the payload lengths a chunk type accepts: either an
// enumerated set (fixed length is the one-element case) or a [Min,Max]
// range, with Max<0 meaning unbounded.
type LengthSpec struct {
	Lengths []int
	Min     int
	Max     int
}

func fixedLength(n int) LengthSpec      { return LengthSpec{Lengths: []int{n}} }
func enumLength(ns ...int) LengthSpec   { return LengthSpec{Lengths: ns} }
func rangeLength(min, max int) LengthSpec { return LengthSpec{Min: min, Max: max} }
func minLength(min int) LengthSpec      { return LengthSpec{Min: min, Max: -1} }

func (ls LengthSpec) valid(n int) bool {
	if ls.Lengths != nil {
		for _, l := range ls.Lengths {
			if l == n {
				return true
			}
		}
		return false
	}
	if n < ls.Min {
		return false
	}
	if ls.Max >= 0 && n > ls.Max {
		return false
	}
	return true
}

// Handler is the per-type descriptor the registry dispatches to: fixed or
// bounded length, an "empty but valid" payload seed, a payload validator,
// and a string-keyed (well, Key-keyed) get-all/get/set codec over the
// chunk's data bytes. tRNS additionally uses IHDR context, which every
// Handler therefore accepts and the others simply ignore.
type Handler interface {
	Type() string
	LengthSpec() LengthSpec
	EmptySeed() []byte
	IsLengthValid(c *Chunk) bool
	ValidatePayload(c *Chunk) bool
	GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error)
	Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error)
	Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error
}

// baseHandler supplies the defaults every concrete handler needs: the
// length bookkeeping almost never varies per-type, and "no such field" is
// the right answer for any key a handler doesn't explicitly recognize.
type baseHandler struct {
	typ  string
	spec LengthSpec
	seed []byte
}

func (b *baseHandler) Type() string          { return b.typ }
func (b *baseHandler) LengthSpec() LengthSpec { return b.spec }
func (b *baseHandler) EmptySeed() []byte     { return asOwned(b.seed) }

func (b *baseHandler) IsLengthValid(c *Chunk) bool {
	return b.spec.valid(len(c.Data()))
}

// ValidatePayload's default matches a chunk with no payload fields of its
// own (IEND): valid iff the data is empty.
func (b *baseHandler) ValidatePayload(c *Chunk) bool {
	return len(c.Data()) == 0
}

func (b *baseHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	return map[Key]interface{}{}, nil
}

func (b *baseHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	return nil, newErr(ErrValueError, "no such field: "+string(key))
}

func (b *baseHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	return newErr(ErrValueError, "no such field: "+string(key))
}

var registry = map[string]Handler{}

func register(h Handler) {
	registry[h.Type()] = h
}

// HandlerFor returns the registered Handler for a 4-character chunk type,
// or ErrUnsupportedChunk if none is registered.
func HandlerFor(chunkType string) (Handler, error) {
	h, ok := registry[chunkType]
	if !ok {
		return nil, newErr(ErrUnsupportedChunk, chunkType)
	}
	return h, nil
}

// IsRegisteredType reports whether a 4-character chunk type has a
// registered Handler.
func IsRegisteredType(chunkType string) bool {
	_, ok := registry[chunkType]
	return ok
}
