package pngforensic

// Authoritative names which of a Scanline's three representations currently
// holds the source of truth: the other two are cleared and lazily rebuilt
// on demand rather than tracked with independent dirty bits, which makes an
// "everything is stale" state unrepresentable.
type Authoritative int

const (
	AuthData Authoritative = iota
	AuthUnfiltered
	AuthPixels
)

// Scanline is one decoded row of the image datastream. filtered holds the
// row's bytes as they appear in (or will be written to) the datastream,
// excluding the leading filter-type byte, which is tracked separately so it
// can be changed without forcing a re-decode. previous is a non-owning
// back-reference to the prior row, needed by filter types 2 through 4.
type Scanline struct {
	channelCount int
	bitDepth     uint8
	stride       int
	filterType   uint8

	filtered   []byte
	unfiltered []byte
	pixels     []Pixel

	previous      *Scanline
	authoritative Authoritative
}

func newScanline(channelCount int, bitDepth uint8, stride int, filterType uint8, filtered []byte, previous *Scanline) *Scanline {
	return &Scanline{
		channelCount:  channelCount,
		bitDepth:      bitDepth,
		stride:        stride,
		filterType:    filterType,
		filtered:      asOwned(filtered),
		previous:      previous,
		authoritative: AuthData,
	}
}

// FilterType returns the row's filter tag (0..4), independent of which
// representation is currently authoritative.
func (s *Scanline) FilterType() uint8 { return s.filterType }

func (s *Scanline) prevUnfiltered() []byte {
	if s.previous == nil {
		return nil
	}
	u, err := s.previous.Unfiltered()
	if err != nil {
		return nil
	}
	return u
}

// Filtered returns the row's on-disk bytes (without the leading filter
// byte), deriving them from whichever representation is authoritative.
func (s *Scanline) Filtered() ([]byte, error) {
	if s.filtered != nil {
		return asOwned(s.filtered), nil
	}
	u, err := s.Unfiltered()
	if err != nil {
		return nil, err
	}
	f, err := refilterRow(u, s.filterType, s.stride, s.prevUnfiltered())
	if err != nil {
		return nil, err
	}
	s.filtered = f
	return asOwned(f), nil
}

// SetFiltered replaces the row's on-disk bytes, making Filtered
// authoritative and invalidating the derived unfiltered bytes and pixels.
func (s *Scanline) SetFiltered(f []byte) error {
	s.filtered = asOwned(f)
	s.unfiltered = nil
	s.pixels = nil
	s.authoritative = AuthData
	return nil
}

// Unfiltered returns the row's bytes with the filter transform inverted,
// deriving them from whichever representation is authoritative.
func (s *Scanline) Unfiltered() ([]byte, error) {
	if s.unfiltered != nil {
		return asOwned(s.unfiltered), nil
	}
	switch s.authoritative {
	case AuthData:
		u, err := unfilterRow(s.filtered, s.filterType, s.stride, s.prevUnfiltered())
		if err != nil {
			return nil, err
		}
		s.unfiltered = u
		return asOwned(u), nil
	case AuthPixels:
		u, err := packPixels(s.pixels, s.bitDepth)
		if err != nil {
			return nil, err
		}
		s.unfiltered = u
		return asOwned(u), nil
	default:
		return nil, newErr(ErrValueError, "scanline has no authoritative representation")
	}
}

// SetUnfiltered replaces the row's unfiltered bytes directly, making
// Unfiltered authoritative.
func (s *Scanline) SetUnfiltered(u []byte) error {
	s.unfiltered = asOwned(u)
	s.filtered = nil
	s.pixels = nil
	s.authoritative = AuthUnfiltered
	return nil
}

// SetFilterType changes the tag used when re-deriving Filtered, without
// touching pixel content: it forces the unfiltered bytes to be resolved
// first (under the old tag) so nothing is lost.
func (s *Scanline) SetFilterType(f uint8) error {
	u, err := s.Unfiltered()
	if err != nil {
		return err
	}
	s.filterType = f
	s.unfiltered = u
	s.filtered = nil
	s.authoritative = AuthUnfiltered
	return nil
}

// Pixels returns the row decoded into per-pixel tuples. Only bit depth 8 is
// supported; anything else fails with ErrUnimplemented.
func (s *Scanline) Pixels() ([]Pixel, error) {
	if s.pixels != nil {
		return clonePixels(s.pixels), nil
	}
	u, err := s.Unfiltered()
	if err != nil {
		return nil, err
	}
	px, err := unpackPixels(u, s.channelCount, s.bitDepth)
	if err != nil {
		return nil, err
	}
	s.pixels = px
	return clonePixels(px), nil
}

// SetPixels replaces the row's pixel tuples, making Pixels authoritative.
func (s *Scanline) SetPixels(px []Pixel) error {
	s.pixels = clonePixels(px)
	s.unfiltered = nil
	s.filtered = nil
	s.authoritative = AuthPixels
	return nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// unfilterRow inverts one of the five PNG scanline filters, byte by byte.
// stride is the distance back to the "left" neighbor (bytes per pixel,
// rounded up); prevUnfiltered is the previous row's unfiltered bytes, or
// nil for the first row in the image.
func unfilterRow(row []byte, filterType uint8, stride int, prevUnfiltered []byte) ([]byte, error) {
	out := make([]byte, len(row))
	for i := 0; i < len(row); i++ {
		var a, b, c byte
		if i >= stride {
			a = out[i-stride]
		}
		if prevUnfiltered != nil && i < len(prevUnfiltered) {
			b = prevUnfiltered[i]
		}
		if i >= stride && prevUnfiltered != nil && i-stride < len(prevUnfiltered) {
			c = prevUnfiltered[i-stride]
		}
		x, err := filterPredictor(filterType, a, b, c)
		if err != nil {
			return nil, err
		}
		out[i] = row[i] + x
	}
	return out, nil
}

// refilterRow is unfilterRow's inverse: given a row's unfiltered bytes, it
// re-applies the named filter.
func refilterRow(row []byte, filterType uint8, stride int, prevUnfiltered []byte) ([]byte, error) {
	out := make([]byte, len(row))
	for i := 0; i < len(row); i++ {
		var a, b, c byte
		if i >= stride {
			a = row[i-stride]
		}
		if prevUnfiltered != nil && i < len(prevUnfiltered) {
			b = prevUnfiltered[i]
		}
		if i >= stride && prevUnfiltered != nil && i-stride < len(prevUnfiltered) {
			c = prevUnfiltered[i-stride]
		}
		x, err := filterPredictor(filterType, a, b, c)
		if err != nil {
			return nil, err
		}
		out[i] = row[i] - x
	}
	return out, nil
}

func filterPredictor(filterType uint8, a, b, c byte) (byte, error) {
	switch filterType {
	case 0:
		return 0, nil
	case 1:
		return a, nil
	case 2:
		return b, nil
	case 3:
		return byte((int(a) + int(b)) / 2), nil
	case 4:
		return paeth(a, b, c), nil
	default:
		return 0, newErr(ErrUnsupportedFilter, "filter type outside 0..4")
	}
}
