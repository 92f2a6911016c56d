package pngforensic

import "github.com/pkg/errors"

// Kind classifies the failure modes the core can raise, mirroring the
// distinct exception types of the original implementation this library was
// ported from. A single error type keyed by Kind lets callers branch on
// errors.As without a type switch over a dozen struct types.
type Kind int

const (
	// ErrMissingSignature is returned when bytes not starting with the PNG
	// signature are parsed without ignoreSignature set.
	ErrMissingSignature Kind = iota
	// ErrMalformedFraming is returned when a chunk's declared length runs
	// past the end of the available bytes.
	ErrMalformedFraming
	// ErrMalformedType is returned when a chunk's type field is not four
	// ASCII bytes.
	ErrMalformedType
	// ErrInvalidChunkStructure is returned when a chunk's payload violates
	// its type's structural invariants (bad separator count, bad length
	// class, mismatched bit depth, and so on).
	ErrInvalidChunkStructure
	// ErrUnsupportedChunk is returned when a get/set/validate operation
	// needs a handler for a chunk type that isn't registered.
	ErrUnsupportedChunk
	// ErrUnsupportedCompression is returned for a non-zero compression
	// method in zTXt, iTXt or iCCP.
	ErrUnsupportedCompression
	// ErrUnsupportedFilter is returned for a scanline filter byte outside
	// 0..4.
	ErrUnsupportedFilter
	// ErrMissingIHDR is returned when an IHDR-derived property is read from
	// a container whose first chunk isn't IHDR.
	ErrMissingIHDR
	// ErrMissingPLTE is returned when an indexed-color pixel is resolved
	// without a PLTE chunk present.
	ErrMissingPLTE
	// ErrNotFound is returned when a chunk identity isn't present in the
	// container.
	ErrNotFound
	// ErrOutOfRange is returned for an out-of-bounds pixel coordinate or
	// palette index.
	ErrOutOfRange
	// ErrTypeError is returned for a setter argument of the wrong domain
	// type.
	ErrTypeError
	// ErrValueError is returned for a setter argument of the right type but
	// an invalid value (wrong length, bad domain).
	ErrValueError
	// ErrReadOnly is returned when a mutator is called on a value created
	// with edit=false.
	ErrReadOnly
	// ErrUnimplemented is returned for interlaced images, non-8-bit pixel
	// decoding, and other acknowledged gaps.
	ErrUnimplemented
)

func (k Kind) String() string {
	switch k {
	case ErrMissingSignature:
		return "missing signature"
	case ErrMalformedFraming:
		return "malformed framing"
	case ErrMalformedType:
		return "malformed type"
	case ErrInvalidChunkStructure:
		return "invalid chunk structure"
	case ErrUnsupportedChunk:
		return "unsupported chunk"
	case ErrUnsupportedCompression:
		return "unsupported compression method"
	case ErrUnsupportedFilter:
		return "unsupported filter type"
	case ErrMissingIHDR:
		return "missing IHDR"
	case ErrMissingPLTE:
		return "missing PLTE"
	case ErrNotFound:
		return "not found"
	case ErrOutOfRange:
		return "out of range"
	case ErrTypeError:
		return "type error"
	case ErrValueError:
		return "value error"
	case ErrReadOnly:
		return "read-only"
	case ErrUnimplemented:
		return "unimplemented"
	default:
		return "unknown error"
	}
}

// Error is the error type every exported operation in this package fails
// with. Its Kind can be compared with errors.As, e.g.:
//
//	var perr *pngforensic.Error
//	if errors.As(err, &perr) && perr.Kind == pngforensic.ErrReadOnly { ... }
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func newErr(kind Kind, msg string) error {
	return errors.WithStack(&Error{Kind: kind, Msg: msg})
}

// Is reports whether err is a *Error of the given Kind, unwrapping through
// any github.com/pkg/errors stack-trace wrapper.
func Is(err error, kind Kind) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind == kind
	}
	return false
}
