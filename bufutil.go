package pngforensic

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/binary"
	"hash/adler32"
	"io"
)

var byteOrder = binary.BigEndian

func getUint32(b []byte) uint32     { return byteOrder.Uint32(b) }
func putUint32(b []byte, v uint32)  { byteOrder.PutUint32(b, v) }
func getUint16(b []byte) uint16     { return byteOrder.Uint16(b) }
func putUint16(b []byte, v uint16)  { byteOrder.PutUint16(b, v) }

// asOwned returns an owned copy of a possibly-borrowed byte slice, so later
// mutation of the caller's slice can't reach back into chunk state.
func asOwned(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// paeth implements the PNG Paeth predictor. Ties prefer a, then b, then c.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// zlibWindowBits picks the smallest deflate window (expressed as log2 of
// the window size) that still covers data of the given length, per the PNG
// specification's recommendation that encoders round up to a power of two
// (minimum 256 bytes) for payloads of 16384 bytes or fewer. Larger payloads
// get the full 32K window.
func zlibWindowBits(n int) int {
	if n > 16384 {
		return 15
	}
	bits := 8
	p := 256
	for n > p {
		bits++
		p <<= 1
	}
	return bits
}

func zlibHeader(windowBits int) [2]byte {
	cmf := byte(((windowBits - 8) << 4) | 8)
	flg := byte((31 - (int(cmf)*256)%31) % 31)
	return [2]byte{cmf, flg}
}

// deflateCompress produces a zlib datastream, choosing a small-window
// header for short payloads as described on zlibWindowBits. The PNG
// encoder has to pick one deflate window up front, so this always runs the
// whole payload through a single flate.Writer rather than chunking it.
func deflateCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	hdr := zlibHeader(zlibWindowBits(len(data)))
	buf.Write(hdr[:])

	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], adler32.Checksum(data))
	buf.Write(trailer[:])
	return buf.Bytes(), nil
}

// deflateDecompress inflates a zlib datastream in full. The PNG core never
// holds a long-lived decompressor: the whole datastream is concatenated
// from IDAT chunks up front, so there is nothing to stream incrementally.
func deflateDecompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
