package pngforensic

import (
	"bytes"
	"testing"
)

func TestPaeth(t *testing.T) {
	cases := []struct {
		a, b, c, want byte
	}{
		{0, 0, 0, 0},
		{10, 20, 15, 15},
		{200, 100, 150, 150},
		{255, 0, 0, 255},
	}
	for _, tc := range cases {
		if got := paeth(tc.a, tc.b, tc.c); got != tc.want {
			t.Errorf("paeth(%d,%d,%d) = %d, want %d", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}

func TestZlibWindowBits(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 8},
		{256, 8},
		{257, 9},
		{16384, 14},
		{16385, 15},
		{100000, 15},
	}
	for _, tc := range cases {
		if got := zlibWindowBits(tc.n); got != tc.want {
			t.Errorf("zlibWindowBits(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestDeflateRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("hello, world"),
		bytes.Repeat([]byte{0xab}, 20000),
	}
	for _, p := range payloads {
		comp, err := deflateCompress(p)
		if err != nil {
			t.Fatalf("deflateCompress: %v", err)
		}
		out, err := deflateDecompress(comp)
		if err != nil {
			t.Fatalf("deflateDecompress: %v", err)
		}
		if !bytes.Equal(out, p) {
			t.Errorf("round trip mismatch: got %v, want %v", out, p)
		}
	}
}

func TestAsOwnedIsIndependent(t *testing.T) {
	src := []byte{1, 2, 3}
	owned := asOwned(src)
	src[0] = 9
	if owned[0] != 1 {
		t.Errorf("asOwned slice was mutated through the source: %v", owned)
	}
}
