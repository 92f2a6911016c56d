package pngforensic

import (
	"bytes"
	"testing"
)

func TestEmptyConstruction(t *testing.T) {
	p, err := CreateEmptyPng()
	if err != nil {
		t.Fatalf("CreateEmptyPng: %v", err)
	}
	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !ReadPNGSignature(b) {
		t.Fatalf("empty png does not start with the signature")
	}
	chunks, err := p.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	types := []string{chunks[0].Type(), chunks[1].Type(), chunks[2].Type()}
	want := []string{"IHDR", "IDAT", "IEND"}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("chunk %d type = %s, want %s", i, types[i], want[i])
		}
	}
	for _, c := range chunks {
		if !c.CheckCRC() {
			t.Errorf("%s has an invalid CRC", c.Type())
		}
	}
	width, err := p.Width()
	if err != nil || width != 1 {
		t.Errorf("width = %v, %v, want 1", width, err)
	}
	height, err := p.Height()
	if err != nil || height != 1 {
		t.Errorf("height = %v, %v, want 1", height, err)
	}
}

func TestSignatureGate(t *testing.T) {
	if _, err := FromBytes([]byte("not a png, but long enough"), false); !Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
	p, err := FromBytes([]byte("not a png, but long enough"), true)
	if err != nil {
		t.Fatalf("ignoreSignature=true should still construct a Png: %v", err)
	}
	if _, err := p.Chunks(); !Is(err, ErrMalformedFraming) {
		t.Fatalf("expected chunk parsing to fail on bogus bytes with ErrMalformedFraming, got %v", err)
	}
}

func TestByteRoundTripCleanFile(t *testing.T) {
	p, err := CreateEmptyPng()
	if err != nil {
		t.Fatalf("CreateEmptyPng: %v", err)
	}
	original, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	reparsed, err := FromBytes(original, false)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	roundTripped, err := reparsed.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(original, roundTripped) {
		t.Errorf("clean round trip changed the bytes")
	}
}

func TestTrailerPreservation(t *testing.T) {
	p, err := CreateEmptyPng()
	if err != nil {
		t.Fatalf("CreateEmptyPng: %v", err)
	}
	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	trailer := []byte("hidden message after IEND")
	b = append(b, trailer...)

	reparsed, err := FromBytes(b, false)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	got, err := reparsed.ExtraData()
	if err != nil {
		t.Fatalf("ExtraData: %v", err)
	}
	if !bytes.Equal(got, trailer) {
		t.Errorf("ExtraData = %q, want %q", got, trailer)
	}
	out, err := reparsed.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.HasSuffix(out, trailer) {
		t.Errorf("serialized bytes do not end with the trailer")
	}
}

func TestUnknownChunkPreservation(t *testing.T) {
	p, err := CreateEmptyPng()
	if err != nil {
		t.Fatalf("CreateEmptyPng: %v", err)
	}
	weird, err := NewChunk("qqXx", true)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if err := weird.SetData([]byte("mystery payload")); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if err := p.AddChunk(weird); err != nil {
		t.Fatalf("AddChunk: %v", err)
	}
	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	reparsed, err := FromBytes(b, false)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	out, err := reparsed.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(b, out) {
		t.Errorf("unknown chunk did not round-trip byte-exactly")
	}
}

func TestAddChunkDefaultPolicy(t *testing.T) {
	p, err := CreateEmptyPng()
	if err != nil {
		t.Fatalf("CreateEmptyPng: %v", err)
	}
	text, err := NewChunk("tEXt", false)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if err := p.AddChunk(text); err != nil {
		t.Fatalf("AddChunk: %v", err)
	}
	chunks, err := p.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if chunks[len(chunks)-1].Type() != "IEND" {
		t.Errorf("IEND should remain last after inserting an ancillary chunk")
	}
	if chunks[len(chunks)-2].Type() != "tEXt" {
		t.Errorf("tEXt should land immediately before IEND, got %s", chunks[len(chunks)-2].Type())
	}
}

func TestAddressOf(t *testing.T) {
	p, err := CreateEmptyPng()
	if err != nil {
		t.Fatalf("CreateEmptyPng: %v", err)
	}
	chunks, err := p.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	addr, err := p.AddressOf(chunks[1])
	if err != nil {
		t.Fatalf("AddressOf: %v", err)
	}
	want := 8 + len(chunks[0].Bytes())
	if addr != want {
		t.Errorf("AddressOf(IDAT) = %d, want %d", addr, want)
	}
}

func TestIndexedPixel(t *testing.T) {
	p, err := Empty()
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	if err := p.SetSize(1, 1); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	chunks, _ := p.Chunks()
	if err := chunks[0].Set(KeyColorTypeCode, uint8(3), nil); err != nil {
		t.Fatalf("Set(colortype_code): %v", err)
	}
	if err := chunks[0].Set(KeyBitDepth, uint8(8), nil); err != nil {
		t.Fatalf("Set(bit_depth): %v", err)
	}

	plte, err := NewChunk("PLTE", true)
	if err != nil {
		t.Fatalf("NewChunk(PLTE): %v", err)
	}
	if err := plte.Set(KeyEntries, []RGB{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}, nil); err != nil {
		t.Fatalf("Set(entries): %v", err)
	}
	if err := p.AddChunk(plte, 1); err != nil {
		t.Fatalf("AddChunk(PLTE): %v", err)
	}

	// One row, filter type 0 (None), one pixel whose index is 2 (blue).
	if err := p.SetImageData([]byte{0, 2}); err != nil {
		t.Fatalf("SetImageData: %v", err)
	}

	px, err := p.GetPixel(0, 0)
	if err != nil {
		t.Fatalf("GetPixel: %v", err)
	}
	want := Pixel{0, 0, 255}
	if !bytes.Equal(px, want) {
		t.Errorf("GetPixel(0,0) = %v, want %v", px, want)
	}
}

func TestPixelIdempotence(t *testing.T) {
	p, err := Empty()
	if err != nil {
		t.Fatalf("Empty: %v", err)
	}
	chunks, err := p.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if err := chunks[0].Set(KeyBitDepth, uint8(8), nil); err != nil {
		t.Fatalf("Set(bit_depth): %v", err)
	}
	if err := p.SetImageData([]byte{0, 128}); err != nil {
		t.Fatalf("SetImageData: %v", err)
	}
	before, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if _, err := p.GetPixel(0, 0); err != nil {
		t.Fatalf("GetPixel: %v", err)
	}
	after, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("reading a pixel mutated the container's bytes")
	}
}
