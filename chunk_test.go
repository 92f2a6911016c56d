package pngforensic

import (
	"bytes"
	"testing"
)

func buildChunk(t *testing.T, typ string, data []byte) *Chunk {
	t.Helper()
	raw := make([]byte, 0, 12+len(data))
	length := make([]byte, 4)
	putUint32(length, uint32(len(data)))
	raw = append(raw, length...)
	raw = append(raw, []byte(typ)...)
	raw = append(raw, data...)
	raw = append(raw, 0, 0, 0, 0)
	c, err := NewChunkFromBytes(raw)
	if err != nil {
		t.Fatalf("NewChunkFromBytes: %v", err)
	}
	if err := c.UpdateCRC(); err != nil {
		t.Fatalf("UpdateCRC: %v", err)
	}
	return c
}

func TestChunkByteExactRoundTrip(t *testing.T) {
	c := buildChunk(t, "tEXt", []byte("Author\x00Alice"))
	c2, err := NewChunkFromBytes(c.Bytes())
	if err != nil {
		t.Fatalf("NewChunkFromBytes: %v", err)
	}
	if !bytes.Equal(c.Bytes(), c2.Bytes()) {
		t.Errorf("chunk did not round-trip byte-exactly")
	}
}

func TestChunkMalformedFraming(t *testing.T) {
	_, err := NewChunkFromBytes([]byte{0, 0, 0, 10, 'I', 'D', 'A', 'T'})
	if !Is(err, ErrMalformedFraming) {
		t.Fatalf("expected ErrMalformedFraming, got %v", err)
	}
}

func TestChunkCRCSelfConsistency(t *testing.T) {
	c := buildChunk(t, "tEXt", []byte("Author\x00Alice"))
	if !c.CheckCRC() {
		t.Fatalf("CheckCRC false after UpdateCRC")
	}
	if c.CRC() != c.ComputeCRC() {
		t.Fatalf("stored CRC does not equal ComputeCRC")
	}
}

func TestChunkReadOnlyDiscipline(t *testing.T) {
	raw := buildChunk(t, "tEXt", []byte("a\x00b")).Bytes()
	ro, err := newChunkFromBytesWith(raw, false, true)
	if err != nil {
		t.Fatalf("newChunkFromBytesWith: %v", err)
	}
	before := ro.Bytes()
	if err := ro.SetData([]byte("x\x00y")); !Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if !bytes.Equal(before, ro.Bytes()) {
		t.Errorf("read-only chunk mutated its bytes despite a rejected setter")
	}
}

func TestChunkTEXtGetSet(t *testing.T) {
	c := buildChunk(t, "tEXt", []byte("Author\x00Alice"))
	kw, err := c.Get(KeyKeyword, nil)
	if err != nil || kw != "Author" {
		t.Fatalf("Get(keyword) = %v, %v", kw, err)
	}
	txt, err := c.Get(KeyText, nil)
	if err != nil || txt != "Alice" {
		t.Fatalf("Get(text) = %v, %v", txt, err)
	}
	if err := c.Set(KeyText, "Bob", nil); err != nil {
		t.Fatalf("Set(text): %v", err)
	}
	if !bytes.Equal(c.Data(), []byte("Author\x00Bob")) {
		t.Errorf("data after Set(text) = %q, want %q", c.Data(), "Author\x00Bob")
	}
	txt, err = c.Get(KeyText, nil)
	if err != nil || txt != "Bob" {
		t.Fatalf("Get(text) after Set = %v, %v", txt, err)
	}
}

func TestChunkUnsupportedType(t *testing.T) {
	c := buildChunk(t, "qqXx", []byte("anything"))
	if c.IsSupported() {
		t.Fatalf("qqXx should not be a registered type")
	}
	if _, err := c.GetAll(nil); !Is(err, ErrUnsupportedChunk) {
		t.Fatalf("expected ErrUnsupportedChunk, got %v", err)
	}
}

func TestChunkCriticalAncillary(t *testing.T) {
	critical := buildChunk(t, "IDAT", []byte{1})
	if !critical.IsCritical() || critical.IsAncillary() {
		t.Errorf("IDAT should be critical")
	}
	ancillary := buildChunk(t, "tEXt", []byte("a\x00b"))
	if ancillary.IsCritical() || !ancillary.IsAncillary() {
		t.Errorf("tEXt should be ancillary")
	}
}

func TestNewChunkSeeded(t *testing.T) {
	c, err := NewChunk("IHDR", false)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if len(c.Data()) != 13 {
		t.Fatalf("seeded IHDR payload length = %d, want 13", len(c.Data()))
	}
	valid, err := c.IsValid()
	if err != nil || !valid {
		t.Fatalf("seeded IHDR should be valid: %v %v", valid, err)
	}
}
