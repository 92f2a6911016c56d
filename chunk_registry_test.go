package pngforensic

import "testing"

func TestIHDRValidatePayload(t *testing.T) {
	// bit depth 3 is not legal for any color type.
	c := buildChunk(t, "IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 3, 0, 0, 0, 0})
	ok, err := c.IsValid()
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if ok {
		t.Fatalf("bit depth 3 should be invalid for every color type")
	}
}

func TestIHDRColorTypeName(t *testing.T) {
	c := buildChunk(t, "IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0})
	name, err := c.Get(KeyColorTypeName, nil)
	if err != nil || name != "Truecolour" {
		t.Fatalf("colortype_name = %v, %v, want Truecolour", name, err)
	}
}

func TestPLTEEntries(t *testing.T) {
	c := buildChunk(t, "PLTE", []byte{255, 0, 0, 0, 255, 0})
	all, err := c.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	entries := all[KeyEntries].([]RGB)
	if len(entries) != 2 || entries[0] != (RGB{255, 0, 0}) || entries[1] != (RGB{0, 255, 0}) {
		t.Errorf("entries = %v", entries)
	}
}

func TestPLTEInvalidLength(t *testing.T) {
	c := buildChunk(t, "PLTE", []byte{1, 2})
	ok, err := c.IsValid()
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if ok {
		t.Fatalf("PLTE length not a multiple of 3 should be invalid")
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	c := buildChunk(t, "sRGB", []byte{2})
	name, err := c.Get(KeyRenderingIntentName, nil)
	if err != nil || name != "Saturation" {
		t.Fatalf("rendering_intent_name = %v, %v", name, err)
	}
	if err := c.Set(KeyRenderingIntentCode, uint8(9), nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, _ := c.IsValid()
	if ok {
		t.Errorf("rendering intent 9 should be invalid")
	}
}

func TestGAMARoundTrip(t *testing.T) {
	c := buildChunk(t, "gAMA", []byte{0, 1, 0x86, 0xa0}) // 100000
	gamma, err := c.Get(KeyGamma, nil)
	if err != nil || gamma != uint32(100000) {
		t.Fatalf("gamma = %v, %v", gamma, err)
	}
}

func TestCHRMFieldOffsets(t *testing.T) {
	c, err := NewChunk("cHRM", false)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if err := c.Set(KeyBlueY, uint32(6000), nil); err != nil {
		t.Fatalf("Set(blue_y): %v", err)
	}
	v, err := c.Get(KeyBlueY, nil)
	if err != nil || v != uint32(6000) {
		t.Fatalf("Get(blue_y) = %v, %v", v, err)
	}
	if other, _ := c.Get(KeyWhiteX, nil); other != uint32(0) {
		t.Errorf("unrelated field white_x should remain 0, got %v", other)
	}
}

func TestPHYSDerivedDPI(t *testing.T) {
	c, err := NewChunk("pHYs", false)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	dpi, err := c.Get(KeyDPI, nil)
	if err != nil {
		t.Fatalf("Get(dpi): %v", err)
	}
	pair := dpi.([2]float64)
	if pair[0] < 71 || pair[0] > 73 {
		t.Errorf("dpi.x = %v, want ~72", pair[0])
	}
}

func TestBKGDLengthSelectsClass(t *testing.T) {
	idx := buildChunk(t, "bKGD", []byte{5})
	all, err := idx.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if all[KeyPaletteIndex] != uint8(5) {
		t.Errorf("palette_index = %v, want 5", all[KeyPaletteIndex])
	}

	rgb := buildChunk(t, "bKGD", []byte{0, 255, 1, 0, 0, 128})
	all, err = rgb.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if all[KeyRed] != uint16(255) || all[KeyGreen] != uint16(256) || all[KeyBlue] != uint16(128) {
		t.Errorf("rgb fields = %v", all)
	}
}

func TestSPLTEntries(t *testing.T) {
	name := []byte("mypal\x00")
	payload := append(append([]byte{}, name...), 8) // depth 8
	payload = append(payload, 10, 20, 30, 40, 0, 99) // one entry + frequency
	c := buildChunk(t, "sPLT", payload)
	all, err := c.GetAll(nil)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if all[KeyPaletteName] != "mypal" {
		t.Errorf("palette_name = %v", all[KeyPaletteName])
	}
	entries := all[KeyEntries].([]sPLTEntry)
	if len(entries) != 1 || entries[0].R != 10 || entries[0].Frequency != 99 {
		t.Errorf("entries = %v", entries)
	}
}

func TestTRNSRequiresIHDRContextForGreyscale(t *testing.T) {
	c := buildChunk(t, "tRNS", []byte{0, 200})
	ihdr := &IHDRInfo{ColorType: 0}
	gray, err := c.Get(KeyGray, ihdr)
	if err != nil || gray != uint16(200) {
		t.Fatalf("Get(gray) with IHDR context = %v, %v", gray, err)
	}
}

func TestZTXtCompressedRoundTrip(t *testing.T) {
	c, err := NewChunk("zTXt", false)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if err := c.Set(KeyText, "hello deflate", nil); err != nil {
		t.Fatalf("Set(text): %v", err)
	}
	got, err := c.Get(KeyText, nil)
	if err != nil || got != "hello deflate" {
		t.Fatalf("Get(text) = %v, %v", got, err)
	}
}

func TestITXtUncompressedUTF8(t *testing.T) {
	c, err := NewChunk("iTXt", false)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if err := c.Set(KeyText, "café", nil); err != nil {
		t.Fatalf("Set(text): %v", err)
	}
	got, err := c.Get(KeyText, nil)
	if err != nil || got != "café" {
		t.Fatalf("Get(text) = %v, %v", got, err)
	}
}
