package pngforensic

import "testing"

func TestTIMEValidation(t *testing.T) {
	// 2021-02-29 does not exist: 2021 is not a leap year.
	invalid := buildChunk(t, "tIME", []byte{0x07, 0xe5, 0x02, 0x1d, 0x0c, 0x00, 0x00})
	ok, err := invalid.IsValid()
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if ok {
		t.Fatalf("2021-02-29 should be invalid")
	}

	// 2016 is a leap year: February 29 is valid.
	valid := buildChunk(t, "tIME", []byte{0x07, 0xe0, 0x02, 0x1d, 0x0c, 0x00, 0x00})
	ok, err = valid.IsValid()
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if !ok {
		t.Fatalf("2016-02-29 should be valid")
	}
}

func TestTIMEFieldAccess(t *testing.T) {
	c := buildChunk(t, "tIME", []byte{0x07, 0xe8, 6, 15, 12, 30, 45})
	year, _ := c.Get(KeyYear, nil)
	if year != uint16(2024) {
		t.Errorf("year = %v, want 2024", year)
	}
	if err := c.Set(KeyMonth, uint8(13), nil); err != nil {
		t.Fatalf("Set(month): %v", err)
	}
	ok, err := c.IsValid()
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if ok {
		t.Errorf("month=13 should be invalid")
	}
}
