package pnr

import "testing"

func TestSourceHashStable(t *testing.T) {
	a := SourceHash("AZ 679 25NOV GRUFCO HS2 2040 #1200")
	b := SourceHash("AZ 679 25NOV GRUFCO HS2 2040 #1200")
	if a != b {
		t.Errorf("Same text must hash identically: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("Expected a 16-hex-char digest, got %q (%d chars)", a, len(a))
	}
}

func TestSourceHashDiffers(t *testing.T) {
	a := SourceHash("text one")
	b := SourceHash("text two")
	if a == b {
		t.Errorf("Different texts must not collide trivially: %s", a)
	}
}
