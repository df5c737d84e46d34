package meshing

import "testing"

func TestPackFaceRoundTrip(t *testing.T) {
	f := PackFace(17, 16, 15, false, 1, 0x2A, 1234, 7)
	if f.X() != 17 || f.Y() != 16 || f.Z() != 15 {
		t.Fatalf("coords: got (%d,%d,%d)", f.X(), f.Y(), f.Z())
	}
	if f.IsBackFace() {
		t.Fatalf("back-face flag must be clear")
	}
	if f.Normal() != 1 {
		t.Fatalf("normal: got %d, want 1", f.Normal())
	}
	if f.Permutation() != 0x2A {
		t.Fatalf("permutation: got %d, want 42", f.Permutation())
	}
	if f.BlockType() != 1234 || f.ModelIndex() != 7 {
		t.Fatalf("payload: got (%d,%d), want (1234,7)", f.BlockType(), f.ModelIndex())
	}

	bf := PackFace(0, 31, 0, true, 5, 0, 65535, 65535)
	if !bf.IsBackFace() || bf.Normal() != 5 {
		t.Fatalf("back face: got (%v,%d)", bf.IsBackFace(), bf.Normal())
	}
	if bf.BlockType() != 65535 || bf.ModelIndex() != 65535 {
		t.Fatalf("16-bit fields must not truncate")
	}
}

func TestPackFaceWrapsCoordinates(t *testing.T) {
	f := PackFace(32, -1, 33, false, 0, 0, 1, 0)
	if f.X() != 0 || f.Y() != 31 || f.Z() != 1 {
		t.Fatalf("wrapped coords: got (%d,%d,%d), want (0,31,1)", f.X(), f.Y(), f.Z())
	}
}
