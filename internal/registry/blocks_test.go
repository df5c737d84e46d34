package registry

import (
	"testing"

	"lodcraft/internal/world"
	"lodcraft/pkg/blockmodel"
)

func TestBuiltinAttributes(t *testing.T) {
	Init()
	if !Transparent(0) || !ViewThrough(0) {
		t.Fatalf("air must be transparent and view-through")
	}
	if Transparent(1) || ViewThrough(1) || !Solid(1) {
		t.Fatalf("stone must be opaque and solid")
	}
	if !HasBackFace(4) {
		t.Fatalf("water must carry a back face")
	}
	if Light(6) != 15 {
		t.Fatalf("glowstone light: got %d, want 15", Light(6))
	}
	if !Degradable(2) {
		t.Fatalf("dirt must be degradable")
	}
}

func TestSanitizeUnknownBlock(t *testing.T) {
	Init()
	got := Sanitize(world.Block{Typ: 4000})
	if !got.IsAir() {
		t.Fatalf("unknown id must sanitize to air, got %+v", got)
	}
	known := Sanitize(world.Block{Typ: 1, Data: 3})
	if known.Typ != 1 || known.Data != 3 {
		t.Fatalf("known block must pass through, got %+v", known)
	}
}

func TestModelLookup(t *testing.T) {
	Init()
	idx, perm := Model(world.Block{Typ: 1})
	if idx != blockmodel.FullCubeIndex || perm != 0 {
		t.Fatalf("stone model: got (%d,%d), want (0,0)", idx, perm)
	}
	idx, perm = Model(world.Block{Typ: 7, Data: 0x2A})
	if idx == blockmodel.FullCubeIndex {
		t.Fatalf("slab must resolve to a non-cube model")
	}
	if perm != 0x2A {
		t.Fatalf("rotatable block must take the permutation from data: got %d", perm)
	}
}

func TestLoadDefinitions(t *testing.T) {
	Init()
	good := []byte(`[{"id": 40, "name": "marble", "solid": true, "light": 2}]`)
	if err := loadDefinitionBytes(good); err != nil {
		t.Fatalf("valid definitions rejected: %v", err)
	}
	if !Solid(40) || Light(40) != 2 {
		t.Fatalf("loaded definition not applied")
	}

	bad := []byte(`[{"name": "missing-id"}]`)
	if err := loadDefinitionBytes(bad); err == nil {
		t.Fatalf("schema violation must be rejected")
	}

	extra := []byte(`[{"id": 41, "name": "x", "hardness": 3}]`)
	if err := loadDefinitionBytes(extra); err == nil {
		t.Fatalf("unknown fields must be rejected")
	}
}
