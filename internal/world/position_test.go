package world

import "testing"

func TestHashSpread(t *testing.T) {
	seen := make(map[uint32]ChunkPosition)
	for x := int32(-4); x <= 4; x++ {
		for y := int32(-4); y <= 4; y++ {
			for z := int32(-4); z <= 4; z++ {
				p := ChunkPosition{WX: x * ChunkSide, WY: y * ChunkSide, WZ: z * ChunkSide, VoxelSize: 1}
				h := p.Hash()
				if prev, ok := seen[h]; ok {
					t.Fatalf("hash collision between %+v and %+v", prev, p)
				}
				seen[h] = p
			}
		}
	}
}

func TestMinDistSqInsideIsZero(t *testing.T) {
	p := ChunkPosition{WX: 0, WY: 0, WZ: 0, VoxelSize: 1}
	if d := p.MinDistSq(16, 16, 16); d != 0 {
		t.Fatalf("point inside AABB: got %v, want 0", d)
	}
	if d := p.MinDistSq(40, 16, 16); d != 64 {
		t.Fatalf("point 8 past +X face: got %v, want 64", d)
	}
}

func TestMaxDistSqCorner(t *testing.T) {
	p := ChunkPosition{WX: 0, WY: 0, WZ: 0, VoxelSize: 1}
	// From the origin corner the farthest corner is (32,32,32).
	if d := p.MaxDistSq(0, 0, 0); d != 3*32*32 {
		t.Fatalf("got %v, want %v", d, 3*32*32)
	}
}

func TestCenterDistSq(t *testing.T) {
	p := ChunkPosition{WX: 0, WY: 0, WZ: 0, VoxelSize: 2}
	// Center of a voxelSize-2 chunk is at (32,32,32).
	if d := p.CenterDistSq(32, 32, 32); d != 0 {
		t.Fatalf("got %v, want 0", d)
	}
}

func TestPriorityPrefersNear(t *testing.T) {
	near := ChunkPosition{WX: 0, WY: 0, WZ: 0, VoxelSize: 1}
	far := ChunkPosition{WX: 320, WY: 0, WZ: 0, VoxelSize: 1}
	if near.Priority(16, 16, 16) <= far.Priority(16, 16, 16) {
		t.Fatalf("near chunk should outrank far chunk")
	}
}

func TestContains(t *testing.T) {
	p := ChunkPosition{WX: 64, WY: 0, WZ: 0, VoxelSize: 2}
	if !p.Contains(64, 0, 0) || !p.Contains(127, 63, 63) {
		t.Fatalf("corner cells should be inside")
	}
	if p.Contains(128, 0, 0) || p.Contains(63, 0, 0) {
		t.Fatalf("cells past the faces should be outside")
	}
}
