package source

import (
	"encoding/binary"
	"testing"
	"time"

	"lodcraft/internal/world"
)

func TestLocalSourceDeterministic(t *testing.T) {
	a := NewLocalSource(42, 1)
	defer a.Close()
	b := NewLocalSource(42, 1)
	defer b.Close()

	pos := world.ChunkPosition{WX: 0, WY: -32, WZ: 0, VoxelSize: 1}
	pa := a.generate(pos)
	pb := b.generate(pos)
	for i := range pa.Blocks {
		if pa.Blocks[i] != pb.Blocks[i] {
			t.Fatalf("same seed must generate identical chunks (differs at %d)", i)
		}
	}
}

func TestLocalSourceDeliversRequests(t *testing.T) {
	s := NewLocalSource(1, 2)
	defer s.Close()

	pos := world.ChunkPosition{WX: 0, WY: -64, WZ: 0, VoxelSize: 1}
	if err := s.RequestChunks([]world.ChunkPosition{pos, pos}); err != nil {
		t.Fatalf("request: %v", err)
	}

	select {
	case p := <-s.Results():
		if p.Pos != pos {
			t.Fatalf("got %+v, want %+v", p.Pos, pos)
		}
		if len(p.Blocks) != world.ChunkVolume || len(p.Light) != world.ChunkVolume {
			t.Fatalf("payload sizes: %d blocks, %d light", len(p.Blocks), len(p.Light))
		}
		// A chunk buried far below the surface is solid stone.
		if world.UnpackBlock(p.Blocks[0]).Typ != 1 {
			t.Fatalf("deep chunk must be stone, got %d", world.UnpackBlock(p.Blocks[0]).Typ)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no payload delivered")
	}
}

func TestLocalSourceDeduplicatesPending(t *testing.T) {
	s := NewLocalSource(1, 0) // no workers: jobs stay queued
	defer s.Close()
	pos := world.ChunkPosition{VoxelSize: 1}
	s.RequestChunks([]world.ChunkPosition{pos})
	s.RequestChunks([]world.ChunkPosition{pos})
	if got := len(s.jobs); got != 1 {
		t.Fatalf("duplicate request must be dropped: %d jobs", got)
	}
}

func TestDecodePayloadBytes(t *testing.T) {
	raw := make([]byte, payloadHeaderSize+payloadBlockBytes+payloadLightBytes)
	wx, wy := int32(64), int32(-32)
	binary.LittleEndian.PutUint32(raw[0:], uint32(wx))
	binary.LittleEndian.PutUint32(raw[4:], uint32(wy))
	binary.LittleEndian.PutUint32(raw[8:], 0)
	binary.LittleEndian.PutUint32(raw[12:], 2)
	idx := world.BlockIndex(1, 2, 3)
	binary.LittleEndian.PutUint32(raw[payloadHeaderSize+int(idx)*4:], world.Block{Typ: 5, Data: 9}.Packed())
	raw[payloadHeaderSize+payloadBlockBytes+int(idx)*6] = 200

	p, err := decodePayloadBytes(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := world.ChunkPosition{WX: 64, WY: -32, WZ: 0, VoxelSize: 2}
	if p.Pos != want {
		t.Fatalf("pos: got %+v, want %+v", p.Pos, want)
	}
	b := world.UnpackBlock(p.Blocks[idx])
	if b.Typ != 5 || b.Data != 9 {
		t.Fatalf("block: got %+v", b)
	}
	if p.Light[idx][0] != 200 {
		t.Fatalf("light: got %v", p.Light[idx])
	}

	if _, err := decodePayloadBytes(raw[:100]); err == nil {
		t.Fatalf("truncated payload must be rejected")
	}
	binary.LittleEndian.PutUint32(raw[12:], 3)
	if _, err := decodePayloadBytes(raw); err == nil {
		t.Fatalf("non-power-of-two voxel size must be rejected")
	}
}
