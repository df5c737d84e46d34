package source

import (
	"sync"

	"github.com/ojrac/opensimplex-go"

	"lodcraft/internal/world"
)

const (
	seaLevel      = 0
	terrainAmp    = 48
	terrainFreq   = 1.0 / 256
	localQueueCap = 4096
)

// LocalSource generates chunk payloads procedurally. It stands in for the
// network collaborator in tests and offline runs: same request/result
// contract, deterministic content per seed.
type LocalSource struct {
	noise opensimplex.Noise

	jobs    chan world.ChunkPosition
	results chan Payload

	pendingMu sync.Mutex
	pending   map[world.ChunkPosition]struct{}

	closeOnce sync.Once
	done      chan struct{}
}

// NewLocalSource starts the generator workers.
func NewLocalSource(seed int64, workers int) *LocalSource {
	s := &LocalSource{
		noise:   opensimplex.NewNormalized(seed),
		jobs:    make(chan world.ChunkPosition, localQueueCap),
		results: make(chan Payload, 256),
		pending: make(map[world.ChunkPosition]struct{}),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// RequestChunks enqueues every position not already pending. A full queue
// rolls the position back; the window re-requests next frame.
func (s *LocalSource) RequestChunks(positions []world.ChunkPosition) error {
	for _, pos := range positions {
		s.pendingMu.Lock()
		if _, ok := s.pending[pos]; ok {
			s.pendingMu.Unlock()
			continue
		}
		s.pending[pos] = struct{}{}
		s.pendingMu.Unlock()

		select {
		case s.jobs <- pos:
		default:
			s.pendingMu.Lock()
			delete(s.pending, pos)
			s.pendingMu.Unlock()
		}
	}
	return nil
}

// Results delivers generated payloads.
func (s *LocalSource) Results() <-chan Payload { return s.results }

// Close stops the workers.
func (s *LocalSource) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *LocalSource) worker() {
	for {
		select {
		case <-s.done:
			return
		case pos := <-s.jobs:
			p := s.generate(pos)
			s.pendingMu.Lock()
			delete(s.pending, pos)
			s.pendingMu.Unlock()
			select {
			case s.results <- p:
			case <-s.done:
				return
			}
		}
	}
}

// heightAt samples the terrain surface height at a world column.
func (s *LocalSource) heightAt(wx, wz int32) int32 {
	h := s.noise.Eval2(float64(wx)*terrainFreq, float64(wz)*terrainFreq)
	return int32(h*terrainAmp) - terrainAmp/4
}

// generate fills one chunk: stone below the surface, dirt as topsoil, water
// up to sea level, full sunlight above ground.
func (s *LocalSource) generate(pos world.ChunkPosition) Payload {
	blocks := make([]uint32, world.ChunkVolume)
	light := make([]world.LightCell, world.ChunkVolume)
	vs := pos.VoxelSize

	for x := int32(0); x < world.ChunkSide; x++ {
		for z := int32(0); z < world.ChunkSide; z++ {
			wx := pos.WX + x*vs
			wz := pos.WZ + z*vs
			surface := s.heightAt(wx, wz)
			for y := int32(0); y < world.ChunkSide; y++ {
				wy := pos.WY + y*vs
				idx := world.BlockIndex(x, y, z)
				switch {
				case wy < surface-3*vs:
					blocks[idx] = world.Block{Typ: 1}.Packed() // stone
				case wy < surface:
					blocks[idx] = world.Block{Typ: 2}.Packed() // dirt
				case wy < seaLevel:
					blocks[idx] = world.Block{Typ: 4}.Packed() // water
				default:
					light[idx] = world.LightCell{255, 255, 255, 0, 0, 0}
				}
			}
		}
	}
	return Payload{Pos: pos, Blocks: blocks, Light: light}
}
