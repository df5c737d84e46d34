package lod

import (
	"log"
	"math"
	"sync"

	"lodcraft/internal/meshing"
	"lodcraft/internal/source"
	"lodcraft/internal/world"
)

// Culler is the frustum test the render thread hands to the window update.
type Culler interface {
	TestAAB(pos, dims [3]float32) bool
}

// Manager keeps a sphere of chunk nodes resident per LOD level around the
// player, requests missing chunks from the source, and composes the octant
// visibility masks so a high-detail chunk hides the matching octant of its
// coarse parent.
type Manager struct {
	levels []*storageLevel
	maxLOD int

	mesher *meshing.Mesher
	pool   *meshing.WorkerPool
	src    source.ChunkSource

	clearMu   sync.Mutex
	clearList []*Node

	updatableMu sync.Mutex
	updatable   []*meshing.ChunkMesh

	blockMu      sync.Mutex
	blockUpdates []blockUpdate

	// Last window parameters, read by task cancellation predicates.
	viewMu         sync.Mutex
	playerX        float64
	playerY        float64
	playerZ        float64
	renderDistance int32
	lodFactor      float64
}

type blockUpdate struct {
	wx, wy, wz int32
	block      world.Block
}

// NewManager builds the window with maxLOD+1 levels and starts the meshing
// workers.
func NewManager(src source.ChunkSource, gpu meshing.GPU, maxLOD, workers int) *Manager {
	m := &Manager{
		maxLOD:         maxLOD,
		src:            src,
		pool:           meshing.NewWorkerPool(workers),
		renderDistance: 8,
		lodFactor:      1,
	}
	for k := 0; k <= maxLOD; k++ {
		m.levels = append(m.levels, &storageLevel{})
	}
	m.mesher = meshing.NewMesher(m, gpu)
	return m
}

// Mesher exposes the mesher wired to this window (the renderer shares it
// for transparent sorting).
func (m *Manager) Mesher() *meshing.Mesher { return m.mesher }

// Shutdown stops the workers and the chunk source.
func (m *Manager) Shutdown() {
	m.pool.Shutdown()
	if m.src != nil {
		if err := m.src.Close(); err != nil {
			log.Printf("lod: source close: %v", err)
		}
	}
}

// MeshAt returns the live mesh at exactly this position, or nil.
func (m *Manager) MeshAt(pos world.ChunkPosition) *meshing.ChunkMesh {
	k := int(pos.SizeShift())
	if k > m.maxLOD {
		return nil
	}
	node := m.levels[k].get(cellOf(pos.WX, pos.VoxelSize), cellOf(pos.WY, pos.VoxelSize), cellOf(pos.WZ, pos.VoxelSize))
	if node == nil || node.Mesh.Pos() != pos {
		return nil
	}
	return node.Mesh
}

// FinestMeshAt returns the finest generated mesh containing the world
// coordinate, searching voxel sizes from minVoxelSize upward.
func (m *Manager) FinestMeshAt(wx, wy, wz, minVoxelSize int32) *meshing.ChunkMesh {
	for vs := minVoxelSize; vs <= 1<<m.maxLOD; vs *= 2 {
		side := world.ChunkSide * vs
		pos := world.ChunkPosition{
			WX:        floorDiv(wx, side) * side,
			WY:        floorDiv(wy, side) * side,
			WZ:        floorDiv(wz, side) * side,
			VoxelSize: vs,
		}
		if mesh := m.MeshAt(pos); mesh != nil && mesh.Generated() {
			return mesh
		}
	}
	return nil
}

// GetBlock resolves a block through the window, finest LOD first.
func (m *Manager) GetBlock(wx, wy, wz int32) (world.Block, bool) {
	mesh := m.FinestMeshAt(wx, wy, wz, 1)
	if mesh == nil {
		return world.Air, false
	}
	return mesh.Chunk().GetBlock(wx, wy, wz), true
}

// GetNeighbor returns the mesh across dir from pos at the same LOD.
func (m *Manager) GetNeighbor(pos world.ChunkPosition, dir int) *meshing.ChunkMesh {
	side := pos.WorldSide()
	return m.MeshAt(world.ChunkPosition{
		WX:        pos.WX + world.DirDelta[dir][0]*side,
		WY:        pos.WY + world.DirDelta[dir][1]*side,
		WZ:        pos.WZ + world.DirDelta[dir][2]*side,
		VoxelSize: pos.VoxelSize,
	})
}

// octantBit derives the parent-octant index of a chunk position from the
// parity of its cell coordinates.
func octantBit(pos world.ChunkPosition) uint8 {
	shift := world.ChunkShift + pos.SizeShift()
	return uint8(pos.WX>>shift&1) |
		uint8(pos.WY>>shift&1)<<1 |
		uint8(pos.WZ>>shift&1)<<2
}

func (m *Manager) parentNode(pos world.ChunkPosition) *Node {
	k := int(pos.SizeShift()) + 1
	if k > m.maxLOD {
		return nil
	}
	vs := pos.VoxelSize * 2
	return m.levels[k].get(cellOf(pos.WX, vs), cellOf(pos.WY, vs), cellOf(pos.WZ, vs))
}

// withinWindow reports whether a position is still inside the render sphere
// of its LOD under the current view parameters. Task cancellation uses it.
func (m *Manager) withinWindow(pos world.ChunkPosition) bool {
	m.viewMu.Lock()
	px, py, pz := m.playerX, m.playerY, m.playerZ
	rd, factor := m.renderDistance, m.lodFactor
	m.viewMu.Unlock()

	radius := lodRadius(rd, int(pos.SizeShift()), factor)
	return pos.MinDistSq(px, py, pz) <= radius*radius
}

// lodRadius is the per-LOD render radius in world units.
func lodRadius(renderDistance int32, k int, lodFactor float64) float64 {
	r := float64(renderDistance) * world.ChunkSide * float64(int32(1)<<k)
	if k > 0 {
		r *= lodFactor
	}
	return r
}

func (m *Manager) enqueueUpdatable(mesh *meshing.ChunkMesh) {
	m.updatableMu.Lock()
	for _, u := range m.updatable {
		if u == mesh {
			m.updatableMu.Unlock()
			return
		}
	}
	m.updatable = append(m.updatable, mesh)
	m.updatableMu.Unlock()
}

// QueueBlockUpdate defers a block edit to the start of the next frame.
func (m *Manager) QueueBlockUpdate(wx, wy, wz int32, b world.Block) {
	m.blockMu.Lock()
	m.blockUpdates = append(m.blockUpdates, blockUpdate{wx, wy, wz, b})
	m.blockMu.Unlock()
}

func distSqAxis(v, lo, hi float64) float64 {
	if v < lo {
		d := lo - v
		return d * d
	}
	if v > hi {
		d := v - hi
		return d * d
	}
	return 0
}

// sphereContains tests a chunk cell against the per-LOD Euclidean radius.
func sphereContains(px, py, pz, radius float64, cx, cy, cz, side int32) bool {
	dx := distSqAxis(px, float64(cx)*float64(side), float64(cx+1)*float64(side))
	dy := distSqAxis(py, float64(cy)*float64(side), float64(cy+1)*float64(side))
	dz := distSqAxis(pz, float64(cz)*float64(side), float64(cz+1)*float64(side))
	return dx+dy+dz <= radius*radius
}

func ceilDiv(a float64, b int32) int32 {
	return int32(math.Ceil(a / float64(b)))
}
