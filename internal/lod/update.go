package lod

import (
	"errors"
	"log"
	"sort"
	"time"

	"lodcraft/internal/meshing"
	"lodcraft/internal/profiling"
	"lodcraft/internal/registry"
	"lodcraft/internal/source"
	"lodcraft/internal/world"
)

// UpdateAndGetRenderChunks rebuilds the per-LOD windows around the player,
// materializes missing nodes, sweeps out-of-range ones, composes the octant
// visibility masks and appends every drawable mesh passing the frustum test
// to out. Runs on the render thread once per frame.
func (m *Manager) UpdateAndGetRenderChunks(px, py, pz float64, renderDistance int32, lodFactor float64, culler Culler, out *[]*meshing.ChunkMesh) {
	defer profiling.Track("lod.UpdateAndGetRenderChunks")()

	m.viewMu.Lock()
	m.playerX, m.playerY, m.playerZ = px, py, pz
	m.renderDistance = renderDistance
	m.lodFactor = lodFactor
	m.viewMu.Unlock()

	m.processClearList()

	var requests []world.ChunkPosition

	// Coarse levels first so parents exist when children clear octant bits.
	for k := m.maxLOD; k >= 0; k-- {
		level := m.levels[k]
		vs := int32(1) << k
		side := world.ChunkSide * vs
		radius := lodRadius(renderDistance, k, lodFactor)

		minCX := floorDiv(int32(px-radius)-side, side)
		minCY := floorDiv(int32(py-radius)-side, side)
		minCZ := floorDiv(int32(pz-radius)-side, side)
		dim := ceilDiv(2*radius, side) + 2

		// Pre-mark so the sweep below catches everything not reused.
		level.mu.Lock()
		oldNodes := level.nodes
		for _, n := range oldNodes {
			if n != nil {
				n.ShouldBeRemoved = true
			}
		}
		level.mu.Unlock()

		newNodes := make([]*Node, dim*dim*dim)
		for cx := minCX; cx < minCX+dim; cx++ {
			for cy := minCY; cy < minCY+dim; cy++ {
				for cz := minCZ; cz < minCZ+dim; cz++ {
					if !sphereContains(px, py, pz, radius, cx, cy, cz, side) {
						continue
					}
					node := level.get(cx, cy, cz)
					if node == nil {
						pos := world.ChunkPosition{WX: cx * side, WY: cy * side, WZ: cz * side, VoxelSize: vs}
						node = &Node{
							Mesh:            meshing.NewChunkMesh(world.NewChunk(pos)),
							ShouldBeRemoved: true,
						}
						requests = append(requests, pos)
					} else {
						node.ShouldBeRemoved = false
					}
					idx := ((cx-minCX)*dim+(cy-minCY))*dim + (cz - minCZ)
					newNodes[idx] = node

					mesh := node.Mesh
					pos := mesh.Pos()
					if mesh.Generated() && k < m.maxLOD {
						if parent := m.parentNode(pos); parent != nil {
							bit := octantBit(pos)
							if parent.Mesh.VisibilityMask()&(1<<bit) != 0 {
								parent.Mesh.ClearOctant(bit)
								parent.DrawableChildren++
							}
						}
					}
					if mesh.VisibilityMask() != 0 && mesh.FaceCount() != 0 {
						if culler == nil || culler.TestAAB(
							[3]float32{float32(pos.WX), float32(pos.WY), float32(pos.WZ)},
							[3]float32{float32(side), float32(side), float32(side)}) {
							*out = append(*out, mesh)
						}
					}
				}
			}
		}

		old := level.swap(newNodes, minCX, minCY, minCZ, dim, dim, dim)
		for _, node := range old {
			if node != nil && node.ShouldBeRemoved {
				m.evict(node)
			}
		}
	}

	if len(requests) > 0 && m.src != nil {
		if err := m.src.RequestChunks(requests); err != nil {
			log.Printf("lod: chunk request failed: %v", err)
		}
	}
}

// evict removes a node that left the render window: the parent octant
// re-appears, same-LOD neighbors refresh their seams, and the mesh is
// destroyed unless a worker still holds it.
func (m *Manager) evict(node *Node) {
	mesh := node.Mesh
	pos := mesh.Pos()

	if parent := m.parentNode(pos); parent != nil {
		bit := octantBit(pos)
		if parent.Mesh.VisibilityMask()&(1<<bit) == 0 {
			parent.Mesh.SetOctant(bit)
			parent.DrawableChildren--
		}
	}
	for d := 0; d < world.DirCount; d++ {
		if nb := m.GetNeighbor(pos, d); nb != nil {
			m.enqueueUpdatable(nb)
		}
	}
	m.destroyOrDefer(node)
}

func (m *Manager) destroyOrDefer(node *Node) {
	mesh := node.Mesh
	if !mesh.TryLock() {
		// A worker holds the mesh; retried next frame.
		m.clearMu.Lock()
		m.clearList = append(m.clearList, node)
		m.clearMu.Unlock()
		return
	}
	mesh.Unlock()
	if mesh.Release() {
		m.mesher.FreeMesh(mesh)
	} else {
		// A task still references the mesh; the clear list will pick the
		// GPU slots up once the count drains.
		mesh.Retain()
		m.clearMu.Lock()
		m.clearList = append(m.clearList, node)
		m.clearMu.Unlock()
	}
}

// processClearList retries deferred destructions once per frame.
func (m *Manager) processClearList() {
	m.clearMu.Lock()
	pending := m.clearList
	m.clearList = nil
	m.clearMu.Unlock()
	for _, node := range pending {
		m.destroyOrDefer(node)
	}
}

// ProcessResults drains arrived chunk payloads and schedules meshing tasks
// for nodes that still exist. Call once per frame on the render thread.
func (m *Manager) ProcessResults() {
	if m.src == nil {
		return
	}
	for {
		select {
		case payload := <-m.src.Results():
			m.acceptPayload(payload)
		default:
			return
		}
	}
}

func (m *Manager) acceptPayload(p source.Payload) {
	mesh := m.MeshAt(p.Pos)
	if mesh == nil {
		// The node was evicted while the payload was in flight.
		return
	}
	m.viewMu.Lock()
	px, py, pz := m.playerX, m.playerY, m.playerZ
	m.viewMu.Unlock()
	pos := p.Pos
	m.pool.Submit(meshing.Task{
		Priority: pos.Priority(px, py, pz),
		StillNeeded: func() bool {
			return m.MeshAt(pos) == mesh && m.withinWindow(pos)
		},
		Run: func() {
			mesh.Lock()
			for i, v := range p.Blocks {
				p.Blocks[i] = registry.Sanitize(world.UnpackBlock(v)).Packed()
			}
			err := mesh.Chunk().FillFromPayload(p.Blocks, p.Light)
			mesh.Unlock()
			if err != nil {
				log.Printf("lod: bad payload for %+v: %v", pos, err)
				return
			}
			m.mesher.RegenerateMainMesh(mesh)
			m.enqueueUpdatable(mesh)
		},
	})
}

// UpdateMeshes applies queued block updates, then finalizes and stitches
// the highest-priority pending meshes until the deadline. Transient
// failures re-queue for the next frame.
func (m *Manager) UpdateMeshes(deadline time.Time) {
	defer profiling.Track("lod.UpdateMeshes")()

	m.applyBlockUpdates()

	m.viewMu.Lock()
	px, py, pz := m.playerX, m.playerY, m.playerZ
	m.viewMu.Unlock()

	m.updatableMu.Lock()
	pending := m.updatable
	m.updatable = nil
	m.updatableMu.Unlock()

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Pos().Priority(px, py, pz) > pending[j].Pos().Priority(px, py, pz)
	})

	var retry []*meshing.ChunkMesh
	for i, mesh := range pending {
		if !time.Now().Before(deadline) {
			retry = append(retry, pending[i:]...)
			break
		}
		if m.MeshAt(mesh.Pos()) != mesh {
			continue // evicted since scheduling
		}
		if err := m.mesher.UploadDataAndFinishNeighbors(mesh); err != nil {
			if errors.Is(err, meshing.ErrMeshBusy) || errors.Is(err, meshing.ErrLODMissing) {
				retry = append(retry, mesh)
				continue
			}
			log.Printf("lod: finish %+v: %v", mesh.Pos(), err)
		}
	}
	if len(retry) > 0 {
		m.updatableMu.Lock()
		m.updatable = append(m.updatable, retry...)
		m.updatableMu.Unlock()
	}
}

// applyBlockUpdates runs the queued edits synchronously at the start of the
// frame, then lets each coarser parent absorb the changed octant.
func (m *Manager) applyBlockUpdates() {
	m.blockMu.Lock()
	updates := m.blockUpdates
	m.blockUpdates = nil
	m.blockMu.Unlock()

	for _, u := range updates {
		mesh := m.FinestMeshAt(u.wx, u.wy, u.wz, 1)
		if mesh == nil {
			continue
		}
		if err := m.mesher.UpdateBlock(mesh, u.wx, u.wy, u.wz, u.block); err != nil {
			if errors.Is(err, meshing.ErrMeshBusy) {
				m.QueueBlockUpdate(u.wx, u.wy, u.wz, u.block)
				continue
			}
			log.Printf("lod: block update at (%d,%d,%d): %v", u.wx, u.wy, u.wz, err)
			continue
		}
		m.propagateToParents(mesh)
	}
}

// propagateToParents downsamples the edited chunk into every live coarser
// parent and schedules their re-mesh.
func (m *Manager) propagateToParents(mesh *meshing.ChunkMesh) {
	m.viewMu.Lock()
	px, py, pz := m.playerX, m.playerY, m.playerZ
	m.viewMu.Unlock()

	child := mesh
	for k := int(mesh.Pos().SizeShift()) + 1; k <= m.maxLOD; k++ {
		pos := child.Pos()
		vs := pos.VoxelSize * 2
		side := world.ChunkSide * vs
		parentPos := world.ChunkPosition{
			WX:        floorDiv(pos.WX, side) * side,
			WY:        floorDiv(pos.WY, side) * side,
			WZ:        floorDiv(pos.WZ, side) * side,
			VoxelSize: vs,
		}
		parent := m.MeshAt(parentPos)
		if parent == nil || !parent.Generated() {
			return
		}
		parent.Chunk().UpdateFromLowerResolution(child.Chunk(), registry.Transparent)
		pm := parent
		m.pool.Submit(meshing.Task{
			Priority: parentPos.Priority(px, py, pz),
			StillNeeded: func() bool {
				return m.MeshAt(parentPos) == pm
			},
			Run: func() {
				m.mesher.RegenerateMainMesh(pm)
				m.enqueueUpdatable(pm)
			},
		})
		child = parent
	}
}
