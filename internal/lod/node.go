package lod

import (
	"lodcraft/internal/meshing"
)

// Node wraps a mesh inside the LOD window: the sweep flag cleared on reuse
// each frame, and the count of drawable higher-detail children covering its
// octants.
type Node struct {
	Mesh             *meshing.ChunkMesh
	ShouldBeRemoved  bool
	DrawableChildren int32
}
