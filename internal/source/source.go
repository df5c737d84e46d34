// Package source provides the chunk payload collaborators: the engine
// requests chunks by position and is handed back populated grids.
package source

import "lodcraft/internal/world"

// Payload is one populated chunk delivered by a collaborator: the packed
// 32-bit block array and, optionally, the per-voxel light channels.
type Payload struct {
	Pos    world.ChunkPosition
	Blocks []uint32
	Light  []world.LightCell
}

// ChunkSource produces chunk payloads for requested positions. Requests are
// batched once per frame; results arrive asynchronously on Results.
type ChunkSource interface {
	RequestChunks(positions []world.ChunkPosition) error
	Results() <-chan Payload
	Close() error
}
