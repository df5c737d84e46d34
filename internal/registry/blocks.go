package registry

import (
	"log"
	"sync"

	"lodcraft/internal/world"
	"lodcraft/pkg/blockmodel"
)

// BlockDefinition defines the properties of a block type.
type BlockDefinition struct {
	ID          uint16 `json:"id"`
	Name        string `json:"name"`
	Transparent bool   `json:"transparent"`
	ViewThrough bool   `json:"viewThrough"`
	Solid       bool   `json:"solid"`
	Degradable  bool   `json:"degradable"`
	HasBackFace bool   `json:"hasBackFace"`
	Light       uint8  `json:"light"`
	Absorption  uint8  `json:"absorption"`
	Model       string `json:"model"`
	Rotatable   bool   `json:"rotatable"`
	Permutation uint8  `json:"permutation"`
	Tint        uint32 `json:"tint"`
}

// The attribute tables are process-wide, written once during startup and
// read from any thread afterwards.
var (
	mu          sync.RWMutex
	defs        = make(map[uint16]*BlockDefinition)
	names       = make(map[string]uint16)
	transparent []bool
	viewThrough []bool
	solid       []bool
	degradable  []bool
	hasBackFace []bool
	light       []uint8
	absorption  []uint8
	modelIndex  []uint16
	permutation []uint8
	rotatable   []bool

	Models *blockmodel.Store
)

// Init resets the tables and registers the built-in blocks. Must run before
// any meshing starts.
func Init() {
	mu.Lock()
	defs = make(map[uint16]*BlockDefinition)
	names = make(map[string]uint16)
	transparent = transparent[:0]
	viewThrough = viewThrough[:0]
	solid = solid[:0]
	degradable = degradable[:0]
	hasBackFace = hasBackFace[:0]
	light = light[:0]
	absorption = absorption[:0]
	modelIndex = modelIndex[:0]
	permutation = permutation[:0]
	rotatable = rotatable[:0]
	Models = blockmodel.NewStore()
	mu.Unlock()

	RegisterBlock(&BlockDefinition{ID: 0, Name: "air", Transparent: true, ViewThrough: true})
	RegisterBlock(&BlockDefinition{ID: 1, Name: "stone", Solid: true})
	RegisterBlock(&BlockDefinition{ID: 2, Name: "dirt", Solid: true, Degradable: true})
	RegisterBlock(&BlockDefinition{ID: 3, Name: "glass", Transparent: true, ViewThrough: true, HasBackFace: true})
	RegisterBlock(&BlockDefinition{ID: 4, Name: "water", Transparent: true, ViewThrough: true, HasBackFace: true, Absorption: 2, Tint: 0xCC7733})
	RegisterBlock(&BlockDefinition{ID: 5, Name: "leaves", Solid: true, ViewThrough: true, Tint: 0x5CFF7D})
	RegisterBlock(&BlockDefinition{ID: 6, Name: "glowstone", Solid: true, Light: 15})

	Models.Register("slab_bottom", []blockmodel.Element{
		{From: [3]uint8{0, 0, 0}, To: [3]uint8{16, 8, 16}},
	})
	RegisterBlock(&BlockDefinition{ID: 7, Name: "slab", Solid: true, Model: "slab_bottom", Rotatable: true})
}

// RegisterBlock installs a definition into the attribute tables. IDs may
// leave gaps; a skipped ID gets placeholder attributes (no flags, full cube
// model) until a definition for it is registered.
func RegisterBlock(def *BlockDefinition) {
	mu.Lock()
	defer mu.Unlock()

	for int(def.ID) >= len(transparent) {
		transparent = append(transparent, false)
		viewThrough = append(viewThrough, false)
		solid = append(solid, false)
		degradable = append(degradable, false)
		hasBackFace = append(hasBackFace, false)
		light = append(light, 0)
		absorption = append(absorption, 0)
		modelIndex = append(modelIndex, blockmodel.FullCubeIndex)
		permutation = append(permutation, 0)
		rotatable = append(rotatable, false)
	}

	idx := uint16(blockmodel.FullCubeIndex)
	if def.Model != "" {
		var ok bool
		idx, ok = Models.Lookup(def.Model)
		if !ok {
			log.Printf("registry: block %q references unknown model %q, substituting full cube", def.Name, def.Model)
			idx = blockmodel.FullCubeIndex
		}
	}

	defs[def.ID] = def
	names[def.Name] = def.ID
	transparent[def.ID] = def.Transparent
	viewThrough[def.ID] = def.ViewThrough
	solid[def.ID] = def.Solid
	degradable[def.ID] = def.Degradable
	hasBackFace[def.ID] = def.HasBackFace
	light[def.ID] = def.Light
	absorption[def.ID] = def.Absorption
	modelIndex[def.ID] = idx
	permutation[def.ID] = def.Permutation & 63
	rotatable[def.ID] = def.Rotatable
}

// Sanitize replaces unknown block ids from a payload with air so a bad
// payload cannot index past the attribute tables.
func Sanitize(b world.Block) world.Block {
	mu.RLock()
	known := int(b.Typ) < len(transparent) && defs[b.Typ] != nil
	mu.RUnlock()
	if !known {
		log.Printf("registry: unknown block id %d, substituting air", b.Typ)
		return world.Air
	}
	return b
}

// Transparent reports whether faces behind this block remain visible.
func Transparent(typ uint16) bool {
	mu.RLock()
	defer mu.RUnlock()
	return int(typ) < len(transparent) && transparent[typ]
}

// ViewThrough reports whether neighbors of a different type stay visible
// through this block (glass, water, leaves).
func ViewThrough(typ uint16) bool {
	mu.RLock()
	defer mu.RUnlock()
	return int(typ) < len(viewThrough) && viewThrough[typ]
}

// Solid reports whether entities collide with this block.
func Solid(typ uint16) bool {
	mu.RLock()
	defer mu.RUnlock()
	return int(typ) < len(solid) && solid[typ]
}

// Degradable reports whether worldgen may overwrite this block.
func Degradable(typ uint16) bool {
	mu.RLock()
	defer mu.RUnlock()
	return int(typ) < len(degradable) && degradable[typ]
}

// HasBackFace reports whether the inside of this block is rendered too.
func HasBackFace(typ uint16) bool {
	mu.RLock()
	defer mu.RUnlock()
	return int(typ) < len(hasBackFace) && hasBackFace[typ]
}

// Light returns the emitted light level of the type.
func Light(typ uint16) uint8 {
	mu.RLock()
	defer mu.RUnlock()
	if int(typ) >= len(light) {
		return 0
	}
	return light[typ]
}

// Absorption returns how strongly the type absorbs passing light.
func Absorption(typ uint16) uint8 {
	mu.RLock()
	defer mu.RUnlock()
	if int(typ) >= len(absorption) {
		return 0
	}
	return absorption[typ]
}

// Model resolves the rotated model reference of a block: the baked model
// index plus the 6-bit permutation, taken from the block data for rotatable
// types.
func Model(b world.Block) (uint16, uint8) {
	mu.RLock()
	defer mu.RUnlock()
	if int(b.Typ) >= len(modelIndex) {
		return blockmodel.FullCubeIndex, 0
	}
	perm := permutation[b.Typ]
	if rotatable[b.Typ] {
		perm = uint8(b.Data) & 63
	}
	return modelIndex[b.Typ], perm
}

// IDByName resolves a block name.
func IDByName(name string) (uint16, bool) {
	mu.RLock()
	defer mu.RUnlock()
	id, ok := names[name]
	return id, ok
}

// MaterialWords builds the per-block material table the composition shader
// indexes with the fragment's block type: each entry is a palette index.
func MaterialWords() []uint32 {
	mu.RLock()
	defer mu.RUnlock()
	words := make([]uint32, len(transparent))
	for id := range words {
		words[id] = uint32(id) & 255
	}
	return words
}

// PaletteWords builds the 256-entry tint palette from the registered block
// definitions.
func PaletteWords() []uint32 {
	mu.RLock()
	defer mu.RUnlock()
	words := make([]uint32, 256)
	for id, def := range defs {
		words[id&255] = def.Tint
	}
	return words
}
