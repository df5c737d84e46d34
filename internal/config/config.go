package config

import "sync"

// Settings holds the render configuration. A single process-wide instance
// is guarded by a RWMutex; setters clamp to sane ranges.
type Settings struct {
	mu sync.RWMutex

	renderDistance int     // in chunks
	lodFactor      float64 // scale on coarser LOD distances
	highestLOD     int     // power-of-two exponent
	bloom          bool
	fov            float64 // degrees
	vsync          bool
}

var global = &Settings{
	renderDistance: 8,
	lodFactor:      1.0,
	highestLOD:     3,
	bloom:          true,
	fov:            70,
	vsync:          true,
}

// GetRenderDistance returns the render distance in chunks.
func GetRenderDistance() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.renderDistance
}

// SetRenderDistance sets the render distance in chunks.
func SetRenderDistance(distance int) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if distance < 1 {
		distance = 1
	}
	if distance > 64 {
		distance = 64
	}
	global.renderDistance = distance
}

// GetLODFactor returns the scale applied to coarser LOD distances.
func GetLODFactor() float64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.lodFactor
}

// SetLODFactor sets the coarse-LOD distance scale, typically in [0.5, 2].
func SetLODFactor(f float64) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if f < 0.25 {
		f = 0.25
	}
	if f > 4 {
		f = 4
	}
	global.lodFactor = f
}

// GetHighestLOD returns the coarsest LOD exponent.
func GetHighestLOD() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.highestLOD
}

// SetHighestLOD sets the coarsest LOD exponent, capped at 5.
func SetHighestLOD(k int) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if k < 0 {
		k = 0
	}
	if k > 5 {
		k = 5
	}
	global.highestLOD = k
}

// GetBloom reports whether the bloom pass is enabled.
func GetBloom() bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.bloom
}

// SetBloom toggles the bloom pass.
func SetBloom(on bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.bloom = on
}

// GetFOV returns the vertical field of view in degrees.
func GetFOV() float64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.fov
}

// SetFOV sets the field of view in degrees.
func SetFOV(fov float64) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if fov < 30 {
		fov = 30
	}
	if fov > 150 {
		fov = 150
	}
	global.fov = fov
}

// GetVSync reports whether vsync is requested.
func GetVSync() bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.vsync
}

// SetVSync toggles vsync.
func SetVSync(on bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.vsync = on
}
