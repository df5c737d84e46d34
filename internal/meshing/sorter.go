package meshing

// The transparent sorter reorders a transparent face list back-to-front for
// a viewer at chunk-relative cell coordinates. Sorting only happens when the
// viewer crosses a cell boundary, so the ordering is stable frame to frame.

const sortBuckets = 3*64 + 2

func absCell(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

// faceCulled reports whether a transparent face can never be seen from the
// viewer side: the face sits on the chunk side opposite the viewer along its
// normal. Faces on the boundary plane itself (coordinate zero along the
// normal axis) are never culled; their cells wrap across the seam.
func faceCulled(f FaceData, px, py, pz int32) bool {
	axis := f.Normal() >> 1
	var coord, viewer int32
	switch axis {
	case 0:
		coord, viewer = f.X(), px
	case 1:
		coord, viewer = f.Y(), py
	default:
		coord, viewer = f.Z(), pz
	}
	if coord == 0 {
		return false
	}
	if f.Normal()&1 == 1 {
		return viewer < coord
	}
	return viewer > coord
}

// sortTransparentFaces bucket-sorts the non-culled faces by Manhattan
// distance to the viewer, farthest first, back faces ahead of front faces
// at equal distance. Culled faces are moved to the suffix in their incoming
// order. Returns the drawable prefix length.
func sortTransparentFaces(faces []FaceData, px, py, pz int32) int32 {
	if len(faces) == 0 {
		return 0
	}
	buckets := make([][]FaceData, 2*sortBuckets)
	culled := make([]FaceData, 0, len(faces))
	for _, f := range faces {
		if faceCulled(f, px, py, pz) {
			culled = append(culled, f)
			continue
		}
		dist := absCell(f.X()-px) + absCell(f.Y()-py) + absCell(f.Z()-pz)
		if dist >= sortBuckets {
			dist = sortBuckets - 1
		}
		key := dist * 2
		if f.IsBackFace() {
			key++
		}
		buckets[key] = append(buckets[key], f)
	}
	out := faces[:0]
	for key := len(buckets) - 1; key >= 0; key-- {
		out = append(out, buckets[key]...)
	}
	prefix := int32(len(out))
	out = append(out, culled...)
	return prefix
}

// SortTransparent re-sorts and re-uploads the transparent prefix of a mesh
// when the viewer's integer cell position changed since the last sort or
// the face list was rebuilt. Returns whether a sort pass ran.
func (me *Mesher) SortTransparent(m *ChunkMesh, px, py, pz int32) (bool, error) {
	if m.hasSorted && m.lastSortX == px && m.lastSortY == py && m.lastSortZ == pz {
		return false, nil
	}
	if !m.TryLock() {
		return false, ErrMeshBusy
	}
	defer m.Unlock()

	p := &m.transparent
	if len(p.complete) == 0 {
		m.hasSorted = true
		m.lastSortX, m.lastSortY, m.lastSortZ = px, py, pz
		return false, nil
	}
	p.sortedCount = sortTransparentFaces(p.complete, px, py, pz)
	if err := me.gpu.UploadFaces(p.complete[:p.sortedCount], &p.alloc); err != nil {
		return true, err
	}
	m.hasSorted = true
	m.lastSortX, m.lastSortY, m.lastSortZ = px, py, pz
	return true, nil
}
