package core

// AABB4 packs four AABBs into six 4-lane vectors (min/max per axis), lane
// i holding the i-th child box. A single Intersect call tests a ray
// against all four children at once.
type AABB4 struct {
	MinX, MinY, MinZ Vec4
	MaxX, MaxY, MaxZ Vec4
}

// NewAABB4 assembles an AABB4 from four scalar boxes.
func NewAABB4(boxes [4]AABB) AABB4 {
	var b AABB4
	for i := 0; i < 4; i++ {
		b.MinX[i] = boxes[i].Min[0]
		b.MinY[i] = boxes[i].Min[1]
		b.MinZ[i] = boxes[i].Min[2]
		b.MaxX[i] = boxes[i].Max[0]
		b.MaxY[i] = boxes[i].Max[1]
		b.MaxZ[i] = boxes[i].Max[2]
	}
	return b
}

// Intersect runs the lane-parallel slab test. isHit[i] and t1[i] follow
// the same hit rule as the scalar AABB.Intersect for lane i.
func (b AABB4) Intersect(r Ray, tMin, tMax float32) (isHit [4]bool, t1 [4]float32) {
	minLane := [3]Vec4{b.MinX, b.MinY, b.MinZ}
	maxLane := [3]Vec4{b.MaxX, b.MaxY, b.MaxZ}

	var tEntry, tExit [4]float32
	for i := 0; i < 4; i++ {
		tEntry[i], tExit[i] = tMin, tMax
	}

	for axis := 0; axis < 3; axis++ {
		invD := 1 / r.Direction[axis]
		origin := r.Origin[axis]
		for i := 0; i < 4; i++ {
			t0 := (minLane[axis][i] - origin) * invD
			t1v := (maxLane[axis][i] - origin) * invD
			if invD < 0 {
				t0, t1v = t1v, t0
			}
			if t0 > tEntry[i] {
				tEntry[i] = t0
			}
			if t1v < tExit[i] {
				tExit[i] = t1v
			}
		}
	}

	for i := 0; i < 4; i++ {
		hit := tEntry[i] <= tExit[i] && !(tEntry[i] < 0 && tExit[i] < 0)
		isHit[i] = hit
		if hit {
			t1[i] = tEntry[i]
		}
	}
	return isHit, t1
}
