package core

import "math"

// AABB is an axis-aligned bounding box. An "empty" box (no point fit into
// it yet) has Min = +inf and Max = -inf componentwise, so the first Fit
// call establishes it correctly.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns a box with no extent, ready to be grown by Fit/Union.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{Min: NewVec3(inf, inf, inf), Max: NewVec3(-inf, -inf, -inf)}
}

// NewAABB builds a box from two corners, which need not be ordered.
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: MinVec3(a, b), Max: MaxVec3(a, b)}
}

// Fit grows the box to contain p.
func (b AABB) Fit(p Vec3) AABB {
	return AABB{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: MinVec3(b.Min, o.Min), Max: MaxVec3(b.Max, o.Max)}
}

// Size returns the box's extent along each axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box's midpoint.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// LargestAxis returns the axis (0=X,1=Y,2=Z) with the longest extent;
// ties are resolved by preferring X over Y over Z.
func (b AABB) LargestAxis() int {
	s := b.Size()
	if s[0] >= s[1] && s[0] >= s[2] {
		return 0
	}
	if s[1] >= s[2] {
		return 1
	}
	return 2
}

// HalfArea is sx*(sy+sz) + sy*sz, the SAH cost proxy (half the surface
// area, since the missing factor of 2 cancels out of every comparison).
func (b AABB) HalfArea() float32 {
	s := b.Size()
	return s[0]*(s[1]+s[2]) + s[1]*s[2]
}

// Intersect performs the scalar slab test. It returns the entry distance
// and true on a hit within [tMin, tMax]; callers treat the returned
// distance as the nearest candidate along the ray.
func (b AABB) Intersect(r Ray, tMin, tMax float32) (float32, bool) {
	tEntry, tExit := tMin, tMax
	for axis := 0; axis < 3; axis++ {
		invD := 1 / r.Direction[axis]
		t0 := (b.Min[axis] - r.Origin[axis]) * invD
		t1 := (b.Max[axis] - r.Origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tEntry {
			tEntry = t0
		}
		if t1 < tExit {
			tExit = t1
		}
		if tExit < tEntry {
			return 0, false
		}
	}
	if tEntry > tExit || (tEntry < 0 && tExit < 0) {
		return 0, false
	}
	return tEntry, true
}
