package geometry

import "github.com/kellandavis/lumenmlt/pkg/core"

// Mesh is a named sequence of triangles, partitioned into primitives.
type Mesh struct {
	Name       string
	Triangles  []Triangle
	Primitives []*Primitive
}

// Primitive is a contiguous [Start, Start+Count) slice over its mesh's
// triangles, with its own BVH and an area-weighted triangle distribution
// used for light sampling.
type Primitive struct {
	MeshIdx     int
	Start       int
	Count       int
	MaterialIdx int
	BVH         *BVH
	TotalArea   float32
	AreaDist    *AreaDistribution
}

// NewPrimitive builds a primitive over mesh.Triangles[start:start+count],
// reordering that slice in place via BVH construction.
func NewPrimitive(meshIdx int, mesh *Mesh, start, count, materialIdx int) *Primitive {
	slice := mesh.Triangles[start : start+count]
	bvh := Build(slice)

	areas := make([]float32, count)
	var total float32
	for i, t := range bvh.Triangles {
		areas[i] = t.Area()
		total += areas[i]
	}

	return &Primitive{
		MeshIdx:     meshIdx,
		Start:       start,
		Count:       count,
		MaterialIdx: materialIdx,
		BVH:         bvh,
		TotalArea:   total,
		AreaDist:    NewAreaDistribution(areas),
	}
}

// Intersect queries the primitive's BVH. TriangleIdx in the returned Hit
// is local to bvh.Triangles (post-reordering), not the original mesh
// slice order.
func (p *Primitive) Intersect(r core.Ray, tMin, tMax float32) (Hit, bool) {
	return p.BVH.Intersect(r, tMin, tMax)
}

// AreaDistribution is a discrete distribution over triangle indices,
// weighted by triangle area.
type AreaDistribution struct {
	cdf   []float32
	total float32
}

// NewAreaDistribution builds a distribution from per-triangle areas.
func NewAreaDistribution(areas []float32) *AreaDistribution {
	cdf := make([]float32, len(areas))
	var running float32
	for i, a := range areas {
		running += a
		cdf[i] = running
	}
	return &AreaDistribution{cdf: cdf, total: running}
}

// Sample draws a triangle index weighted by area, given u in [0,1), and
// returns its selection probability (area / totalArea).
func (d *AreaDistribution) Sample(u float32) (idx int, pdf float32) {
	if d.total <= 0 || len(d.cdf) == 0 {
		return 0, 1
	}
	target := u * d.total
	lo, hi := 0, len(d.cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if d.cdf[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	area := d.cdf[lo]
	if lo > 0 {
		area -= d.cdf[lo-1]
	}
	return lo, area / d.total
}
