// Package scene owns the read-only world the integrators render: camera,
// meshes/primitives, materials, textures and lights.
package scene

import (
	"fmt"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/geometry"
	"github.com/kellandavis/lumenmlt/pkg/material"
)

// HitInfo is the scene-level synthesis of a BVH hit: interpolated
// shading normal and texture coordinate, plus a geometric normal
// recomputed from the triangle's edges (never interpolated, so it is
// always a consistent face normal).
type HitInfo struct {
	Position        core.Vec3
	ShadingNormal   core.Vec3
	GeometricNormal core.Vec3
	UV              core.Vec2
	MaterialIdx     int
	MeshIdx         int
	PrimitiveIdx    int
	LightIdx        int // -1 if the hit primitive is not a light
	Distance        float32
}

// Scene is read-only for the duration of any integrator accumulate call;
// the driver must guarantee no mutation while worker tasks are
// outstanding (see pkg/renderer).
type Scene struct {
	Camera    *Camera
	Meshes    []*geometry.Mesh
	Materials []material.Material
	Lights    []Light

	lightByPrimitive map[[2]int]int // (meshIdx, primitiveIdx) -> light index
}

// NewScene validates and assembles a scene.
func NewScene(camera *Camera, meshes []*geometry.Mesh, materials []material.Material, lights []Light) (*Scene, error) {
	if camera == nil {
		return nil, fmt.Errorf("scene: camera is required")
	}
	for _, l := range lights {
		if l.Kind == LightMesh {
			if l.MeshIdx < 0 || l.MeshIdx >= len(meshes) {
				return nil, fmt.Errorf("scene: mesh light references out-of-range mesh %d", l.MeshIdx)
			}
			mesh := meshes[l.MeshIdx]
			if l.PrimitiveIdx < 0 || l.PrimitiveIdx >= len(mesh.Primitives) {
				return nil, fmt.Errorf("scene: mesh light references out-of-range primitive %d", l.PrimitiveIdx)
			}
		}
	}

	byPrim := make(map[[2]int]int)
	for i, l := range lights {
		if l.Kind == LightMesh {
			byPrim[[2]int{l.MeshIdx, l.PrimitiveIdx}] = i
		}
	}

	return &Scene{Camera: camera, Meshes: meshes, Materials: materials, Lights: lights, lightByPrimitive: byPrim}, nil
}

// Intersect walks every primitive of every mesh, keeping the global
// nearest hit and synthesizing a HitInfo from it.
func (s *Scene) Intersect(r core.Ray, tMin, tMax float32) (HitInfo, bool) {
	var best HitInfo
	found := false
	bestDist := tMax

	for mi, mesh := range s.Meshes {
		for pi, prim := range mesh.Primitives {
			h, ok := prim.Intersect(r, tMin, bestDist)
			if !ok {
				continue
			}
			tri := prim.BVH.Triangles[h.TriangleIdx]

			shadingNormal := tri.N0.Mul(h.Alpha).Add(tri.N1.Mul(h.Beta)).Add(tri.N2.Mul(h.Gamma)).Normalize()
			geomNormal := tri.P1.Sub(tri.P0).Cross(tri.P2.Sub(tri.P0)).Normalize()
			uv := core.NewVec2(
				tri.UV0.X()*h.Alpha+tri.UV1.X()*h.Beta+tri.UV2.X()*h.Gamma,
				tri.UV0.Y()*h.Alpha+tri.UV1.Y()*h.Beta+tri.UV2.Y()*h.Gamma,
			)

			lightIdx := -1
			if idx, ok := s.lightByPrimitive[[2]int{mi, pi}]; ok {
				lightIdx = idx
			}

			best = HitInfo{
				Position:        h.Point,
				ShadingNormal:   shadingNormal,
				GeometricNormal: geomNormal,
				UV:              uv,
				MaterialIdx:     prim.MaterialIdx,
				MeshIdx:         mi,
				PrimitiveIdx:    pi,
				LightIdx:        lightIdx,
				Distance:        h.T,
			}
			found = true
			bestDist = h.T
		}
	}
	return best, found
}

// Material returns the material for a HitInfo, or a default diffuse-gray
// material if no material index was assigned.
func (s *Scene) Material(hit HitInfo) material.Material {
	if hit.MaterialIdx < 0 || hit.MaterialIdx >= len(s.Materials) {
		return material.Material{BaseColorFactor: core.NewVec3(0.8, 0.8, 0.8)}
	}
	return s.Materials[hit.MaterialIdx]
}

// Primitive resolves a (meshIdx, primitiveIdx) pair.
func (s *Scene) Primitive(meshIdx, primitiveIdx int) *geometry.Primitive {
	return s.Meshes[meshIdx].Primitives[primitiveIdx]
}

// hasVisibility casts a shadow ray from a just off surface a toward
// point b, bounded short of b by 2*Epsilon. It additionally rejects the
// connection if either endpoint's direction lies below its own surface
// by more than the epsilon threshold.
func (s *Scene) hasVisibility(aPos, aGeomNormal, bPos, bGeomNormal core.Vec3) bool {
	toB := bPos.Sub(aPos)
	dist := toB.Length()
	if dist < 2*material.Epsilon {
		return true
	}
	dir := toB.Mul(1 / dist)

	if dir.Dot(aGeomNormal) < -material.Epsilon {
		return false
	}
	if dir.Negate().Dot(bGeomNormal) < -material.Epsilon {
		return false
	}

	origin := aPos.Add(aGeomNormal.Mul(material.Epsilon))
	shadow := core.NewRay(origin, dir)
	_, hit := s.Intersect(shadow, 0, dist-2*material.Epsilon)
	return !hit
}

// HasVisibility is the public, symmetric visibility test between two
// surface points with their geometric normals.
func (s *Scene) HasVisibility(aPos, aGeomNormal, bPos, bGeomNormal core.Vec3) bool {
	return s.hasVisibility(aPos, aGeomNormal, bPos, bGeomNormal)
}
