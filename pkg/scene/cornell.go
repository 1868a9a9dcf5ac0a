package scene

import (
	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/geometry"
	"github.com/kellandavis/lumenmlt/pkg/material"
)

// quad appends two triangles for a CCW-wound quad a,b,c,d, in that
// winding order, returning the appended triangles.
func quad(a, b, c, d core.Vec3) []geometry.Triangle {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	uv0, uv1, uv2, uv3 := core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1), core.NewVec2(0, 1)
	mk := func(p0, p1, p2 core.Vec3, t0, t1, t2 core.Vec2) geometry.Triangle {
		return geometry.Triangle{P0: p0, P1: p1, P2: p2, N0: n, N1: n, N2: n, UV0: t0, UV1: t1, UV2: t2}
	}
	return []geometry.Triangle{mk(a, b, c, uv0, uv1, uv2), mk(a, c, d, uv0, uv2, uv3)}
}

// NewCornellBox builds a five-walled Lambertian box (no front wall) with
// a single rectangular ceiling emitter, matching end-to-end scenario S4.
func NewCornellBox(resX, resY int, emitterStrength float32) (*Scene, error) {
	const s = 2.0

	materials := []material.Material{
		{BaseColorFactor: core.NewVec3(0.73, 0.73, 0.73)}, // 0: white walls
		{BaseColorFactor: core.NewVec3(0.65, 0.05, 0.05)}, // 1: red wall
		{BaseColorFactor: core.NewVec3(0.12, 0.45, 0.15)}, // 2: green wall
		{BaseColorFactor: core.NewVec3(1, 1, 1), EmissiveFactor: core.NewVec3(1, 1, 1), EmissiveStrength: emitterStrength}, // 3: ceiling emitter
	}

	parts := []struct {
		tris   []geometry.Triangle
		matIdx int
	}{
		{quad(core.NewVec3(-s, -s, -s), core.NewVec3(s, -s, -s), core.NewVec3(s, -s, s), core.NewVec3(-s, -s, s)), 0}, // floor
		{quad(core.NewVec3(-s, s, s), core.NewVec3(s, s, s), core.NewVec3(s, s, -s), core.NewVec3(-s, s, -s)), 0},     // ceiling
		{quad(core.NewVec3(-s, -s, s), core.NewVec3(s, -s, s), core.NewVec3(s, s, s), core.NewVec3(-s, s, s)), 0},     // back wall
		{quad(core.NewVec3(-s, -s, s), core.NewVec3(-s, s, s), core.NewVec3(-s, s, -s), core.NewVec3(-s, -s, -s)), 1}, // left wall
		{quad(core.NewVec3(s, -s, -s), core.NewVec3(s, s, -s), core.NewVec3(s, s, s), core.NewVec3(s, -s, s)), 2},     // right wall
		{quad(core.NewVec3(-s/2, s-1e-3, -s/2), core.NewVec3(s/2, s-1e-3, -s/2), core.NewVec3(s/2, s-1e-3, s/2), core.NewVec3(-s/2, s-1e-3, s/2)), 3}, // emitter
	}

	var allTris []geometry.Triangle
	for _, p := range parts {
		allTris = append(allTris, p.tris...)
	}

	mesh := &geometry.Mesh{Name: "cornell-box", Triangles: allTris}
	start := 0
	emitterPrimIdx := len(parts) - 1
	for _, p := range parts {
		mesh.Primitives = append(mesh.Primitives, geometry.NewPrimitive(0, mesh, start, len(p.tris), p.matIdx))
		start += len(p.tris)
	}

	meshes := []*geometry.Mesh{mesh}
	lights := []Light{{Kind: LightMesh, MeshIdx: 0, PrimitiveIdx: emitterPrimIdx}}

	camera := NewCamera(resX, resY, 40, core.NewVec3(0, 0, -s+0.2), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	return NewScene(camera, meshes, materials, lights)
}
