package scene

import (
	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/geometry"
	"github.com/kellandavis/lumenmlt/pkg/material"
)

// NewSingleTriangleScene is a minimal diagnostic scene: one Lambertian
// triangle lit by a point light. No test in this module builds it.
func NewSingleTriangleScene(resX, resY int) (*Scene, error) {
	tri := geometry.Triangle{
		P0: core.NewVec3(0, 0, 0),
		P1: core.NewVec3(1, 0, 0),
		P2: core.NewVec3(0, 1, 0),
		N0: core.NewVec3(0, 0, -1),
		N1: core.NewVec3(0, 0, -1),
		N2: core.NewVec3(0, 0, -1),
	}
	mesh := &geometry.Mesh{Name: "triangle", Triangles: []geometry.Triangle{tri}}
	mesh.Primitives = []*geometry.Primitive{geometry.NewPrimitive(0, mesh, 0, 1, 0)}

	materials := []material.Material{{BaseColorFactor: core.NewVec3(0.8, 0.8, 0.8)}}
	lights := []Light{{Kind: LightPoint, Position: core.NewVec3(0.25, 0.25, -3), Wattage: 40}}

	camera := NewCamera(resX, resY, 40, core.NewVec3(0.25, 0.25, -1), core.NewVec3(0.25, 0.25, 0), core.NewVec3(0, 1, 0))

	return NewScene(camera, []*geometry.Mesh{mesh}, materials, lights)
}
