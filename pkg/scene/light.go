package scene

import "github.com/kellandavis/lumenmlt/pkg/core"

// LightKind tags a Light's variant. Lights are a tagged sum, branched on
// directly — never a virtual-dispatch interface.
type LightKind int

const (
	LightPoint LightKind = iota
	LightMesh
)

// Light is either a point light (position + wattage) or a mesh light
// (a reference to an emissive primitive already present in the scene).
type Light struct {
	Kind LightKind

	// LightPoint fields.
	Position core.Vec3
	Wattage  float32

	// LightMesh fields.
	MeshIdx      int
	PrimitiveIdx int
}
