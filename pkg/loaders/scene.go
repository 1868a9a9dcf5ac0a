package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kellandavis/lumenmlt/pkg/core"
	"github.com/kellandavis/lumenmlt/pkg/geometry"
	"github.com/kellandavis/lumenmlt/pkg/material"
	"github.com/kellandavis/lumenmlt/pkg/scene"
)

// LoadScene reads a minimal line-oriented scene description:
//
//	camera fov px py pz lx ly lz ux uy uz
//	material baseR baseG baseB metallic roughness emitR emitG emitB emitStrength transmission ior
//	triangle matIdx x0 y0 z0 x1 y1 z1 x2 y2 z2
//	pointlight px py pz wattage
//
// One directive per line; blank lines and lines starting with # are
// ignored. This is the loader's entire contract — GLTF import and other
// richer formats stay outside the core, per the scene-loader interface.
func LoadScene(filename string, resX, resY int) (*scene.Scene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loaders: open scene %q: %w", filename, err)
	}
	defer f.Close()

	var cam *scene.Camera
	var materials []material.Material
	var tris []geometry.Triangle
	triMat := map[int][]int{} // materialIdx -> triangle indices
	var lights []scene.Light

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		directive := fields[0]
		nums, err := parseFloats(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("loaders: scene %q line %d: %w", filename, lineNo, err)
		}

		switch directive {
		case "camera":
			if len(nums) != 10 {
				return nil, fmt.Errorf("loaders: scene %q line %d: camera wants 10 numbers, got %d", filename, lineNo, len(nums))
			}
			cam = scene.NewCamera(resX, resY, float32(nums[0]),
				core.NewVec3(float32(nums[1]), float32(nums[2]), float32(nums[3])),
				core.NewVec3(float32(nums[4]), float32(nums[5]), float32(nums[6])),
				core.NewVec3(float32(nums[7]), float32(nums[8]), float32(nums[9])))

		case "material":
			if len(nums) != 11 {
				return nil, fmt.Errorf("loaders: scene %q line %d: material wants 11 numbers, got %d", filename, lineNo, len(nums))
			}
			materials = append(materials, material.Material{
				BaseColorFactor:  core.NewVec3(float32(nums[0]), float32(nums[1]), float32(nums[2])),
				Metallic:         float32(nums[3]),
				Roughness:        float32(nums[4]),
				EmissiveFactor:   core.NewVec3(float32(nums[5]), float32(nums[6]), float32(nums[7])),
				EmissiveStrength: float32(nums[8]),
				Transmission:     float32(nums[9]),
				IOR:              float32(nums[10]),
			})

		case "triangle":
			if len(nums) != 10 {
				return nil, fmt.Errorf("loaders: scene %q line %d: triangle wants 10 numbers, got %d", filename, lineNo, len(nums))
			}
			matIdx := int(nums[0])
			p0 := core.NewVec3(float32(nums[1]), float32(nums[2]), float32(nums[3]))
			p1 := core.NewVec3(float32(nums[4]), float32(nums[5]), float32(nums[6]))
			p2 := core.NewVec3(float32(nums[7]), float32(nums[8]), float32(nums[9]))
			n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
			triMat[matIdx] = append(triMat[matIdx], len(tris))
			tris = append(tris, geometry.Triangle{P0: p0, P1: p1, P2: p2, N0: n, N1: n, N2: n})

		case "pointlight":
			if len(nums) != 4 {
				return nil, fmt.Errorf("loaders: scene %q line %d: pointlight wants 4 numbers, got %d", filename, lineNo, len(nums))
			}
			lights = append(lights, scene.Light{
				Kind:     scene.LightPoint,
				Position: core.NewVec3(float32(nums[0]), float32(nums[1]), float32(nums[2])),
				Wattage:  float32(nums[3]),
			})

		default:
			return nil, fmt.Errorf("loaders: scene %q line %d: unknown directive %q", filename, lineNo, directive)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("loaders: reading scene %q: %w", filename, err)
	}
	if cam == nil {
		return nil, fmt.Errorf("loaders: scene %q has no camera directive", filename)
	}

	mesh := &geometry.Mesh{Name: filename, Triangles: tris}
	// One primitive per material, each a contiguous slice: triangles are
	// already grouped by material index as the file was read in order
	// for files that declare one material's triangles contiguously; for
	// interleaved declarations this reorders the mesh's triangle slice
	// per primitive below.
	reordered := make([]geometry.Triangle, 0, len(tris))
	for matIdx := 0; matIdx < len(materials); matIdx++ {
		start := len(reordered)
		for _, idx := range triMat[matIdx] {
			reordered = append(reordered, tris[idx])
		}
		if len(reordered) == start {
			continue
		}
		mesh.Triangles = reordered
		mesh.Primitives = append(mesh.Primitives, geometry.NewPrimitive(0, mesh, start, len(reordered)-start, matIdx))
	}
	mesh.Triangles = reordered

	return scene.NewScene(cam, []*geometry.Mesh{mesh}, materials, lights)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d (%q): %w", i, f, err)
		}
		out[i] = v
	}
	return out, nil
}
