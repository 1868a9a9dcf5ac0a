package scene

import (
	"math"

	"github.com/kellandavis/lumenmlt/pkg/core"
)

// Camera is a pinhole camera with a fixed aspect ratio, an orthonormal
// {forward, up, right} basis and a virtual film plane at DistanceToFilm.
type Camera struct {
	ResolutionX, ResolutionY int
	FOVDegrees               float32
	FilmSize                 float32
	DistanceToFilm           float32

	Position core.Vec3
	Forward  core.Vec3
	Up       core.Vec3
	Right    core.Vec3

	worldUp core.Vec3
}

// NewCamera builds a camera looking from position toward lookAt.
func NewCamera(resX, resY int, fovDegrees float32, position, lookAt, worldUp core.Vec3) *Camera {
	forward := lookAt.Sub(position).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward).Normalize()

	filmSize := 2 * float32(math.Tan(float64(fovDegrees)*math.Pi/180/2))

	return &Camera{
		ResolutionX:    resX,
		ResolutionY:    resY,
		FOVDegrees:     fovDegrees,
		FilmSize:       filmSize,
		DistanceToFilm: 1,
		Position:       position,
		Forward:        forward,
		Up:             up,
		Right:          right,
		worldUp:        worldUp.Normalize(),
	}
}

// EyeRay forms a perspective ray through a point on the film plane,
// where pixelXY is in continuous pixel coordinates (jittered samples
// fall between integer pixel centers).
func (c *Camera) EyeRay(pixelXY core.Vec2) core.Ray {
	aspect := float32(c.ResolutionX) / float32(c.ResolutionY)
	u := (pixelXY.X()/float32(c.ResolutionX) - 0.5) * c.FilmSize
	v := (0.5 - pixelXY.Y()/float32(c.ResolutionY)) * c.FilmSize / aspect

	filmPoint := c.Position.
		Add(c.Forward.Mul(c.DistanceToFilm)).
		Add(c.Right.Mul(u)).
		Add(c.Up.Mul(v))

	return core.NewRay(c.Position, filmPoint.Sub(c.Position).Normalize())
}

// Rotate applies a yaw (around world up) and pitch (around the camera's
// right axis) delta, then re-derives right/up from forward so the basis
// stays orthonormal.
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	forward := rotateAroundAxis(c.Forward, c.worldUp, deltaYaw)
	right := forward.Cross(c.worldUp).Normalize()
	forward = rotateAroundAxis(forward, right, deltaPitch)

	c.Forward = forward.Normalize()
	c.Right = c.Forward.Cross(c.worldUp).Normalize()
	c.Up = c.Right.Cross(c.Forward).Normalize()
}

// Move translates the camera's position by delta, expressed in the
// camera's own basis (x=right, y=up, z=forward).
func (c *Camera) Move(delta core.Vec3) {
	c.Position = c.Position.
		Add(c.Right.Mul(delta.X())).
		Add(c.Up.Mul(delta.Y())).
		Add(c.Forward.Mul(delta.Z()))
}

// rotateAroundAxis applies Rodrigues' rotation formula.
func rotateAroundAxis(v, axis core.Vec3, angle float32) core.Vec3 {
	cos := float32(math.Cos(float64(angle)))
	sin := float32(math.Sin(float64(angle)))
	return v.Mul(cos).
		Add(axis.Cross(v).Mul(sin)).
		Add(axis.Mul(axis.Dot(v) * (1 - cos)))
}
