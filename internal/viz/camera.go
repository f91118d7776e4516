package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/kinetics/internal/dynamo"
)

// Camera orbits the viewport cube and projects it with perspective.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: math.Pi / 6, Pitch: math.Pi / 8, Zoom: 1}
}

func (c *Camera) Rotate(yaw, pitch float64) {
	c.Yaw += yaw
	c.Pitch = mgl64.Clamp(c.Pitch+pitch, -math.Pi/2, math.Pi/2)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) viewProjection(aspect float64) mgl64.Mat4 {
	view := mgl64.LookAtV(
		mgl64.Vec3{0, 0, 5 / c.Zoom},
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{0, 1, 0})
	proj := mgl64.Perspective(mgl64.DegToRad(60), aspect, 0.1, 100)
	rot := mgl64.HomogRotate3DX(c.Pitch).Mul4(mgl64.HomogRotate3DY(c.Yaw))
	return proj.Mul4(view).Mul4(rot)
}

// screen projects p and reports whether it lies in front of the camera.
func (c *Camera) screen(p dynamo.Vector, v Viewport, w, h int) (int, int, bool) {
	t := c.viewProjection(float64(w) / float64(h)).Mul4x1(v.Normalize(p).Vec4(1))
	if t[3] <= 0 {
		return 0, 0, false
	}
	t = t.Mul(1 / t[3])
	x, y := mgl64.GLToScreenCoords(t.X(), t.Y(), w, h)
	return x, y, true
}

// Project maps p, framed by v, to sub-pixel coordinates on a w x h raster.
func (c *Camera) Project(p dynamo.Vector, v Viewport, w, h int) (int, int, bool) {
	x, y, ok := c.screen(p, v, w, h)
	return x, y, ok && x >= 0 && x < w && y >= 0 && y < h
}

// DrawBox draws the edges of the viewport cube.
func (c *Camera) DrawBox(cv *Canvas, v Viewport) {
	w, h := cv.Pixels()
	var corners [8]dynamo.Vector
	for i := range corners {
		offset := dynamo.Vec(sign(i&1), sign(i&2), sign(i&4)).Mul(v.Half)
		corners[i] = v.Center.Add(offset)
	}
	edges := [12][2]int{
		{0, 1}, {2, 3}, {4, 5}, {6, 7},
		{0, 2}, {1, 3}, {4, 6}, {5, 7},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		x0, y0, ok0 := c.screen(corners[e[0]], v, w, h)
		x1, y1, ok1 := c.screen(corners[e[1]], v, w, h)
		if ok0 && ok1 {
			cv.DrawLine(x0, y0, x1, y1)
		}
	}
}

func sign(bit int) float64 {
	if bit != 0 {
		return 1
	}
	return -1
}
