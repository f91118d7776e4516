package viz

import (
	"math"
	"math/bits"
	"strings"

	"github.com/san-kum/kinetics/internal/dynamo"
)

const blank rune = 0x2800

// braille dot bits indexed by [row][col] inside a 2x4 cell
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille raster. Each character cell holds 2x4 sub-pixels, so
// the addressable size is (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Pixels returns the raster size in sub-pixels.
func (c *Canvas) Pixels() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the sub-pixel at (x, y). Out of range coordinates are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Lit counts the lit sub-pixels.
func (c *Canvas) Lit() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			n += bits.OnesCount32(uint32(r - blank))
		}
	}
	return n
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport is the cube of world space shown on the canvas.
type Viewport struct {
	Center dynamo.Vector
	Half   float64
}

// DomainViewport frames a periodic box exactly.
func DomainViewport(d dynamo.Domain) Viewport {
	return Viewport{
		Center: dynamo.Vec(d.X.Lerp(0.5), d.Y.Lerp(0.5), 0),
		Half:   math.Max(d.X.Width(), d.Y.Width()) / 2,
	}
}

// Fit frames every particle with a 10% margin. minHalf is used when all
// particles sit on one point.
func Fit(e dynamo.Ensemble, minHalf float64) Viewport {
	points := make([]dynamo.Vector, len(e))
	for i := range e {
		points[i] = e[i].Position
	}
	return FitPoints(points, minHalf)
}

func FitPoints(points []dynamo.Vector, minHalf float64) Viewport {
	if len(points) == 0 {
		return Viewport{Half: math.Max(minHalf, 1)}
	}
	lo, hi := points[0], points[0]
	for _, p := range points {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	extent := hi.Sub(lo)
	half := 0.55 * math.Max(extent[0], math.Max(extent[1], extent[2]))
	if !(half > 0) {
		half = minHalf
	}
	if !(half > 0) {
		half = 1
	}
	return Viewport{Center: lo.Add(hi).Mul(0.5), Half: half}
}

// RenderTracks draws recorded x/y paths onto c, framed to fit all of them.
// Consecutive samples are joined with lines.
func RenderTracks(c *Canvas, tracks [][]dynamo.PhasePoint) {
	var points []dynamo.Vector
	for _, track := range tracks {
		for _, p := range track {
			points = append(points, dynamo.Vec(p.X, p.Y, 0))
		}
	}
	v := FitPoints(points, 1)
	w, h := c.Pixels()
	for _, track := range tracks {
		for i, p := range track {
			x1, y1, ok1 := v.Project(dynamo.Vec(p.X, p.Y, 0), w, h)
			if i == 0 {
				if ok1 {
					c.Set(x1, y1)
				}
				continue
			}
			prev := track[i-1]
			x0, y0, ok0 := v.Project(dynamo.Vec(prev.X, prev.Y, 0), w, h)
			if ok0 && ok1 {
				c.DrawLine(x0, y0, x1, y1)
			}
		}
	}
}

// Include grows the viewport so that p stays visible, keeping its center.
func (v *Viewport) Include(p dynamo.Vector) {
	d := p.Sub(v.Center)
	reach := 1.1 * math.Max(math.Abs(d[0]), math.Max(math.Abs(d[1]), math.Abs(d[2])))
	if reach > v.Half && !math.IsInf(reach, 0) {
		v.Half = reach
	}
}

// Normalize maps p into the unit cube [-1, 1]^3 around the center.
func (v Viewport) Normalize(p dynamo.Vector) dynamo.Vector {
	return p.Sub(v.Center).Mul(1 / v.Half)
}

// Project maps the x/y components of p onto a w x h sub-pixel raster with y
// pointing up. Both axes share one scale.
func (v Viewport) Project(p dynamo.Vector, w, h int) (int, int, bool) {
	n := v.Normalize(p)
	scale := float64(min(w, h)-1) / 2
	x := int(math.Round(float64(w-1)/2 + n[0]*scale))
	y := int(math.Round(float64(h-1)/2 - n[1]*scale))
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}
