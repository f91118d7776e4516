// Package boundary holds the box boundary conditions and the side sampler
// that observes particles leaving the box.
package boundary

import "github.com/san-kum/kinetics/internal/dynamo"

// ApplyPeriodic resets any x or y coordinate that left the domain to the
// opposite edge. The excess distance is discarded, so this is not a modulo.
func ApplyPeriodic(e dynamo.Ensemble, d dynamo.Domain) {
	for i := range e {
		p := &e[i].Position
		p[0] = wrap(p[0], d.X)
		p[1] = wrap(p[1], d.Y)
	}
}

func wrap(x float64, iv dynamo.Interval) float64 {
	switch {
	case x > iv.End:
		return iv.Begin
	case x < iv.Begin:
		return iv.End
	}
	return x
}
