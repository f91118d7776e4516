package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/kinetics/internal/dynamo"
)

// FieldPusher advances particle velocities under a uniform field.
type FieldPusher interface {
	Name() string
	ApplyField(e dynamo.Ensemble, dt float64, f dynamo.Field)
}

var pushers = map[string]func(workers int) FieldPusher{
	"boris":              func(w int) FieldPusher { return Boris{Workers: w} },
	"boris_relativistic": func(w int) FieldPusher { return BorisRelativistic{Workers: w} },
}

// Get returns the field pusher registered under name.
func Get(name string, workers int) (FieldPusher, error) {
	fn, ok := pushers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(workers), nil
}

func List() []string {
	names := make([]string, 0, len(pushers))
	for name := range pushers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
