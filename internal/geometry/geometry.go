// Package geometry defines the simulation geometry families fieldcheck
// understands. The set is closed: tolerances and column naming schemes are
// keyed by Family, so adding a family is a compile-time change.
package geometry

import (
	"fmt"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

// Family is a simulation dimensionality.
type Family int

const (
	TwoD Family = iota + 1
	ThreeD
	Axi
)

var names = map[Family]string{
	TwoD:   "2D",
	ThreeD: "3D",
	Axi:    "Axi",
}

// All returns every family in declaration order.
func All() []Family {
	return []Family{TwoD, ThreeD, Axi}
}

// Parse resolves a family name ("2D", "3D", "Axi").
func Parse(s string) (Family, error) {
	for f, name := range names {
		if name == s {
			return f, nil
		}
	}
	return 0, ferrors.NotConfigured("geometry family", s)
}

func (f Family) String() string {
	if name, ok := names[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Valid reports whether f is one of the declared families.
func (f Family) Valid() bool {
	_, ok := names[f]
	return ok
}

// Dim returns the mesh dimension the family is discretized in.
// Axisymmetric cases are meshed in the meridian plane.
func (f Family) Dim() int {
	if f == ThreeD {
		return 3
	}
	return 2
}

// IsAxisymmetric reports whether f is the axisymmetric family.
func (f Family) IsAxisymmetric() bool {
	return f == Axi
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, ferrors.NotConfigured("geometry family", f.String())
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
