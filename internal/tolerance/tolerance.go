// Package tolerance holds the precision contracts used by every comparator:
// a static table from (quantity kind, geometry family) to a relative
// tolerance.
//
// Temperature is held to 0.1% in 2D and Axi and 1% in 3D, where mesh
// interpolation and integration add error. The von Mises stress is a derived
// quantity (derivatives and tensor operations) and is held to 1% everywhere.
// Image comparisons use 0.001 for all families.
//
// Lookups for pairs that are not in the table fail with a KindNotConfigured
// error. There is no fallback value.
package tolerance

import (
	"fmt"
	"sort"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
)

// Kind is the quantity axis of the tolerance table.
type Kind string

const (
	Temperature Kind = "temperature"
	VonMises    Kind = "vonmises"
	Image       Kind = "image"
)

// ParseKind resolves a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := table[k]; !ok {
		return "", ferrors.NotConfigured("tolerance kind", s)
	}
	return k, nil
}

// Entry is one row of the tolerance table.
type Entry struct {
	Kind        Kind            `json:"kind" yaml:"kind"`
	Geometry    geometry.Family `json:"geometry" yaml:"geometry"`
	Relative    float64         `json:"relative" yaml:"relative"`
	Description string          `json:"description" yaml:"description"`
}

type row struct {
	relative    float64
	description string
}

var table = map[Kind]map[geometry.Family]row{
	Temperature: {
		geometry.TwoD:   {0.001, "Standard precision for 2D thermal calculations"},
		geometry.ThreeD: {0.01, "Relaxed tolerance for 3D thermal calculations"},
		geometry.Axi:    {0.001, "Standard precision for axisymmetric thermal calculations"},
	},
	VonMises: {
		geometry.TwoD:   {0.01, "Standard tolerance for derived stress calculations"},
		geometry.ThreeD: {0.01, "Standard tolerance for derived stress calculations"},
		geometry.Axi:    {0.01, "Standard tolerance for derived stress calculations"},
	},
	Image: {
		geometry.TwoD:   {0.001, "Visual consistency check"},
		geometry.ThreeD: {0.001, "Visual consistency check"},
		geometry.Axi:    {0.001, "Visual consistency check"},
	},
}

// Lookup returns the table entry for kind and geometry.
func Lookup(kind Kind, geom geometry.Family) (Entry, error) {
	byGeom, ok := table[kind]
	if !ok {
		return Entry{}, ferrors.NotConfigured("tolerance kind", string(kind))
	}
	r, ok := byGeom[geom]
	if !ok {
		return Entry{}, ferrors.NotConfigured("tolerance", fmt.Sprintf("%s/%s", kind, geom))
	}
	return Entry{Kind: kind, Geometry: geom, Relative: r.relative, Description: r.description}, nil
}

// Get returns the relative tolerance for kind and geometry.
func Get(kind Kind, geom geometry.Family) (float64, error) {
	e, err := Lookup(kind, geom)
	if err != nil {
		return 0, err
	}
	return e.Relative, nil
}

// GetString is Get with both axes given by name, as they appear in suite
// configuration and on the command line.
func GetString(kind, geom string) (float64, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return 0, err
	}
	g, err := geometry.Parse(geom)
	if err != nil {
		return 0, err
	}
	return Get(k, g)
}

// Entries lists the whole table ordered by kind, then geometry.
func Entries() []Entry {
	kinds := make([]string, 0, len(table))
	for k := range table {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	var entries []Entry
	for _, k := range kinds {
		for _, g := range geometry.All() {
			if e, err := Lookup(Kind(k), g); err == nil {
				entries = append(entries, e)
			}
		}
	}
	return entries
}
