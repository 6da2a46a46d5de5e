// Package dataset is the boundary to the post-processing reader: what a
// loaded result exposes (field names per association, topology counts) and
// the consistency checks run against it.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/mesh"
)

// Info is what a reader reports about a loaded result.
type Info interface {
	PointFields() []string
	CellFields() []string
	NumberOfPoints() int
	NumberOfCells() int
}

// Association says where a field's values live.
type Association string

const (
	Points Association = "POINTS"
	Cells  Association = "CELLS"
)

// ColorBy returns the association to color a view of field by. Point data
// wins when the field is present in both. ok is false when the reader does
// not expose the field at all.
func ColorBy(info Info, field string) (Association, bool) {
	if slices.Contains(info.PointFields(), field) {
		return Points, true
	}
	if slices.Contains(info.CellFields(), field) {
		return Cells, true
	}
	return "", false
}

// CheckCounts compares the reader's topology with the mesh. Both counts
// must match exactly.
func CheckCounts(info Info, want mesh.Counts) error {
	if got := info.NumberOfPoints(); got != want.Points {
		return ferrors.Assertionf("Number of Points: reader:%d != msh:%d", got, want.Points)
	}
	if got := info.NumberOfCells(); got != want.Cells {
		return ferrors.Assertionf("Number of Cells: reader:%d != msh:%d", got, want.Cells)
	}
	return nil
}

// CheckFieldKeys compares the field types and units computed from the model
// with the ones the pipeline persisted. Each computed set must equal its
// persisted set, and every typed field must have a unit.
func CheckFieldKeys(fieldType, fieldTypeJSON, fieldUnits, fieldUnitsJSON []string) error {
	if !sameKeys(fieldType, fieldTypeJSON) {
		return ferrors.Assertionf("fieldtype: %v != json:%v", sorted(fieldType), sorted(fieldTypeJSON))
	}
	if !sameKeys(fieldUnits, fieldUnitsJSON) {
		return ferrors.Assertionf("fieldunits: %v != json:%v", sorted(fieldUnits), sorted(fieldUnitsJSON))
	}
	if len(fieldType) > len(fieldUnits) {
		return ferrors.Assertionf("fieldtype:%d > fieldunits:%d", len(fieldType), len(fieldUnits))
	}
	return nil
}

func sameKeys(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	other := make(map[string]bool, len(b))
	for _, k := range b {
		if !set[k] {
			return false
		}
		other[k] = true
	}
	return len(set) == len(other)
}

func sorted(keys []string) []string {
	out := slices.Clone(keys)
	sort.Strings(out)
	return out
}

// LoadKeys returns the top-level keys of the JSON object in path, sorted.
func LoadKeys(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Snapshot is a serialized Info, written by the reader next to its exports.
type Snapshot struct {
	Points     int      `json:"points" yaml:"points"`
	Cells      int      `json:"cells" yaml:"cells"`
	PointData  []string `json:"point_data" yaml:"point_data"`
	CellData   []string `json:"cell_data" yaml:"cell_data"`
	Dimension  int      `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	SourceFile string   `json:"source,omitempty" yaml:"source,omitempty"`
}

func (s *Snapshot) PointFields() []string { return s.PointData }
func (s *Snapshot) CellFields() []string  { return s.CellData }
func (s *Snapshot) NumberOfPoints() int   { return s.Points }
func (s *Snapshot) NumberOfCells() int    { return s.Cells }

// LoadSnapshot reads a snapshot from a JSON file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Points < 0 || s.Cells < 0 {
		return nil, ferrors.Configf("%s: negative topology count", path)
	}
	return &s, nil
}
