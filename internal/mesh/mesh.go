// Package mesh locates the mesh a result was computed on and reads the
// topology counts the mesh tooling reports for it.
package mesh

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

// DefaultAnchor is the directory the solver's recorded mesh paths are made
// relative to.
const DefaultAnchor = "hifimagnet.paraview/"

const (
	exportCase   = "cfpdes.exports/Export.case"
	meshPathName = "cfpdes.mesh.path"
)

// Partitioned meshes are recorded as "<name>_p<N>.json"; the source mesh is
// "<name>.msh".
var partitionSuffix = regexp.MustCompile(`_p\d+\.json`)

// MeshPathFile returns the mesh-path file that sits next to an export case.
func MeshPathFile(exportCasePath string) string {
	return strings.Replace(exportCasePath, exportCase, meshPathName, 1)
}

// ResolvePath reads the first line of meshPathFile, keeps what follows the
// anchor directory, joins it to base and maps a partitioned mesh name back
// to its source mesh.
func ResolvePath(meshPathFile, anchor, base string) (string, error) {
	line, err := firstLine(meshPathFile)
	if err != nil {
		return "", err
	}
	if anchor == "" {
		anchor = DefaultAnchor
	}
	_, rel, ok := strings.Cut(line, anchor)
	if !ok {
		return "", ferrors.NotFound("mesh path anchor", fmt.Sprintf("%q in %s", anchor, meshPathFile))
	}
	rel = partitionSuffix.ReplaceAllString(rel, ".msh")
	return filepath.Join(base, filepath.FromSlash(rel)), nil
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", ferrors.Configf("%s: empty mesh path file", path)
	}
	return strings.TrimSpace(sc.Text()), nil
}

// Counts is the mesh topology for the highest dimension. Points is the sum
// over physical groups, so nodes on a boundary between two groups are
// counted once per group, as the reader counts them.
type Counts struct {
	Dimension int `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Points    int `json:"points" yaml:"points"`
	Cells     int `json:"cells" yaml:"cells"`
}

// LoadCounts reads counts from a YAML or JSON sidecar file.
func LoadCounts(path string) (Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Counts{}, fmt.Errorf("%s: %w", path, err)
	}
	if c.Points < 0 || c.Cells < 0 {
		return Counts{}, ferrors.Configf("%s: negative topology count", path)
	}
	return c, nil
}
