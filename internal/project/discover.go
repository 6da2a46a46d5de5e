package project

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
)

// ExportsDir is the tail of every visualization export directory.
const ExportsDir = "cfpdes.exports/paraview.exports"

// geometryMarkers maps case-directory name fragments to geometry families.
// First match wins.
var geometryMarkers = []struct {
	Fragment string
	Geometry string
}{
	{"-axi-", "Axi"},
	{"-2d-", "2D"},
	{"-3d-", "3D"},
}

// DetectGeometry infers the geometry family from a case path such as
// "cases/cfpdes-thmagel-3d-static-linear/Tore/np_1".
func DetectGeometry(casePath string) (string, bool) {
	lower := "-" + strings.ToLower(filepath.ToSlash(casePath)) + "-"
	lower = strings.NewReplacer("/", "-", "_", "-").Replace(lower)
	for _, m := range geometryMarkers {
		if strings.Contains(lower, m.Fragment) {
			return m.Geometry, true
		}
	}
	return "", false
}

// DiscoverCases finds export directories under root and builds one case per
// directory whose geometry can be inferred. Each rendered view becomes a
// compared field. This is used when the cases section is empty or absent.
func DiscoverCases(root string) ([]config.CaseConfig, error) {
	var cases []config.CaseConfig

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (strings.HasPrefix(d.Name(), ".") || isExcludedDir(d.Name())) {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasSuffix(rel, ExportsDir) {
			return nil
		}

		caseDir := strings.TrimSuffix(strings.TrimSuffix(rel, ExportsDir), "/")
		geom, ok := DetectGeometry(caseDir)
		if !ok {
			return filepath.SkipDir
		}

		c := config.CaseConfig{
			Name:     caseName(caseDir),
			Geometry: geom,
			Basedir:  rel,
		}
		c.ApplyDefaults()
		c.Fields = discoverFields(filepath.Join(root, filepath.FromSlash(c.Views)))
		cases = append(cases, c)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

// caseName joins the last three directories of a case path, e.g.
// "cfpdes-thmagel-3d-static-linear-Tore-np_1".
func caseName(caseDir string) string {
	parts := strings.Split(path.Clean(caseDir), "/")
	if len(parts) > 3 {
		parts = parts[len(parts)-3:]
	}
	return strings.Join(parts, "-")
}

func discoverFields(viewsDir string) []config.FieldConfig {
	entries, err := os.ReadDir(viewsDir)
	if err != nil {
		return nil
	}
	var fields []config.FieldConfig
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		fields = append(fields, config.FieldConfig{Field: strings.TrimSuffix(e.Name(), ".png")})
	}
	return fields
}

// isExcludedDir returns true for directories that never hold cases.
func isExcludedDir(name string) bool {
	excluded := map[string]bool{
		"node_modules": true,
		"vendor":       true,
		"Pictures":     true,
		"models":       true,
		"views":        true,
		"__pycache__":  true,
	}
	return excluded[name]
}
