// Package config provides configuration loading and validation for
// .fieldcheck/config.json.
package config

import "encoding/json"

// Config represents the complete suite configuration.
type Config struct {
	Suite    SuiteConfig     `json:"suite"`
	Fixtures *FixturesConfig `json:"fixtures,omitempty"`
	Mesh     *MeshConfig     `json:"mesh,omitempty"`
	Report   *ReportConfig   `json:"report,omitempty"`
	Cases    []CaseConfig    `json:"cases,omitempty"`
}

// SuiteConfig contains suite metadata.
type SuiteConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FixturesConfig locates the test-data archive.
type FixturesConfig struct {
	Archive   string `json:"archive,omitempty"`   // relative to the suite root
	Directory string `json:"directory,omitempty"` // extraction target, relative to the suite root
}

// MeshConfig configures mesh-path resolution for all cases.
type MeshConfig struct {
	Anchor string `json:"anchor,omitempty"` // directory recorded paths are made relative to
}

// ReportConfig configures run reports.
type ReportConfig struct {
	Format string `json:"format,omitempty"` // "text", "json" or "yaml"
	Output string `json:"output,omitempty"` // file path; empty writes to stdout
}

// CaseConfig is one exported result checked against its references.
type CaseConfig struct {
	Name     string `json:"name"`
	Geometry string `json:"geometry"`
	// Basedir is the visualization export directory
	// (".../cfpdes.exports/paraview.exports").
	Basedir     string        `json:"basedir"`
	Model       string        `json:"model,omitempty"`
	Units       string        `json:"units,omitempty"`       // field-unit descriptor, default <basedir>/fieldunits.json
	FieldTypes  string        `json:"field_types,omitempty"` // default <basedir>/FieldType.json
	IgnoredKeys string        `json:"ignored_keys,omitempty"`
	Dataset     string        `json:"dataset,omitempty"`  // reader snapshot, default <basedir>/dataset.json
	Pictures    string        `json:"pictures,omitempty"` // reference pictures, default Pictures/<geometry>
	Views       string        `json:"views,omitempty"`    // rendered views, default <basedir>/views
	Fields      []FieldConfig `json:"fields,omitempty"`
	Stats       []StatsConfig `json:"stats,omitempty"`
	Mesh        *CaseMesh     `json:"mesh,omitempty"`
	Skip        bool          `json:"skip,omitempty"`
}

// FieldConfig is one rendered view compared against its reference picture.
// The candidate is picked among <views>/<field>*.png with the file-set
// selector; the reference is <pictures>/<field>.png.
type FieldConfig struct {
	Field   string   `json:"field"`
	Exclude []string `json:"exclude,omitempty"`
	Include string   `json:"include,omitempty"`
	Unique  string   `json:"unique,omitempty"`
}

// StatsConfig is one statistic comparison in a case.
type StatsConfig struct {
	Quantity  string `json:"quantity"`             // "temperature" or "vonmises"
	FieldName string `json:"field_name,omitempty"` // unit descriptor key
	Derived   string `json:"derived"`              // derived statistics CSV, relative to basedir
	Variable  string `json:"variable,omitempty"`   // row filter on the Variable column
	Measures  string `json:"measures,omitempty"`   // overrides the measure table path
	Region    string `json:"region,omitempty"`
	// ValidateMean defaults to true.
	ValidateMean *bool `json:"validate_mean,omitempty"`
}

// CaseMesh locates the mesh and its topology counts for a case.
type CaseMesh struct {
	PathFile string `json:"path_file,omitempty"` // default derived from basedir
	Counts   string `json:"counts"`              // topology sidecar (YAML or JSON)
}

// ReportFormat is the rendering of a run report.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// UnmarshalJSON accepts either a field name or a field object.
func (f *FieldConfig) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*f = FieldConfig{Field: name}
		return nil
	}
	type plain FieldConfig
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FieldConfig(p)
	return nil
}
