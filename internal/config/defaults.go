package config

import (
	"path"
	"strings"
)

// Default configuration values.
const (
	DefaultArchive       = "data.tar.gz"
	DefaultFixturesDir   = "."
	DefaultMeshAnchor    = "hifimagnet.paraview/"
	DefaultReportFormat  = ReportText
	DefaultUnitsFile     = "fieldunits.json"
	DefaultFieldTypeFile = "FieldType.json"
	DefaultIgnoredFile   = "ignored_keys.json"
	DefaultDatasetFile   = "dataset.json"
	DefaultViewsDir      = "views"
	DefaultPicturesDir   = "Pictures"
)

// exportsSegment is the tail of an export directory; the mesh-path file is
// its sibling.
const exportsSegment = "cfpdes.exports/paraview.exports"

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyFixturesDefaults(cfg)
	applyMeshDefaults(cfg)
	applyReportDefaults(cfg)
	for i := range cfg.Cases {
		applyCaseDefaults(&cfg.Cases[i])
	}
}

func applyFixturesDefaults(cfg *Config) {
	if cfg.Fixtures == nil {
		return // extraction is optional
	}
	if cfg.Fixtures.Archive == "" {
		cfg.Fixtures.Archive = DefaultArchive
	}
	if cfg.Fixtures.Directory == "" {
		cfg.Fixtures.Directory = DefaultFixturesDir
	}
}

func applyMeshDefaults(cfg *Config) {
	if cfg.Mesh == nil {
		cfg.Mesh = &MeshConfig{}
	}
	if cfg.Mesh.Anchor == "" {
		cfg.Mesh.Anchor = DefaultMeshAnchor
	}
}

func applyReportDefaults(cfg *Config) {
	if cfg.Report == nil {
		cfg.Report = &ReportConfig{}
	}
	if cfg.Report.Format == "" {
		cfg.Report.Format = string(DefaultReportFormat)
	}
}

func applyCaseDefaults(c *CaseConfig) {
	if c.Units == "" {
		c.Units = path.Join(c.Basedir, DefaultUnitsFile)
	}
	if c.FieldTypes == "" {
		c.FieldTypes = path.Join(c.Basedir, DefaultFieldTypeFile)
	}
	if c.IgnoredKeys == "" {
		c.IgnoredKeys = path.Join(c.Basedir, DefaultIgnoredFile)
	}
	if c.Dataset == "" {
		c.Dataset = path.Join(c.Basedir, DefaultDatasetFile)
	}
	if c.Views == "" {
		c.Views = path.Join(c.Basedir, DefaultViewsDir)
	}
	if c.Pictures == "" {
		c.Pictures = path.Join(DefaultPicturesDir, c.Geometry)
	}
	for i := range c.Stats {
		if c.Stats[i].ValidateMean == nil {
			v := true
			c.Stats[i].ValidateMean = &v
		}
	}
	if c.Mesh != nil && c.Mesh.PathFile == "" {
		c.Mesh.PathFile = strings.Replace(c.Basedir, exportsSegment, "cfpdes.mesh.path", 1)
	}
}

// ApplyDefaults fills in default paths for a case built outside Load, such
// as one discovered on disk.
func (c *CaseConfig) ApplyDefaults() {
	applyCaseDefaults(c)
}
