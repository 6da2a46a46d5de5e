package config

import (
	"strings"
	"testing"
)

func hasWarning(warnings []string, parts ...string) bool {
	for _, w := range warnings {
		all := true
		for _, p := range parts {
			if !strings.Contains(w, p) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func TestLoadWithWarnings_UnknownRootField(t *testing.T) {
	data := []byte(`{
		"suite": {"name": "s"},
		"unknown_field": "value"
	}`)

	cfg, warnings, err := LoadWithWarnings("test.json", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if cfg.Suite.Name != "s" {
		t.Errorf("Suite.Name = %q, want %q", cfg.Suite.Name, "s")
	}
	if !hasWarning(warnings, "unknown_field", "root level") {
		t.Errorf("Expected warning about unknown_field, got %v", warnings)
	}
}

func TestLoadWithWarnings_SchemaFieldIgnored(t *testing.T) {
	data := []byte(`{
		"$schema": "https://fieldcheck.dev/schemas/config.schema.json",
		"suite": {"name": "s"}
	}`)

	_, warnings, err := LoadWithWarnings("test.json", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("$schema should not produce warnings, got: %v", warnings)
	}
}

func TestLoadWithWarnings_UnknownCaseAndStatsFields(t *testing.T) {
	data := []byte(`{
		"suite": {"name": "s"},
		"cases": [
			{"name": "Tore-3D", "geometry": "3D", "basedir": "b", "colour": "red",
			 "stats": [{"quantity": "temperature", "derived": "d.csv", "row": 0}]},
			{"geometry": "2D", "basedir": "b", "zoom": 2}
		]
	}`)

	_, warnings, err := LoadWithWarnings("test.json", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if len(warnings) != 3 {
		t.Fatalf("warnings = %v, want 3", warnings)
	}
	if !hasWarning(warnings, "colour", `case "Tore-3D"`) {
		t.Errorf("missing case warning: %v", warnings)
	}
	if !hasWarning(warnings, `"row"`, "stats[0]") {
		t.Errorf("missing stats warning: %v", warnings)
	}
	if !hasWarning(warnings, "zoom", `case "#1"`) {
		t.Errorf("missing unnamed case warning: %v", warnings)
	}
}

func TestLoadWithWarnings_InvalidJSON(t *testing.T) {
	if _, _, err := LoadWithWarnings("bad.json", []byte(`{`)); err == nil {
		t.Fatal("LoadWithWarnings() expected error")
	}
}
