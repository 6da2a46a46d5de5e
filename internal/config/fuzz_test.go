package config

import (
	"encoding/json"
	"reflect"
	"testing"
)

// FuzzLoadWithWarnings tests LoadWithWarnings with arbitrary JSON input.
// Run: go test -fuzz=FuzzLoadWithWarnings -fuzztime=30s ./internal/config
func FuzzLoadWithWarnings(f *testing.F) {
	seeds := []string{
		`{"suite": {"name": "test"}}`,
		`{"suite": {"name": "test"}, "unknown_field": "value"}`,
		`{"$schema": "config.schema.json", "suite": {"name": "test"}}`,
		`{"suite": {"name": "t"}, "cases": [{"name": "c", "geometry": "2D", "basedir": "b", "fields": ["f", {"field": "g"}]}]}`,
		`{"suite": {"name": "t"}, "cases": [{"stats": [{"quantity": "vonmises", "x": 1}]}]}`,
		`{"suite": {"name": "t"}, "cases": null}`,
		`{"cases": [1, "two", null]}`,
		`{}`,
		``,
		`null`,
		`[]`,
		`{"suite": {"name": "test",}}`,
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		cfg, warnings, err1 := LoadWithWarnings("fuzz.json", data)
		cfg2, warnings2, err2 := LoadWithWarnings("fuzz.json", data)

		if (err1 == nil) != (err2 == nil) {
			t.Errorf("non-deterministic error: first=%v, second=%v", err1, err2)
		}
		if err1 == nil && err2 == nil {
			if !reflect.DeepEqual(cfg, cfg2) {
				t.Errorf("non-deterministic config: first=%+v, second=%+v", cfg, cfg2)
			}
			if !reflect.DeepEqual(warnings, warnings2) {
				t.Errorf("non-deterministic warnings: first=%v, second=%v", warnings, warnings2)
			}
		}
		if err1 == nil {
			if _, err := json.Marshal(cfg); err != nil {
				t.Errorf("failed to re-marshal config: %v", err)
			}
		}
	})
}

// FuzzValidate tests the Validate function with arbitrary Config values.
// Run: go test -fuzz=FuzzValidate -fuzztime=30s ./internal/config
func FuzzValidate(f *testing.F) {
	seeds := []string{
		`{"suite": {"name": "test"}}`,
		`{"suite": {}}`,
		`{"suite": {"name": "TEST"}}`,
		`{"suite": {"name": "t"}, "cases": [{"name": "c", "geometry": "Axi", "basedir": "b"}]}`,
		`{"suite": {"name": "t"}, "cases": [{"name": "c", "geometry": "Axi", "basedir": "b"}, {"name": "c", "geometry": "2D", "basedir": "b"}]}`,
		`{"suite": {"name": "t"}, "cases": [{"name": "c", "geometry": "3D", "basedir": "b", "stats": [{"quantity": "x"}]}]}`,
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return
		}
		applyDefaults(&cfg)

		warnings1, err1 := Validate(&cfg)
		warnings2, err2 := Validate(&cfg)

		if (err1 == nil) != (err2 == nil) {
			t.Errorf("non-deterministic error: first=%v, second=%v", err1, err2)
		}
		if len(warnings1) != len(warnings2) {
			t.Errorf("non-deterministic warning count: first=%d, second=%d", len(warnings1), len(warnings2))
		}
	})
}
