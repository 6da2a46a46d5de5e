package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// detectUnknownFields compares raw JSON with known struct fields.
// It is called after Config parsed successfully, so a re-parse failure
// indicates an internal inconsistency.
func detectUnknownFields(data []byte) []string {
	var warnings []string

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	warnings = append(warnings, unknownKeys(raw, reflect.TypeOf(Config{}), "at root level", "$schema")...)

	if casesRaw, ok := raw["cases"]; ok {
		warnings = append(warnings, checkCasesUnknownFields(casesRaw)...)
	}

	return warnings
}

func checkCasesUnknownFields(data json.RawMessage) []string {
	var warnings []string

	var cases []map[string]json.RawMessage
	if err := json.Unmarshal(data, &cases); err != nil {
		return []string{"internal: failed to re-parse cases for unknown field detection"}
	}

	for i, c := range cases {
		name := fmt.Sprintf("#%d", i)
		if n, ok := c["name"]; ok {
			_ = json.Unmarshal(n, &name)
		}
		warnings = append(warnings, unknownKeys(c, reflect.TypeOf(CaseConfig{}), fmt.Sprintf("in case %q", name))...)

		if statsRaw, ok := c["stats"]; ok {
			var stats []map[string]json.RawMessage
			if err := json.Unmarshal(statsRaw, &stats); err == nil {
				for j, s := range stats {
					where := fmt.Sprintf("in case %q stats[%d]", name, j)
					warnings = append(warnings, unknownKeys(s, reflect.TypeOf(StatsConfig{}), where)...)
				}
			}
		}
	}

	return warnings
}

// unknownKeys lists the keys of raw that t does not declare, sorted.
func unknownKeys(raw map[string]json.RawMessage, t reflect.Type, where string, allowed ...string) []string {
	known := getJSONFields(t)
	for _, a := range allowed {
		known[a] = true
	}

	var keys []string
	for key := range raw {
		if !known[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	warnings := make([]string, 0, len(keys))
	for _, key := range keys {
		warnings = append(warnings, fmt.Sprintf("unknown field %q %s (ignored)", key, where))
	}
	return warnings
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		// Extract field name from tag (before comma)
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
