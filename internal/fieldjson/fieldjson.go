// Package fieldjson reads the loosely typed JSON documents that describe a
// simulation: model files, material maps and field descriptors.
//
// The helpers here never fail on the shape of the data. A missing key or a
// node of the wrong type yields "no value" and the caller decides what that
// means.
package fieldjson

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Get walks root one key at a time and returns the value at the end of the
// path. It returns false as soon as the current node is not a JSON object or
// the key is missing, including when root itself is not an object.
// With no keys it returns root.
func Get(root any, keys ...string) (any, bool) {
	node := root
	for _, key := range keys {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		node = next
	}
	return node, true
}

// GetString is Get for string leaves.
func GetString(root any, keys ...string) (string, bool) {
	v, ok := Get(root, keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetMap is Get for object nodes.
func GetMap(root any, keys ...string) (map[string]any, bool) {
	v, ok := Get(root, keys...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// MaterialsMarkers flattens the marker lists of a materials map.
//
// A material whose "markers" is a list contributes its string elements in
// order, a string contributes itself, and a material without markers
// (absent, null or an empty list) is its own marker. Materials are visited
// in key order. Duplicates across materials are kept.
func MaterialsMarkers(materials map[string]any) []string {
	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)

	markers := []string{}
	for _, name := range names {
		v, ok := Get(materials[name], "markers")
		if !ok || isEmpty(v) {
			markers = append(markers, name)
			continue
		}
		switch m := v.(type) {
		case string:
			markers = append(markers, m)
		case []any:
			for _, item := range m {
				if s, ok := item.(string); ok {
					markers = append(markers, s)
				}
			}
		case []string:
			markers = append(markers, m...)
		}
	}
	return markers
}

// isEmpty reports whether a markers value is null or an empty list, which
// counts as no markers.
func isEmpty(v any) bool {
	switch m := v.(type) {
	case nil:
		return true
	case []any:
		return len(m) == 0
	case []string:
		return len(m) == 0
	}
	return false
}

// LoadFile reads a JSON object from path.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return doc, nil
}

// ExportFields lists the fields a model asks its toolboxes to export, as
// "<toolbox>.<field>" for PostProcess.<toolbox>.Exports.fields entries and
// "<toolbox>.expr.<name>" for exported expressions. The result is sorted and
// free of duplicates.
func ExportFields(model map[string]any) []string {
	post, ok := GetMap(model, "PostProcess")
	if !ok {
		return []string{}
	}

	seen := map[string]bool{}
	for toolbox := range post {
		if fields, ok := Get(post, toolbox, "Exports", "fields"); ok {
			switch f := fields.(type) {
			case string:
				seen[toolbox+"."+f] = true
			case []any:
				for _, item := range f {
					if s, ok := item.(string); ok {
						seen[toolbox+"."+s] = true
					}
				}
			}
		}
		if exprs, ok := GetMap(post, toolbox, "Exports", "expr"); ok {
			for name := range exprs {
				seen[toolbox+".expr."+name] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
