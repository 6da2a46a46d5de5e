package units

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

// Field is the unit record of one physical quantity: the unit the solver
// exports it in, the canonical unit comparisons use, and its display symbol.
type Field struct {
	Input     Unit
	Canonical Unit
	Symbol    string
}

type fieldJSON struct {
	Units  []string `json:"Units"`
	Symbol string   `json:"Symbol,omitempty"`
}

// UnmarshalJSON reads {"Units": ["<input>", "<canonical>"], "Symbol": "..."}.
// A single unit means the value is already canonical.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Units) == 0 || len(raw.Units) > 2 {
		return fmt.Errorf("Units must list one or two units, got %d", len(raw.Units))
	}
	in, err := Parse(raw.Units[0])
	if err != nil {
		return err
	}
	out := in
	if len(raw.Units) == 2 {
		if out, err = Parse(raw.Units[1]); err != nil {
			return err
		}
	}
	if !in.Compatible(out) {
		return fmt.Errorf("units %s and %s are not compatible", in, out)
	}
	f.Input, f.Canonical, f.Symbol = in, out, raw.Symbol
	return nil
}

// MarshalJSON writes the form UnmarshalJSON reads.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldJSON{
		Units:  []string{f.Input.String(), f.Canonical.String()},
		Symbol: f.Symbol,
	})
}

// Descriptor maps a quantity name (e.g. "temperature", "VonMises",
// "ElectricField_ur") to its unit record.
type Descriptor map[string]Field

// Keys returns the quantity names in sorted order.
func (d Descriptor) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConvertData expresses value, exported in the quantity's input unit, in its
// canonical unit.
func ConvertData(d Descriptor, value float64, quantity string) (float64, error) {
	f, ok := d[quantity]
	if !ok {
		return 0, ferrors.NotFound("unit descriptor for quantity", quantity)
	}
	return Convert(value, f.Input, f.Canonical)
}

// ConvertBack is the inverse of ConvertData.
func ConvertBack(d Descriptor, value float64, quantity string) (float64, error) {
	f, ok := d[quantity]
	if !ok {
		return 0, ferrors.NotFound("unit descriptor for quantity", quantity)
	}
	return Convert(value, f.Canonical, f.Input)
}

// LoadDescriptor reads a fieldunits.json file.
func LoadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid unit descriptor %s: %w", path, err)
	}
	return d, nil
}

// IgnoredKeys is the set of exported arrays the unit dictionary builder
// deliberately left out.
type IgnoredKeys map[string]bool

// LoadIgnoredKeys reads a JSON list of names. A missing file is an empty set.
func LoadIgnoredKeys(path string) (IgnoredKeys, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return IgnoredKeys{}, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("invalid ignored keys %s: %w", path, err)
	}
	keys := make(IgnoredKeys, len(names))
	for _, n := range names {
		keys[n] = true
	}
	return keys, nil
}
