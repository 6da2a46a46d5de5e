// Package units converts physical values between the unit a solver exports
// and the canonical unit the comparators work in.
//
// Units are affine maps onto SI: si = value*scale + offset. Only absolute
// temperature scales carry an offset, and they may not be combined with
// other factors.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

// base dimension order: length, mass, time, current, temperature, amount, luminosity
type dims [7]int8

// Unit is a parsed unit expression.
type Unit struct {
	name   string
	dim    dims
	scale  float64
	offset float64
}

func (u Unit) String() string {
	return u.name
}

// Dimensionless reports whether u carries no dimension.
func (u Unit) Dimensionless() bool {
	return u.dim == dims{}
}

// Compatible reports whether values in u can be converted to v.
func (u Unit) Compatible(v Unit) bool {
	return u.dim == v.dim
}

var (
	length      = dims{1, 0, 0, 0, 0, 0, 0}
	mass        = dims{0, 1, 0, 0, 0, 0, 0}
	timeDim     = dims{0, 0, 1, 0, 0, 0, 0}
	current     = dims{0, 0, 0, 1, 0, 0, 0}
	temperature = dims{0, 0, 0, 0, 1, 0, 0}
	amount      = dims{0, 0, 0, 0, 0, 1, 0}
)

func combine(terms ...any) dims {
	var d dims
	for i := 0; i < len(terms); i += 2 {
		base := terms[i].(dims)
		exp := int8(terms[i+1].(int))
		for j := range d {
			d[j] += base[j] * exp
		}
	}
	return d
}

var (
	force      = combine(mass, 1, length, 1, timeDim, -2)
	energy     = combine(force, 1, length, 1)
	power      = combine(energy, 1, timeDim, -1)
	pressure   = combine(force, 1, length, -2)
	voltage    = combine(power, 1, current, -1)
	resistance = combine(voltage, 1, current, -1)
	charge     = combine(current, 1, timeDim, 1)
	fluxDim    = combine(voltage, 1, timeDim, 1)
	fluxDens   = combine(fluxDim, 1, length, -2)
	induct     = combine(fluxDim, 1, current, -1)
)

type def struct {
	dim    dims
	scale  float64
	offset float64
}

var catalogue = map[string]def{
	"1": {dims{}, 1, 0},

	"m":  {length, 1, 0},
	"km": {length, 1e3, 0},
	"cm": {length, 1e-2, 0},
	"mm": {length, 1e-3, 0},
	"um": {length, 1e-6, 0},
	"µm": {length, 1e-6, 0},

	"kg": {mass, 1, 0},
	"g":  {mass, 1e-3, 0},

	"s":   {timeDim, 1, 0},
	"ms":  {timeDim, 1e-3, 0},
	"min": {timeDim, 60, 0},
	"h":   {timeDim, 3600, 0},

	"A":  {current, 1, 0},
	"kA": {current, 1e3, 0},
	"mA": {current, 1e-3, 0},

	"K":    {temperature, 1, 0},
	"degC": {temperature, 1, 273.15},
	"°C":   {temperature, 1, 273.15},

	"mol": {amount, 1, 0},

	"N":   {force, 1, 0},
	"kN":  {force, 1e3, 0},
	"J":   {energy, 1, 0},
	"W":   {power, 1, 0},
	"kW":  {power, 1e3, 0},
	"MW":  {power, 1e6, 0},
	"Pa":  {pressure, 1, 0},
	"kPa": {pressure, 1e3, 0},
	"MPa": {pressure, 1e6, 0},
	"GPa": {pressure, 1e9, 0},
	"V":   {voltage, 1, 0},
	"mV":  {voltage, 1e-3, 0},
	"ohm": {resistance, 1, 0},
	"Ω":   {resistance, 1, 0},
	"S":   {combine(resistance, -1), 1, 0},
	"MS":  {combine(resistance, -1), 1e6, 0},
	"C":   {charge, 1, 0},
	"Wb":  {fluxDim, 1, 0},
	"T":   {fluxDens, 1, 0},
	"mT":  {fluxDens, 1e-3, 0},
	"H":   {induct, 1, 0},
	"Hz":  {combine(timeDim, -1), 1, 0},
}

var aliases = map[string]string{
	"meter":          "m",
	"millimeter":     "mm",
	"centimeter":     "cm",
	"micrometer":     "um",
	"second":         "s",
	"kilogram":       "kg",
	"gram":           "g",
	"ampere":         "A",
	"kelvin":         "K",
	"degree_Celsius": "degC",
	"celsius":        "degC",
	"newton":         "N",
	"joule":          "J",
	"watt":           "W",
	"pascal":         "Pa",
	"megapascal":     "MPa",
	"volt":           "V",
	"siemens":        "S",
	"tesla":          "T",
	"weber":          "Wb",
	"henry":          "H",
	"hertz":          "Hz",
	"coulomb":        "C",
	"dimensionless":  "1",
}

// Parse reads a unit expression such as "K", "degC", "V/m", "A/mm^2",
// "N/m**3" or "W/m/K". Factors are separated by '*' or '/', and each
// divisor applies to the factor right after it.
func Parse(expr string) (Unit, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return Unit{}, ferrors.Configf("empty unit expression")
	}
	normalized := strings.ReplaceAll(src, "**", "^")
	normalized = strings.ReplaceAll(normalized, " ", "")

	u := Unit{name: src, scale: 1}
	sign := int8(1)
	start := 0
	factors := 0
	hasOffset := false

	flush := func(token string, sign int8) error {
		if token == "" {
			return ferrors.Configf("invalid unit expression %q", src)
		}
		name, exp := token, int8(1)
		if i := strings.IndexByte(token, '^'); i >= 0 {
			n, err := strconv.ParseInt(token[i+1:], 10, 8)
			if err != nil {
				return ferrors.Configf("invalid exponent in unit %q", src)
			}
			name, exp = token[:i], int8(n)
		}
		if a, ok := aliases[name]; ok {
			name = a
		}
		d, ok := catalogue[name]
		if !ok {
			return ferrors.NotConfigured("unit", name)
		}
		if d.offset != 0 {
			hasOffset = true
		}
		e := int(exp) * int(sign)
		for j := range u.dim {
			v := int(u.dim[j]) + int(d.dim[j])*e
			if v < math.MinInt8 || v > math.MaxInt8 {
				return ferrors.Configf("exponent out of range in unit %q", src)
			}
			u.dim[j] = int8(v)
		}
		u.scale *= math.Pow(d.scale, float64(e))
		if e == 1 && d.offset != 0 {
			u.offset = d.offset
		}
		factors++
		return nil
	}

	for i := 0; i <= len(normalized); i++ {
		if i < len(normalized) && normalized[i] != '*' && normalized[i] != '/' {
			continue
		}
		if err := flush(normalized[start:i], sign); err != nil {
			return Unit{}, err
		}
		if i < len(normalized) && normalized[i] == '/' {
			sign = -1
		} else {
			sign = 1
		}
		start = i + 1
	}

	if hasOffset && (factors > 1 || u.offset == 0) {
		return Unit{}, ferrors.Configf("offset unit in %q cannot be combined with other factors", src)
	}
	return u, nil
}

// MustParse is Parse for unit literals known to be valid.
func MustParse(expr string) Unit {
	u, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return u
}

// Convert expresses value, given in from, in to.
func Convert(value float64, from, to Unit) (float64, error) {
	if !from.Compatible(to) {
		return 0, ferrors.Configf("cannot convert %s [%s] to %s [%s]", from, from.dim, to, to.dim)
	}
	si := value*from.scale + from.offset
	return (si - to.offset) / to.scale, nil
}

func (d dims) String() string {
	labels := []string{"m", "kg", "s", "A", "K", "mol", "cd"}
	var parts []string
	for i, e := range d {
		switch {
		case e == 1:
			parts = append(parts, labels[i])
		case e != 0:
			parts = append(parts, fmt.Sprintf("%s^%d", labels[i], e))
		}
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, "*")
}
