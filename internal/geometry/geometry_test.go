package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Family
		dim  int
	}{
		{"2D", TwoD, 2},
		{"3D", ThreeD, 3},
		{"Axi", Axi, 2},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
			assert.Equal(t, tt.dim, got.Dim())
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, in := range []string{"4D", "axi", "", "3d"} {
		_, err := Parse(in)
		require.Error(t, err, in)
		assert.True(t, ferrors.Is(err, ferrors.KindNotConfigured))
	}
}

func TestFamily_TextRoundTrip(t *testing.T) {
	type doc struct {
		Geometry Family `json:"geometry" yaml:"geometry"`
	}

	var fromJSON doc
	require.NoError(t, json.Unmarshal([]byte(`{"geometry":"Axi"}`), &fromJSON))
	assert.Equal(t, Axi, fromJSON.Geometry)
	assert.True(t, fromJSON.Geometry.IsAxisymmetric())

	var fromYAML doc
	require.NoError(t, yaml.Unmarshal([]byte("geometry: 3D\n"), &fromYAML))
	assert.Equal(t, ThreeD, fromYAML.Geometry)

	out, err := json.Marshal(doc{Geometry: TwoD})
	require.NoError(t, err)
	assert.JSONEq(t, `{"geometry":"2D"}`, string(out))

	err = json.Unmarshal([]byte(`{"geometry":"1D"}`), &fromJSON)
	assert.Error(t, err)
}

func TestFamily_Invalid(t *testing.T) {
	var f Family
	assert.False(t, f.Valid())
	assert.Equal(t, "Family(0)", f.String())
	_, err := f.MarshalText()
	assert.Error(t, err)
}
