package ephemeris_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ephemeris "github.com/wippyai/ephemeris-bridge"
)

func TestValue(t *testing.T) {
	var zero ephemeris.Value
	assert.False(t, zero.IsValid())
	assert.Equal(t, "<invalid>", zero.String())

	i := ephemeris.Int(7)
	n, ok := i.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(7), n)
	f, ok := i.AsFloat()
	assert.True(t, ok, "integers widen")
	assert.Equal(t, 7.0, f)
	_, ok = i.AsString()
	assert.False(t, ok)

	_, ok = ephemeris.Float(1.5).AsInt()
	assert.False(t, ok, "floats never narrow")

	c := ephemeris.Char(ephemeris.HousePlacidus)
	s, ok := c.AsString()
	require.True(t, ok)
	assert.Equal(t, "P", s)

	src := []float64{1, 2, 3}
	arr := ephemeris.Floats(src...)
	src[0] = 99
	got, ok := arr.AsFloats()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, got)
	got[1] = 99
	again, _ := arr.AsFloats()
	assert.Equal(t, 2.0, again[1], "accessor returns a copy")
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal([]ephemeris.Value{
		ephemeris.Int(2023),
		ephemeris.Float(12.5),
		ephemeris.String("Sirius"),
		ephemeris.Floats(8.5, 47.4),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[2023, 12.5, "Sirius", [8.5, 47.4]]`, string(data))

	_, err = json.Marshal(ephemeris.Value{})
	assert.Error(t, err)
}

func TestRequest(t *testing.T) {
	params := []ephemeris.Value{ephemeris.Float(2459946.5), ephemeris.Int(ephemeris.Mars)}
	req := ephemeris.NewRequest(ephemeris.OpCalcUT, params...)
	params[1] = ephemeris.Int(ephemeris.Venus)

	assert.Equal(t, ephemeris.OpCalcUT, req.Op())
	assert.Equal(t, 2, req.Len())
	body, ok := req.Param(1)
	require.True(t, ok)
	n, _ := body.AsInt()
	assert.Equal(t, int64(ephemeris.Mars), n, "the request keeps its own copy")
	_, ok = req.Param(2)
	assert.False(t, ok)

	_, hasFlags := req.Flags()
	assert.False(t, hasFlags)

	flagged := req.WithFlags(ephemeris.FlagSpeed)
	flags, hasFlags := flagged.Flags()
	assert.True(t, hasFlags)
	assert.Equal(t, ephemeris.FlagSpeed, flags)
	_, hasFlags = req.Flags()
	assert.False(t, hasFlags, "WithFlags does not modify the receiver")

	assert.Equal(t, "calc_ut(2459946.5, 4) flags=256", flagged.String())
	assert.Equal(t, `fixstar_ut("Spica", [1,2])`,
		ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String("Spica"), ephemeris.Floats(1, 2)).String())
}

func TestResultFamilies(t *testing.T) {
	results := []ephemeris.Result{
		ephemeris.Scalar{}, ephemeris.Date{}, ephemeris.JulianDays{}, ephemeris.Coordinates{},
		ephemeris.Position{}, ephemeris.Houses{}, ephemeris.HousePosition{}, ephemeris.StarPosition{},
		ephemeris.HeliacalEvent{}, ephemeris.HeliacalPhenomena{}, ephemeris.VisibilityLimit{},
		ephemeris.NodesApsides{}, ephemeris.Name{}, ephemeris.Empty{},
	}
	seen := map[ephemeris.Family]bool{}
	for _, res := range results {
		f := res.Family()
		assert.False(t, seen[f], "duplicate family %s", f)
		seen[f] = true

		proto := ephemeris.NewResult(f)
		require.NotNil(t, proto, f)
		assert.Equal(t, f, proto.Family())
	}
	assert.Nil(t, ephemeris.NewResult("bogus"))
}
