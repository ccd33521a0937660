package schema

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/errors"
)

func TestCatalogGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "catalog", buf.Bytes())
}

func TestCatalogCoversEveryOperation(t *testing.T) {
	ops := []ephemeris.Op{
		ephemeris.OpJulday, ephemeris.OpRevjul, ephemeris.OpUTCTimeZone, ephemeris.OpUTCToJD,
		ephemeris.OpJDETToUTC, ephemeris.OpJDUT1ToUTC, ephemeris.OpDeltaT, ephemeris.OpSidTime,
		ephemeris.OpGetAyanamsaUT, ephemeris.OpGetAyanamsa, ephemeris.OpCotrans, ephemeris.OpSetTopo,
		ephemeris.OpSetSidMode, ephemeris.OpCalc, ephemeris.OpCalcUT, ephemeris.OpHouses,
		ephemeris.OpHousesARMC, ephemeris.OpHousePos, ephemeris.OpFixstar, ephemeris.OpFixstarUT,
		ephemeris.OpHeliacalUT, ephemeris.OpHeliacalPhenoUT, ephemeris.OpVisLimitMag, ephemeris.OpNodApsUT,
		ephemeris.OpGetPlanetName,
	}
	require.Len(t, All(), len(ops))
	for _, op := range ops {
		spec, ok := Lookup(op)
		require.True(t, ok, op)
		assert.NotNil(t, ephemeris.NewResult(spec.Family), op)
	}
}

func TestFieldsFitBuffers(t *testing.T) {
	for _, spec := range All() {
		for _, f := range spec.Fields {
			if f.Text {
				continue
			}
			assert.LessOrEqual(t, f.Offset+f.Span(), spec.BufferLen, "%s.%s", spec.Op, f.Name)
		}
	}
}

func TestNodesApsidesSegmentsAreDistinct(t *testing.T) {
	spec, _ := Lookup(ephemeris.OpNodApsUT)
	offsets := map[int]string{}
	for _, f := range spec.Fields {
		prev, dup := offsets[f.Offset]
		require.False(t, dup, "%s shares offset %d with %s", f.Name, f.Offset, prev)
		offsets[f.Offset] = f.Name
	}
	assert.Equal(t, "aphelion", offsets[18])
}

func TestBind(t *testing.T) {
	t.Run("widens ints and inserts flags", func(t *testing.T) {
		spec, _ := Lookup(ephemeris.OpCalcUT)
		req := ephemeris.NewRequest(ephemeris.OpCalcUT, ephemeris.Int(2459946), ephemeris.Int(ephemeris.Mars)).
			WithFlags(ephemeris.FlagSpeed)

		args, err := spec.Bind(req)
		require.NoError(t, err)
		require.Len(t, args, 3)

		jd, ok := args[0].AsFloat()
		require.True(t, ok)
		assert.Equal(t, ephemeris.KindFloat, args[0].Kind())
		assert.Equal(t, 2459946.0, jd)

		flags, _ := args[2].AsInt()
		assert.EqualValues(t, ephemeris.FlagSpeed, flags)
	})

	t.Run("flags default to zero", func(t *testing.T) {
		spec, _ := Lookup(ephemeris.OpHouses)
		req := ephemeris.NewRequest(ephemeris.OpHouses,
			ephemeris.Float(2459946.0), ephemeris.Float(52.5), ephemeris.Float(13.4), ephemeris.Char('P'))

		args, err := spec.Bind(req)
		require.NoError(t, err)
		require.Len(t, args, 5)
		flags, ok := args[1].AsInt()
		require.True(t, ok)
		assert.Zero(t, flags)
		sys, _ := args[4].AsString()
		assert.Equal(t, "P", sys)
	})

	t.Run("pads float arrays and fills optional params", func(t *testing.T) {
		spec, _ := Lookup(ephemeris.OpHousePos)
		req := ephemeris.NewRequest(ephemeris.OpHousePos,
			ephemeris.Float(100), ephemeris.Float(52.5), ephemeris.Float(23.44), ephemeris.Char('P'))

		args, err := spec.Bind(req)
		require.NoError(t, err)
		point, ok := args[4].AsFloats()
		require.True(t, ok)
		assert.Equal(t, []float64{0, 0}, point)

		spec, _ = Lookup(ephemeris.OpHeliacalUT)
		req = ephemeris.NewRequest(ephemeris.OpHeliacalUT,
			ephemeris.Float(2459946.0),
			ephemeris.Floats(13.4, 52.5),
			ephemeris.Floats(),
			ephemeris.Floats(36),
			ephemeris.String("Venus"),
			ephemeris.Int(ephemeris.MorningFirst))
		args, err = spec.Bind(req)
		require.NoError(t, err)
		geo, _ := args[1].AsFloats()
		assert.Equal(t, []float64{13.4, 52.5, 0}, geo)
		obs, _ := args[3].AsFloats()
		assert.Len(t, obs, 6)
	})

	tests := []struct {
		name  string
		req   ephemeris.Request
		param string
	}{
		{
			name: "too few params",
			req:  ephemeris.NewRequest(ephemeris.OpJulday, ephemeris.Int(2023)),
		},
		{
			name: "too many params",
			req:  ephemeris.NewRequest(ephemeris.OpDeltaT, ephemeris.Float(1), ephemeris.Float(2)),
		},
		{
			name:  "float where int declared",
			req:   ephemeris.NewRequest(ephemeris.OpJulday, ephemeris.Float(2023.5), ephemeris.Int(1), ephemeris.Int(1), ephemeris.Float(12), ephemeris.Int(1)),
			param: "year",
		},
		{
			name:  "string where float declared",
			req:   ephemeris.NewRequest(ephemeris.OpDeltaT, ephemeris.String("soon")),
			param: "jd",
		},
		{
			name:  "empty house system",
			req:   ephemeris.NewRequest(ephemeris.OpHousesARMC, ephemeris.Float(1), ephemeris.Float(2), ephemeris.Float(3), ephemeris.String("")),
			param: "system",
		},
		{
			name:  "multi character house system",
			req:   ephemeris.NewRequest(ephemeris.OpHousesARMC, ephemeris.Float(1), ephemeris.Float(2), ephemeris.Float(3), ephemeris.String("PK")),
			param: "system",
		},
		{
			name:  "array too long",
			req:   ephemeris.NewRequest(ephemeris.OpVisLimitMag, ephemeris.Float(1), ephemeris.Floats(1, 2, 3, 4), ephemeris.Floats(), ephemeris.Floats(), ephemeris.String("Venus")),
			param: "geo",
		},
		{
			name:  "int overflow",
			req:   ephemeris.NewRequest(ephemeris.OpGetPlanetName, ephemeris.Int(1<<40)),
			param: "body",
		},
		{
			name:  "flags on an operation without flags",
			req:   ephemeris.NewRequest(ephemeris.OpDeltaT, ephemeris.Float(1)).WithFlags(2),
			param: "flags",
		},
		{
			name:  "NUL in star name",
			req:   ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String("Sir\x00ius"), ephemeris.Float(1)),
			param: "star",
		},
		{
			name:  "star name too long",
			req:   ephemeris.NewRequest(ephemeris.OpFixstarUT, ephemeris.String(strings.Repeat("x", ephemeris.MaxStarName)), ephemeris.Float(1)),
			param: "star",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := Lookup(tt.req.Op())
			require.True(t, ok)
			_, err := spec.Bind(tt.req)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument), err.Error())
			if tt.param != "" {
				e, ok := errors.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.param, e.Param)
			}
		})
	}
}

func TestValidateUnknownOperation(t *testing.T) {
	err := Validate(ephemeris.NewRequest("swe_nope"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))
}

func TestParseArgs(t *testing.T) {
	spec, _ := Lookup(ephemeris.OpHeliacalUT)
	vals, err := spec.ParseArgs([]string{"2459946.5", "13.4, 52.5,0", "1013.25,15,40,0", "", "Venus", "1"})
	require.NoError(t, err)
	require.Len(t, vals, 6)

	geo, _ := vals[1].AsFloats()
	assert.Equal(t, []float64{13.4, 52.5, 0}, geo)
	obs, _ := vals[3].AsFloats()
	assert.Empty(t, obs)
	event, ok := vals[5].AsInt()
	require.True(t, ok)
	assert.EqualValues(t, 1, event)

	_, err = spec.ParseArgs([]string{"tomorrow"})
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "jd_ut", e.Param)

	_, err = spec.ParseArgs(make([]string, 10))
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	var raw []any
	dec := json.NewDecoder(strings.NewReader(`[2023, 1, 1, 12, 1]`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	spec, _ := Lookup(ephemeris.OpJulday)
	vals, err := spec.Coerce(raw)
	require.NoError(t, err)
	year, ok := vals[0].AsInt()
	require.True(t, ok)
	assert.EqualValues(t, 2023, year)
	hour, ok := vals[3].AsFloat()
	require.True(t, ok)
	assert.Equal(t, 12.0, hour)

	_, err = spec.Coerce([]any{json.Number("2023.5")})
	assert.Error(t, err)

	_, err = spec.Coerce([]any{2023.0, 1.0})
	assert.NoError(t, err)

	spec, _ = Lookup(ephemeris.OpHousePos)
	vals, err = spec.Coerce([]any{1.0, 2.0, 3.0, "P", []any{json.Number("10"), 2.5}})
	require.NoError(t, err)
	point, _ := vals[4].AsFloats()
	assert.Equal(t, []float64{10, 2.5}, point)

	_, err = spec.Coerce([]any{1.0, 2.0, 3.0, "P", []any{"x"}})
	assert.Error(t, err)
}

func TestSignature(t *testing.T) {
	spec, _ := Lookup(ephemeris.OpHousePos)
	assert.Equal(t, "house_pos(armc float, latitude float, obliquity float, system char, point floats[2]?)", spec.Signature())

	lo, hi := spec.Arity()
	assert.Equal(t, 4, lo)
	assert.Equal(t, 5, hi)
}

func TestInfo(t *testing.T) {
	spec, _ := Lookup(ephemeris.OpHousePos)
	info := spec.Info()

	assert.Equal(t, "house_pos", info.Op)
	assert.Equal(t, "house_position", info.Family)
	assert.False(t, info.Flags)
	require.Len(t, info.Params, 5)
	assert.Equal(t, ParamInfo{Name: "point", Kind: "floats", Len: 2, Optional: true}, info.Params[4])

	calc, _ := Lookup(ephemeris.OpCalcUT)
	info = calc.Info()
	assert.True(t, info.Flags)
	assert.Len(t, info.Params, 2, "flags are not positional")
	assert.Equal(t, []string{"topocentric", "sidereal"}, info.Reads)

	topo, _ := Lookup(ephemeris.OpSetTopo)
	assert.Equal(t, "topocentric", topo.Info().Mutates)

	name, _ := Lookup(ephemeris.OpGetPlanetName)
	data, err := json.Marshal(name.Info())
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"get_planet_name","family":"name","doc":"name of a body","params":[{"name":"body","kind":"int"}],"flags":false}`, string(data))

	assert.Len(t, Catalog(), len(All()))
}
