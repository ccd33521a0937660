package schema

import (
	ephemeris "github.com/wippyai/ephemeris-bridge"
)

const housesFailure = "Can't calculate houses."

// Buffer sizes the engine expects. Houses reserve 37 cusp slots so the
// 36-sector Gauquelin system fits; only cusps 1..12 are decoded.
const (
	housesCuspSlots = 37
	housesAngleSlot = housesCuspSlots
	housesBufferLen = housesCuspSlots + 10
	heliacalBuffer  = 50
	starBufferLen   = 6
	nodApsBufferLen = 24
)

func floatParam(name string) Param { return Param{Name: name, Kind: ParamFloat} }
func intParam(name string) Param { return Param{Name: name, Kind: ParamInt} }
func charParam(name string) Param { return Param{Name: name, Kind: ParamChar} }
func stringParam(name string) Param { return Param{Name: name, Kind: ParamString} }
func arrayParam(name string, n int) Param {
	return Param{Name: name, Kind: ParamFloats, Len: n}
}
func flagsParam() Param { return Param{Name: "flags", Kind: ParamFlags} }

func seq(names ...string) []Field {
	out := make([]Field, len(names))
	for n, name := range names {
		out[n] = Field{Name: name, Offset: n}
	}
	return out
}

var (
	dateFields     = seq("year", "month", "day", "hour", "minute", "second")
	positionFields = seq("longitude", "latitude", "distance", "longitude_speed", "latitude_speed", "distance_speed")
	angleFields    = seq("asc", "mc", "armc", "vertex", "equatorial_asc", "co_asc_koch", "co_asc_munkasey", "polar_asc")
	housesFields   = []Field{
		{Name: "cusps", Offset: 1, Count: 12},
		{Name: "angles", Offset: housesAngleSlot, Fields: angleFields},
	}
	starFields = []Field{
		{Name: "name", Text: true},
		{Name: "longitude", Offset: 0},
		{Name: "latitude", Offset: 1},
		{Name: "distance", Offset: 2},
	}
	heliacalObserver = []Param{
		floatParam("jd_ut"),
		arrayParam("geo", 3),
		arrayParam("atmosphere", 4),
		arrayParam("observer", 6),
		stringParam("object"),
	}
	phenomenaFields = seq(
		"tc_altitude", "tc_apparent_altitude", "gc_altitude", "azimuth",
		"tc_sun_altitude", "sun_azimuth", "tc_actual_visible_arc", "gc_actual_visible_arc",
		"object_to_sun_azimuth", "object_to_sun_longitude", "extinction", "tc_min_visible_arc",
		"first_visible", "best_visible", "end_visible", "yallop_best_visible",
		"moon_crescent_width", "yallop_value", "yallop_criterion", "parallax",
		"magnitude", "rise", "rise_set", "rise_object_to_sun",
		"visible_duration", "moon_crescent_length", "elongation", "illumination",
		"k_oz", "k_a", "k_sum",
	)
)

func with(base []Param, extra ...Param) []Param {
	out := make([]Param, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

var table = []*Spec{
	{
		Op:        ephemeris.OpJulday,
		Family:    ephemeris.FamilyScalar,
		Doc:       "Julian day number from a calendar date",
		Params:    []Param{intParam("year"), intParam("month"), intParam("day"), floatParam("hour"), intParam("calendar")},
		BufferLen: 1,
		Fields:    seq("value"),
	},
	{
		Op:        ephemeris.OpRevjul,
		Family:    ephemeris.FamilyDate,
		Doc:       "calendar date from a Julian day number",
		Params:    []Param{floatParam("jd"), intParam("calendar")},
		BufferLen: 4,
		Fields:    dateFields[:4],
	},
	{
		Op:        ephemeris.OpUTCTimeZone,
		Family:    ephemeris.FamilyDate,
		Doc:       "shift a civil date and time by a time zone offset in hours",
		Params:    []Param{intParam("year"), intParam("month"), intParam("day"), intParam("hour"), intParam("minute"), floatParam("second"), floatParam("timezone")},
		BufferLen: 6,
		Fields:    dateFields,
	},
	{
		Op:        ephemeris.OpUTCToJD,
		Family:    ephemeris.FamilyJulianDays,
		Doc:       "Julian days in ET and UT from a UTC date",
		Params:    []Param{intParam("year"), intParam("month"), intParam("day"), intParam("hour"), intParam("minute"), floatParam("second"), intParam("calendar")},
		BufferLen: 2,
		Fields:    seq("et", "ut"),
	},
	{
		Op:        ephemeris.OpJDETToUTC,
		Family:    ephemeris.FamilyDate,
		Doc:       "UTC date from a Julian day in ET",
		Params:    []Param{floatParam("jd_et"), intParam("calendar")},
		BufferLen: 6,
		Fields:    dateFields,
	},
	{
		Op:        ephemeris.OpJDUT1ToUTC,
		Family:    ephemeris.FamilyDate,
		Doc:       "UTC date from a Julian day in UT1",
		Params:    []Param{floatParam("jd_ut"), intParam("calendar")},
		BufferLen: 6,
		Fields:    dateFields,
	},
	{
		Op:        ephemeris.OpDeltaT,
		Family:    ephemeris.FamilyScalar,
		Doc:       "Delta T in days for a Julian day",
		Params:    []Param{floatParam("jd")},
		BufferLen: 1,
		Fields:    seq("value"),
	},
	{
		Op:        ephemeris.OpSidTime,
		Family:    ephemeris.FamilyScalar,
		Doc:       "Greenwich sidereal time in hours",
		Params:    []Param{floatParam("jd_ut")},
		BufferLen: 1,
		Fields:    seq("value"),
	},
	{
		Op:        ephemeris.OpGetAyanamsaUT,
		Family:    ephemeris.FamilyScalar,
		Doc:       "ayanamsa for a Julian day in UT under the current sidereal mode",
		Params:    []Param{floatParam("jd_ut")},
		BufferLen: 1,
		Fields:    seq("value"),
		Reads:     []ConfigKind{ConfigSidereal},
	},
	{
		Op:        ephemeris.OpGetAyanamsa,
		Family:    ephemeris.FamilyScalar,
		Doc:       "ayanamsa for a Julian day in ET under the current sidereal mode",
		Params:    []Param{floatParam("jd_et")},
		BufferLen: 1,
		Fields:    seq("value"),
		Reads:     []ConfigKind{ConfigSidereal},
	},
	{
		Op:        ephemeris.OpCotrans,
		Family:    ephemeris.FamilyCoordinates,
		Doc:       "rotate coordinates between ecliptic and equator by an obliquity",
		Params:    []Param{floatParam("longitude"), floatParam("latitude"), floatParam("distance"), floatParam("obliquity")},
		BufferLen: 3,
		Fields:    seq("longitude", "latitude", "distance"),
	},
	{
		Op:      ephemeris.OpSetTopo,
		Family:  ephemeris.FamilyEmpty,
		Doc:     "set the observer location for topocentric positions",
		Params:  []Param{floatParam("longitude"), floatParam("latitude"), floatParam("altitude")},
		Mutates: ConfigTopocentric,
	},
	{
		Op:      ephemeris.OpSetSidMode,
		Family:  ephemeris.FamilyEmpty,
		Doc:     "set the sidereal mode used by sidereal positions and ayanamsa",
		Params:  []Param{intParam("mode"), floatParam("t0"), floatParam("ayan_t0")},
		Mutates: ConfigSidereal,
	},
	{
		Op:        ephemeris.OpCalc,
		Family:    ephemeris.FamilyPosition,
		Doc:       "body position for a Julian day in ET",
		Params:    []Param{floatParam("jd_et"), intParam("body"), flagsParam()},
		BufferLen: 6,
		Fields:    positionFields,
		Reads:     []ConfigKind{ConfigTopocentric, ConfigSidereal},
	},
	{
		Op:        ephemeris.OpCalcUT,
		Family:    ephemeris.FamilyPosition,
		Doc:       "body position for a Julian day in UT",
		Params:    []Param{floatParam("jd_ut"), intParam("body"), flagsParam()},
		BufferLen: 6,
		Fields:    positionFields,
		Reads:     []ConfigKind{ConfigTopocentric, ConfigSidereal},
	},
	{
		Op:             ephemeris.OpHouses,
		Family:         ephemeris.FamilyHouses,
		Doc:            "house cusps and angles for a time and geographic location",
		Params:         []Param{floatParam("jd_ut"), flagsParam(), floatParam("latitude"), floatParam("longitude"), charParam("system")},
		BufferLen:      housesBufferLen,
		Fields:         housesFields,
		Reads:          []ConfigKind{ConfigSidereal},
		FailureMessage: housesFailure,
	},
	{
		Op:             ephemeris.OpHousesARMC,
		Family:         ephemeris.FamilyHouses,
		Doc:            "house cusps and angles for a sidereal time and obliquity",
		Params:         []Param{floatParam("armc"), floatParam("latitude"), floatParam("obliquity"), charParam("system")},
		BufferLen:      housesBufferLen,
		Fields:         housesFields,
		FailureMessage: housesFailure,
	},
	{
		Op:        ephemeris.OpHousePos,
		Family:    ephemeris.FamilyHousePosition,
		Doc:       "house position of an ecliptic point",
		Params:    []Param{floatParam("armc"), floatParam("latitude"), floatParam("obliquity"), charParam("system"), {Name: "point", Kind: ParamFloats, Len: 2, Optional: true}},
		BufferLen: 3,
		Fields:    seq("longitude", "latitude", "position"),
	},
	{
		Op:        ephemeris.OpFixstar,
		Family:    ephemeris.FamilyStar,
		Doc:       "fixed star position for a Julian day in ET",
		Params:    []Param{stringParam("star"), floatParam("jd_et"), flagsParam()},
		BufferLen: starBufferLen,
		Fields:    starFields,
		Reads:     []ConfigKind{ConfigTopocentric, ConfigSidereal},
	},
	{
		Op:        ephemeris.OpFixstarUT,
		Family:    ephemeris.FamilyStar,
		Doc:       "fixed star position for a Julian day in UT",
		Params:    []Param{stringParam("star"), floatParam("jd_ut"), flagsParam()},
		BufferLen: starBufferLen,
		Fields:    starFields,
		Reads:     []ConfigKind{ConfigTopocentric, ConfigSidereal},
	},
	{
		Op:        ephemeris.OpHeliacalUT,
		Family:    ephemeris.FamilyHeliacalEvent,
		Doc:       "next heliacal event of an object",
		Params:    with(heliacalObserver, intParam("event"), flagsParam()),
		BufferLen: heliacalBuffer,
		Fields:    seq("start", "best", "end"),
	},
	{
		Op:        ephemeris.OpHeliacalPhenoUT,
		Family:    ephemeris.FamilyHeliacalPhenomena,
		Doc:       "photometric and geometric details of a heliacal event",
		Params:    with(heliacalObserver, intParam("event"), flagsParam()),
		BufferLen: heliacalBuffer,
		Fields:    phenomenaFields,
	},
	{
		Op:        ephemeris.OpVisLimitMag,
		Family:    ephemeris.FamilyVisibilityLimit,
		Doc:       "limiting visual magnitude for seeing an object",
		Params:    with(heliacalObserver, flagsParam()),
		BufferLen: heliacalBuffer,
		Fields:    seq("magnitude", "object_altitude", "object_azimuth", "sun_altitude", "sun_azimuth", "moon_altitude", "moon_azimuth"),
	},
	{
		Op:        ephemeris.OpNodApsUT,
		Family:    ephemeris.FamilyNodesApsides,
		Doc:       "orbital nodes and apsides of a body",
		Params:    []Param{floatParam("jd_ut"), intParam("body"), flagsParam(), intParam("method")},
		BufferLen: nodApsBufferLen,
		Fields: []Field{
			{Name: "ascending", Offset: 0, Fields: positionFields},
			{Name: "descending", Offset: 6, Fields: positionFields},
			{Name: "perihelion", Offset: 12, Fields: positionFields},
			{Name: "aphelion", Offset: 18, Fields: positionFields},
		},
		Reads: []ConfigKind{ConfigTopocentric},
	},
	{
		Op:     ephemeris.OpGetPlanetName,
		Family: ephemeris.FamilyName,
		Doc:    "name of a body",
		Params: []Param{intParam("body")},
		Fields: []Field{{Name: "name", Text: true}},
	},
}

var index = func() map[ephemeris.Op]*Spec {
	m := make(map[ephemeris.Op]*Spec, len(table))
	for _, spec := range table {
		m[spec.Op] = spec
	}
	return m
}()

// Lookup returns the spec for an operation.
func Lookup(op ephemeris.Op) (*Spec, bool) {
	spec, ok := index[op]
	return spec, ok
}

// All returns every spec in catalog order. The specs are shared; do not modify them.
func All() []*Spec {
	out := make([]*Spec, len(table))
	copy(out, table)
	return out
}
