package ephemeris

// Family names one shape of decoded engine output.
type Family string

const (
	FamilyScalar            Family = "scalar"
	FamilyDate              Family = "date"
	FamilyJulianDays        Family = "julian_days"
	FamilyCoordinates       Family = "coordinates"
	FamilyPosition          Family = "position"
	FamilyHouses            Family = "houses"
	FamilyHousePosition     Family = "house_position"
	FamilyStar              Family = "star"
	FamilyHeliacalEvent     Family = "heliacal_event"
	FamilyHeliacalPhenomena Family = "heliacal_phenomena"
	FamilyVisibilityLimit   Family = "visibility_limit"
	FamilyNodesApsides      Family = "nodes_apsides"
	FamilyName              Family = "name"
	FamilyEmpty             Family = "empty"
)

// Result is a decoded engine output. The concrete type is determined by the
// operation's family; switch on it or on Family().
//
// Fields carry an ephem tag naming the schema field they are decoded from.
type Result interface {
	Family() Family
}

// Scalar is a single numeric result.
type Scalar struct {
	Value float64 `ephem:"value" json:"value"`
}

// Date is a calendar date and time of day. Hour is fractional when the
// operation returns no minute and second fields.
type Date struct {
	Year   int     `ephem:"year" json:"year"`
	Month  int     `ephem:"month" json:"month"`
	Day    int     `ephem:"day" json:"day"`
	Hour   float64 `ephem:"hour" json:"hour"`
	Minute int     `ephem:"minute" json:"minute"`
	Second float64 `ephem:"second" json:"second"`
}

// JulianDays is a Julian day pair in Ephemeris Time and Universal Time.
type JulianDays struct {
	ET float64 `ephem:"et" json:"et"`
	UT float64 `ephem:"ut" json:"ut"`
}

// Coordinates is a transformed coordinate triple.
type Coordinates struct {
	Longitude float64 `ephem:"longitude" json:"longitude"`
	Latitude  float64 `ephem:"latitude" json:"latitude"`
	Distance  float64 `ephem:"distance" json:"distance"`
}

// Position is a body position with daily speeds.
type Position struct {
	Longitude      float64 `ephem:"longitude" json:"longitude"`
	Latitude       float64 `ephem:"latitude" json:"latitude"`
	Distance       float64 `ephem:"distance" json:"distance"`
	LongitudeSpeed float64 `ephem:"longitude_speed" json:"longitude_speed"`
	LatitudeSpeed  float64 `ephem:"latitude_speed" json:"latitude_speed"`
	DistanceSpeed  float64 `ephem:"distance_speed" json:"distance_speed"`
}

// Angles are the special points of a house calculation.
type Angles struct {
	Asc           float64 `ephem:"asc" json:"asc"`
	MC            float64 `ephem:"mc" json:"mc"`
	ARMC          float64 `ephem:"armc" json:"armc"`
	Vertex        float64 `ephem:"vertex" json:"vertex"`
	EquatorialAsc float64 `ephem:"equatorial_asc" json:"equatorial_asc"`
	CoAscKoch     float64 `ephem:"co_asc_koch" json:"co_asc_koch"`
	CoAscMunkasey float64 `ephem:"co_asc_munkasey" json:"co_asc_munkasey"`
	PolarAsc      float64 `ephem:"polar_asc" json:"polar_asc"`
}

// Houses holds the twelve house cusps (Cusps[0] is house 1) and the angles.
type Houses struct {
	Cusps  [12]float64 `ephem:"cusps" json:"cusps"`
	Angles Angles      `ephem:"angles" json:"angles"`
}

// HousePosition is the house position of an ecliptic point.
type HousePosition struct {
	Longitude float64 `ephem:"longitude" json:"longitude"`
	Latitude  float64 `ephem:"latitude" json:"latitude"`
	Position  float64 `ephem:"position" json:"position"`
}

// StarPosition is a fixed star position. Name is the engine-resolved star name.
type StarPosition struct {
	Name      string  `ephem:"name" json:"name"`
	Longitude float64 `ephem:"longitude" json:"longitude"`
	Latitude  float64 `ephem:"latitude" json:"latitude"`
	Distance  float64 `ephem:"distance" json:"distance"`
}

// HeliacalEvent is the visibility window of a heliacal event, as Julian days.
type HeliacalEvent struct {
	Start float64 `ephem:"start" json:"start"`
	Best  float64 `ephem:"best" json:"best"`
	End   float64 `ephem:"end" json:"end"`
}

// HeliacalPhenomena are the photometric and geometric details of a heliacal event.
type HeliacalPhenomena struct {
	TCAltitude           float64 `ephem:"tc_altitude" json:"tc_altitude"`
	TCApparentAltitude   float64 `ephem:"tc_apparent_altitude" json:"tc_apparent_altitude"`
	GCAltitude           float64 `ephem:"gc_altitude" json:"gc_altitude"`
	Azimuth              float64 `ephem:"azimuth" json:"azimuth"`
	TCSunAltitude        float64 `ephem:"tc_sun_altitude" json:"tc_sun_altitude"`
	SunAzimuth           float64 `ephem:"sun_azimuth" json:"sun_azimuth"`
	TCActualVisibleArc   float64 `ephem:"tc_actual_visible_arc" json:"tc_actual_visible_arc"`
	GCActualVisibleArc   float64 `ephem:"gc_actual_visible_arc" json:"gc_actual_visible_arc"`
	ObjectToSunAzimuth   float64 `ephem:"object_to_sun_azimuth" json:"object_to_sun_azimuth"`
	ObjectToSunLongitude float64 `ephem:"object_to_sun_longitude" json:"object_to_sun_longitude"`
	Extinction           float64 `ephem:"extinction" json:"extinction"`
	TCMinVisibleArc      float64 `ephem:"tc_min_visible_arc" json:"tc_min_visible_arc"`
	FirstVisible         float64 `ephem:"first_visible" json:"first_visible"`
	BestVisible          float64 `ephem:"best_visible" json:"best_visible"`
	EndVisible           float64 `ephem:"end_visible" json:"end_visible"`
	YallopBestVisible    float64 `ephem:"yallop_best_visible" json:"yallop_best_visible"`
	MoonCrescentWidth    float64 `ephem:"moon_crescent_width" json:"moon_crescent_width"`
	YallopValue          float64 `ephem:"yallop_value" json:"yallop_value"`
	YallopCriterion      float64 `ephem:"yallop_criterion" json:"yallop_criterion"`
	Parallax             float64 `ephem:"parallax" json:"parallax"`
	Magnitude            float64 `ephem:"magnitude" json:"magnitude"`
	Rise                 float64 `ephem:"rise" json:"rise"`
	RiseSet              float64 `ephem:"rise_set" json:"rise_set"`
	RiseObjectToSun      float64 `ephem:"rise_object_to_sun" json:"rise_object_to_sun"`
	VisibleDuration      float64 `ephem:"visible_duration" json:"visible_duration"`
	MoonCrescentLength   float64 `ephem:"moon_crescent_length" json:"moon_crescent_length"`
	Elongation           float64 `ephem:"elongation" json:"elongation"`
	Illumination         float64 `ephem:"illumination" json:"illumination"`
	KOZ                  float64 `ephem:"k_oz" json:"k_oz"`
	KA                   float64 `ephem:"k_a" json:"k_a"`
	KSum                 float64 `ephem:"k_sum" json:"k_sum"`
}

// VisibilityLimit is the limiting visual magnitude and the geometry it was computed for.
type VisibilityLimit struct {
	Magnitude      float64 `ephem:"magnitude" json:"magnitude"`
	ObjectAltitude float64 `ephem:"object_altitude" json:"object_altitude"`
	ObjectAzimuth  float64 `ephem:"object_azimuth" json:"object_azimuth"`
	SunAltitude    float64 `ephem:"sun_altitude" json:"sun_altitude"`
	SunAzimuth     float64 `ephem:"sun_azimuth" json:"sun_azimuth"`
	MoonAltitude   float64 `ephem:"moon_altitude" json:"moon_altitude"`
	MoonAzimuth    float64 `ephem:"moon_azimuth" json:"moon_azimuth"`
}

// NodesApsides are the nodes and apsides of a body's orbit. With NodeFocalPnt
// the engine writes the second focus into Aphelion.
type NodesApsides struct {
	Ascending  Position `ephem:"ascending" json:"ascending"`
	Descending Position `ephem:"descending" json:"descending"`
	Perihelion Position `ephem:"perihelion" json:"perihelion"`
	Aphelion   Position `ephem:"aphelion" json:"aphelion"`
}

// Name is a text result.
type Name struct {
	Name string `ephem:"name" json:"name"`
}

// Empty acknowledges a call that has no output, such as a configuration change.
type Empty struct{}

func (Scalar) Family() Family            { return FamilyScalar }
func (Date) Family() Family              { return FamilyDate }
func (JulianDays) Family() Family        { return FamilyJulianDays }
func (Coordinates) Family() Family       { return FamilyCoordinates }
func (Position) Family() Family          { return FamilyPosition }
func (Houses) Family() Family            { return FamilyHouses }
func (HousePosition) Family() Family     { return FamilyHousePosition }
func (StarPosition) Family() Family      { return FamilyStar }
func (HeliacalEvent) Family() Family     { return FamilyHeliacalEvent }
func (HeliacalPhenomena) Family() Family { return FamilyHeliacalPhenomena }
func (VisibilityLimit) Family() Family   { return FamilyVisibilityLimit }
func (NodesApsides) Family() Family      { return FamilyNodesApsides }
func (Name) Family() Family              { return FamilyName }
func (Empty) Family() Family             { return FamilyEmpty }

// NewResult returns a zero value of the record type for a family, or nil for
// an unknown family.
func NewResult(f Family) Result {
	switch f {
	case FamilyScalar:
		return &Scalar{}
	case FamilyDate:
		return &Date{}
	case FamilyJulianDays:
		return &JulianDays{}
	case FamilyCoordinates:
		return &Coordinates{}
	case FamilyPosition:
		return &Position{}
	case FamilyHouses:
		return &Houses{}
	case FamilyHousePosition:
		return &HousePosition{}
	case FamilyStar:
		return &StarPosition{}
	case FamilyHeliacalEvent:
		return &HeliacalEvent{}
	case FamilyHeliacalPhenomena:
		return &HeliacalPhenomena{}
	case FamilyVisibilityLimit:
		return &VisibilityLimit{}
	case FamilyNodesApsides:
		return &NodesApsides{}
	case FamilyName:
		return &Name{}
	case FamilyEmpty:
		return &Empty{}
	}
	return nil
}
