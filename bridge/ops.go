package bridge

import (
	"context"
	"fmt"

	ephemeris "github.com/wippyai/ephemeris-bridge"
)

// Observation describes the observer and target of the heliacal calls.
type Observation struct {
	JDUT float64
	// Geo is longitude, latitude and altitude in meters.
	Geo [3]float64
	// Atmosphere is pressure (mbar), temperature (C), relative humidity (%)
	// and either the extinction coefficient or meteorological range.
	Atmosphere [4]float64
	// Observer is age, Snellen ratio and, with the optical-instrument flag,
	// binocular flag, magnification, aperture and transmission.
	Observer [6]float64
	// Object is a planet or fixed star name.
	Object string
}

func (o Observation) params() []ephemeris.Value {
	return []ephemeris.Value{
		ephemeris.Float(o.JDUT),
		ephemeris.Floats(o.Geo[:]...),
		ephemeris.Floats(o.Atmosphere[:]...),
		ephemeris.Floats(o.Observer[:]...),
		ephemeris.String(o.Object),
	}
}

// typed runs req and asserts the result record type.
func typed[T ephemeris.Result](ctx context.Context, b *Bridge, req ephemeris.Request) (T, error) {
	var zero T
	res, err := b.Call(ctx, req)
	if err != nil {
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result %T", req.Op(), res)
	}
	return out, nil
}

func scalar(ctx context.Context, b *Bridge, req ephemeris.Request) (float64, error) {
	res, err := typed[ephemeris.Scalar](ctx, b, req)
	return res.Value, err
}

// Julday converts a calendar date to a Julian day number.
func (b *Bridge) Julday(ctx context.Context, year, month, day int, hour float64, calendar int) (float64, error) {
	return scalar(ctx, b, ephemeris.NewRequest(ephemeris.OpJulday,
		ephemeris.Int(year), ephemeris.Int(month), ephemeris.Int(day), ephemeris.Float(hour), ephemeris.Int(calendar)))
}

// Revjul converts a Julian day number to a calendar date with fractional hour.
func (b *Bridge) Revjul(ctx context.Context, jd float64, calendar int) (ephemeris.Date, error) {
	return typed[ephemeris.Date](ctx, b, ephemeris.NewRequest(ephemeris.OpRevjul,
		ephemeris.Float(jd), ephemeris.Int(calendar)))
}

// UTCTimeZone shifts a civil date and time by a time zone offset in hours.
func (b *Bridge) UTCTimeZone(ctx context.Context, year, month, day, hour, minute int, second, timezone float64) (ephemeris.Date, error) {
	return typed[ephemeris.Date](ctx, b, ephemeris.NewRequest(ephemeris.OpUTCTimeZone,
		ephemeris.Int(year), ephemeris.Int(month), ephemeris.Int(day),
		ephemeris.Int(hour), ephemeris.Int(minute), ephemeris.Float(second), ephemeris.Float(timezone)))
}

// UTCToJD converts a UTC date to Julian days in ET and UT.
func (b *Bridge) UTCToJD(ctx context.Context, year, month, day, hour, minute int, second float64, calendar int) (ephemeris.JulianDays, error) {
	return typed[ephemeris.JulianDays](ctx, b, ephemeris.NewRequest(ephemeris.OpUTCToJD,
		ephemeris.Int(year), ephemeris.Int(month), ephemeris.Int(day),
		ephemeris.Int(hour), ephemeris.Int(minute), ephemeris.Float(second), ephemeris.Int(calendar)))
}

// JDETToUTC converts a Julian day in ET to a UTC date.
func (b *Bridge) JDETToUTC(ctx context.Context, jdET float64, calendar int) (ephemeris.Date, error) {
	return typed[ephemeris.Date](ctx, b, ephemeris.NewRequest(ephemeris.OpJDETToUTC,
		ephemeris.Float(jdET), ephemeris.Int(calendar)))
}

// JDUT1ToUTC converts a Julian day in UT1 to a UTC date.
func (b *Bridge) JDUT1ToUTC(ctx context.Context, jdUT float64, calendar int) (ephemeris.Date, error) {
	return typed[ephemeris.Date](ctx, b, ephemeris.NewRequest(ephemeris.OpJDUT1ToUTC,
		ephemeris.Float(jdUT), ephemeris.Int(calendar)))
}

// DeltaT returns Delta T in days.
func (b *Bridge) DeltaT(ctx context.Context, jd float64) (float64, error) {
	return scalar(ctx, b, ephemeris.NewRequest(ephemeris.OpDeltaT, ephemeris.Float(jd)))
}

// SidTime returns Greenwich sidereal time in hours.
func (b *Bridge) SidTime(ctx context.Context, jdUT float64) (float64, error) {
	return scalar(ctx, b, ephemeris.NewRequest(ephemeris.OpSidTime, ephemeris.Float(jdUT)))
}

// GetAyanamsaUT returns the ayanamsa under the current sidereal mode.
func (b *Bridge) GetAyanamsaUT(ctx context.Context, jdUT float64) (float64, error) {
	return scalar(ctx, b, ephemeris.NewRequest(ephemeris.OpGetAyanamsaUT, ephemeris.Float(jdUT)))
}

// GetAyanamsa is GetAyanamsaUT for a Julian day in ET.
func (b *Bridge) GetAyanamsa(ctx context.Context, jdET float64) (float64, error) {
	return scalar(ctx, b, ephemeris.NewRequest(ephemeris.OpGetAyanamsa, ephemeris.Float(jdET)))
}

// Cotrans rotates coordinates by obliquity degrees. A positive obliquity
// converts equatorial to ecliptic, a negative one the reverse.
func (b *Bridge) Cotrans(ctx context.Context, lon, lat, dist, obliquity float64) (ephemeris.Coordinates, error) {
	return typed[ephemeris.Coordinates](ctx, b, ephemeris.NewRequest(ephemeris.OpCotrans,
		ephemeris.Float(lon), ephemeris.Float(lat), ephemeris.Float(dist), ephemeris.Float(obliquity)))
}

// SetTopo sets the observer location used with FlagTopocentric. The setting
// is engine-global.
func (b *Bridge) SetTopo(ctx context.Context, lon, lat, alt float64) error {
	_, err := b.Call(ctx, ephemeris.NewRequest(ephemeris.OpSetTopo,
		ephemeris.Float(lon), ephemeris.Float(lat), ephemeris.Float(alt)))
	return err
}

// SetSidMode sets the sidereal mode. t0 and ayanT0 only matter for SidUser.
// The setting is engine-global.
func (b *Bridge) SetSidMode(ctx context.Context, mode int, t0, ayanT0 float64) error {
	_, err := b.Call(ctx, ephemeris.NewRequest(ephemeris.OpSetSidMode,
		ephemeris.Int(mode), ephemeris.Float(t0), ephemeris.Float(ayanT0)))
	return err
}

// Calc returns a body position for a Julian day in ET.
func (b *Bridge) Calc(ctx context.Context, jdET float64, body int, flags int32) (ephemeris.Position, error) {
	return typed[ephemeris.Position](ctx, b, ephemeris.NewRequest(ephemeris.OpCalc,
		ephemeris.Float(jdET), ephemeris.Int(body)).WithFlags(flags))
}

// CalcUT returns a body position for a Julian day in UT.
func (b *Bridge) CalcUT(ctx context.Context, jdUT float64, body int, flags int32) (ephemeris.Position, error) {
	return typed[ephemeris.Position](ctx, b, ephemeris.NewRequest(ephemeris.OpCalcUT,
		ephemeris.Float(jdUT), ephemeris.Int(body)).WithFlags(flags))
}

// Houses returns house cusps and angles for a time and place.
func (b *Bridge) Houses(ctx context.Context, jdUT, lat, lon float64, system rune, flags int32) (ephemeris.Houses, error) {
	return typed[ephemeris.Houses](ctx, b, ephemeris.NewRequest(ephemeris.OpHouses,
		ephemeris.Float(jdUT), ephemeris.Float(lat), ephemeris.Float(lon), ephemeris.Char(system)).WithFlags(flags))
}

// HousesARMC returns house cusps and angles for a sidereal time and obliquity.
func (b *Bridge) HousesARMC(ctx context.Context, armc, lat, obliquity float64, system rune) (ephemeris.Houses, error) {
	return typed[ephemeris.Houses](ctx, b, ephemeris.NewRequest(ephemeris.OpHousesARMC,
		ephemeris.Float(armc), ephemeris.Float(lat), ephemeris.Float(obliquity), ephemeris.Char(system)))
}

// HousePos returns the house position of an ecliptic point.
func (b *Bridge) HousePos(ctx context.Context, armc, lat, obliquity float64, system rune, pointLon, pointLat float64) (ephemeris.HousePosition, error) {
	return typed[ephemeris.HousePosition](ctx, b, ephemeris.NewRequest(ephemeris.OpHousePos,
		ephemeris.Float(armc), ephemeris.Float(lat), ephemeris.Float(obliquity), ephemeris.Char(system),
		ephemeris.Floats(pointLon, pointLat)))
}

// Fixstar returns a fixed star position for a Julian day in ET. star is a
// traditional name or ",nomenclature".
func (b *Bridge) Fixstar(ctx context.Context, star string, jdET float64, flags int32) (ephemeris.StarPosition, error) {
	return typed[ephemeris.StarPosition](ctx, b, ephemeris.NewRequest(ephemeris.OpFixstar,
		ephemeris.String(star), ephemeris.Float(jdET)).WithFlags(flags))
}

// FixstarUT is Fixstar for a Julian day in UT.
func (b *Bridge) FixstarUT(ctx context.Context, star string, jdUT float64, flags int32) (ephemeris.StarPosition, error) {
	return typed[ephemeris.StarPosition](ctx, b, ephemeris.NewRequest(ephemeris.OpFixstarUT,
		ephemeris.String(star), ephemeris.Float(jdUT)).WithFlags(flags))
}

// HeliacalUT finds the next heliacal event of the observed object.
func (b *Bridge) HeliacalUT(ctx context.Context, obs Observation, event int, flags int32) (ephemeris.HeliacalEvent, error) {
	params := append(obs.params(), ephemeris.Int(event))
	return typed[ephemeris.HeliacalEvent](ctx, b, ephemeris.NewRequest(ephemeris.OpHeliacalUT, params...).WithFlags(flags))
}

// HeliacalPhenoUT returns the details of a heliacal event.
func (b *Bridge) HeliacalPhenoUT(ctx context.Context, obs Observation, event int, flags int32) (ephemeris.HeliacalPhenomena, error) {
	params := append(obs.params(), ephemeris.Int(event))
	return typed[ephemeris.HeliacalPhenomena](ctx, b, ephemeris.NewRequest(ephemeris.OpHeliacalPhenoUT, params...).WithFlags(flags))
}

// VisLimitMag returns the limiting visual magnitude for the observed object.
func (b *Bridge) VisLimitMag(ctx context.Context, obs Observation, flags int32) (ephemeris.VisibilityLimit, error) {
	return typed[ephemeris.VisibilityLimit](ctx, b, ephemeris.NewRequest(ephemeris.OpVisLimitMag, obs.params()...).WithFlags(flags))
}

// NodApsUT returns the nodes and apsides of a body's orbit.
func (b *Bridge) NodApsUT(ctx context.Context, jdUT float64, body int, flags int32, method int) (ephemeris.NodesApsides, error) {
	return typed[ephemeris.NodesApsides](ctx, b, ephemeris.NewRequest(ephemeris.OpNodApsUT,
		ephemeris.Float(jdUT), ephemeris.Int(body), ephemeris.Int(method)).WithFlags(flags))
}

// GetPlanetName returns the engine's name for a body.
func (b *Bridge) GetPlanetName(ctx context.Context, body int) (string, error) {
	res, err := typed[ephemeris.Name](ctx, b, ephemeris.NewRequest(ephemeris.OpGetPlanetName, ephemeris.Int(body)))
	return res.Name, err
}
