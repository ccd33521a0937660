package enginetest

import (
	"math"
	"strings"

	ephemeris "github.com/wippyai/ephemeris-bridge"
)

const (
	j2000        = 2451545.0
	deltaTDays   = 69.2 / 86400
	sunDailyRate = 0.9856474
	precession   = 50.29 / 3600 / 365.25
)

// julday is the Meeus calendar to Julian day conversion.
func julday(year, month, day int, hour float64, gregorian bool) float64 {
	y, m := float64(year), float64(month)
	if month <= 2 {
		y--
		m += 12
	}
	b := 0.0
	if gregorian {
		a := math.Floor(y / 100)
		b = 2 - a + math.Floor(a/4)
	}
	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + float64(day) + hour/24 + b - 1524.5
}

// revjul inverts julday.
func revjul(jd float64, gregorian bool) (year, month, day int, hour float64) {
	jd += 0.5
	z := math.Floor(jd)
	f := jd - z
	a := z
	if gregorian {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	dayf := b - d - math.Floor(30.6001*e) + f
	day = int(dayf)
	hour = (dayf - float64(day)) * 24
	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}
	return year, month, day, hour
}

// splitHour breaks fractional hours into hour, minute and second.
func splitHour(hour float64) (h, m int, s float64) {
	total := hour * 3600
	total = math.Round(total*1000) / 1000
	h = int(total / 3600)
	total -= float64(h) * 3600
	m = int(total / 60)
	s = total - float64(m)*60
	return h, m, s
}

func validDate(year, month, day, hour, minute int, second float64) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return false
	}
	return second >= 0 && second < 61
}

func norm360(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// sidtime is mean sidereal time at Greenwich in hours.
func sidtime(jdUT float64) float64 {
	t := 18.697374558 + 24.06570982441908*(jdUT-j2000)
	t = math.Mod(t, 24)
	if t < 0 {
		t += 24
	}
	return t
}

// cotrans rotates spherical coordinates about the x axis by eps degrees.
// A positive eps turns equatorial into ecliptic.
func cotrans(lon, lat, dist, eps float64) (float64, float64, float64) {
	rad := math.Pi / 180
	l, b, e := lon*rad, lat*rad, eps*rad
	x := math.Cos(b) * math.Cos(l)
	y := math.Cos(b) * math.Sin(l)
	z := math.Sin(b)
	y2 := y*math.Cos(e) + z*math.Sin(e)
	z2 := -y*math.Sin(e) + z*math.Cos(e)
	return norm360(math.Atan2(y2, x) / rad), math.Asin(z2) / rad, dist
}

// ayanamsa gives a precessing offset whose epoch value depends on the mode.
func ayanamsa(sid sidereal, jd float64) float64 {
	if sid.mode&0xff == ephemeris.SidUser {
		return sid.ayanT0 + (jd-sid.t0)*precession
	}
	base := 24.74 - 0.02*float64(sid.mode&0xff)
	return base + (jd-j2000)*precession
}

// longitude is a synthetic mean longitude: each body starts 30 degrees
// further along and moves at the Sun's mean rate scaled by its index.
func longitude(body int, jd float64) float64 {
	rate := sunDailyRate / (1 + float64(body)/4)
	return norm360(float64(body)*30 + (jd-j2000)*rate)
}

func bodyValid(body int) bool {
	switch {
	case body >= ephemeris.Sun && body < ephemeris.NumPlanets:
		return true
	case body >= ephemeris.AsteroidOffset:
		return true
	}
	return false
}

var planetNames = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn",
	"Uranus", "Neptune", "Pluto", "mean Node", "true Node", "mean Apogee",
	"osc. Apogee", "Earth", "Chiron", "Pholus", "Ceres", "Pallas", "Juno",
	"Vesta", "intp. Apogee", "intp. Perigee",
}

func planetName(body int) string {
	if body >= 0 && body < len(planetNames) {
		return planetNames[body]
	}
	if body >= ephemeris.AsteroidOffset {
		return "asteroid"
	}
	return "unknown"
}

type star struct {
	name     string
	lon, lat float64
	dist     float64
}

var stars = []star{
	{"Aldebaran,alTau", 69.79, -5.47, 4.2e6},
	{"Regulus,alLeo", 149.83, 0.46, 5.0e6},
	{"Sirius,alCMa", 104.08, -39.60, 5.4e5},
	{"Spica,alVir", 203.84, -2.05, 1.6e7},
}

// findStar matches a traditional name prefix, or ",nomenclature" exactly.
func findStar(query string) (star, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return star{}, false
	}
	for _, s := range stars {
		full := strings.ToLower(s.name)
		trad, nom, _ := strings.Cut(full, ",")
		if strings.HasPrefix(q, ",") {
			if q[1:] == nom {
				return s, true
			}
			continue
		}
		if strings.HasPrefix(trad, q) {
			return s, true
		}
	}
	return star{}, false
}

// houseSystems are the system codes the fake engine accepts.
const houseSystems = "ABCDEFGHIKLMNOPQRSTUVWXY"

func houseSystemValid(hsys string) bool {
	return len(hsys) == 1 && strings.Contains(houseSystems, hsys)
}
