package ephemeris

// Op identifies one engine operation.
type Op string

const (
	OpJulday          Op = "julday"
	OpRevjul          Op = "revjul"
	OpUTCTimeZone     Op = "utc_time_zone"
	OpUTCToJD         Op = "utc_to_jd"
	OpJDETToUTC       Op = "jdet_to_utc"
	OpJDUT1ToUTC      Op = "jdut1_to_utc"
	OpDeltaT          Op = "deltat"
	OpSidTime         Op = "sidtime"
	OpGetAyanamsaUT   Op = "get_ayanamsa_ut"
	OpGetAyanamsa     Op = "get_ayanamsa"
	OpCotrans         Op = "cotrans"
	OpSetTopo         Op = "set_topo"
	OpSetSidMode      Op = "set_sid_mode"
	OpCalc            Op = "calc"
	OpCalcUT          Op = "calc_ut"
	OpHouses          Op = "houses"
	OpHousesARMC      Op = "houses_armc"
	OpHousePos        Op = "house_pos"
	OpFixstar         Op = "fixstar"
	OpFixstarUT       Op = "fixstar_ut"
	OpHeliacalUT      Op = "heliacal_ut"
	OpHeliacalPhenoUT Op = "heliacal_pheno_ut"
	OpVisLimitMag     Op = "vis_limit_mag"
	OpNodApsUT        Op = "nod_aps_ut"
	OpGetPlanetName   Op = "get_planet_name"
)

// String returns the operation identifier.
func (o Op) String() string { return string(o) }
