package ephemeris

// Calendars.
const (
	JulianCalendar    = 0
	GregorianCalendar = 1
)

// Bodies.
const (
	EclipticNutation = -1
	Sun              = 0
	Moon             = 1
	Mercury          = 2
	Venus            = 3
	Mars             = 4
	Jupiter          = 5
	Saturn           = 6
	Uranus           = 7
	Neptune          = 8
	Pluto            = 9
	MeanNode         = 10
	TrueNode         = 11
	MeanApogee       = 12
	OscuApogee       = 13
	Earth            = 14
	Chiron           = 15
	Pholus           = 16
	Ceres            = 17
	Pallas           = 18
	Juno             = 19
	Vesta            = 20
	IntpApogee       = 21
	IntpPerigee      = 22
	NumPlanets       = 23

	PlanetMoonOffset = 9000
	AsteroidOffset   = 10000
	CometOffset      = 1000
	FictitiousOffset = 40
)

// Computation flags.
const (
	FlagJPLEph        int32 = 1
	FlagSwissEph      int32 = 2
	FlagMoshierEph    int32 = 4
	FlagHeliocentric  int32 = 8
	FlagTruePos       int32 = 16
	FlagJ2000         int32 = 32
	FlagNoNutation    int32 = 64
	FlagSpeed3        int32 = 128
	FlagSpeed         int32 = 256
	FlagNoGravDefl    int32 = 512
	FlagNoAberration  int32 = 1024
	FlagAstrometric   int32 = FlagNoAberration | FlagNoGravDefl
	FlagEquatorial    int32 = 2048
	FlagXYZ           int32 = 4096
	FlagRadians       int32 = 8192
	FlagBarycentric   int32 = 16384
	FlagTopocentric   int32 = 32768
	FlagTropical      int32 = 0
	FlagSidereal      int32 = 65536
	FlagICRS          int32 = 131072
	FlagDefaultEph          = FlagSwissEph
	FlagCenterBody    int32 = 1048576
	FlagJPLHorizons   int32 = 262144
	FlagJPLHorApprox  int32 = 524288
	FlagDpsiDeps1980  int32 = 262144
	FlagOrbitalElemAA int32 = FlagTopocentric
)

// House angle indexes in the engine's ascmc buffer.
const (
	AngleAsc = iota
	AngleMC
	AngleARMC
	AngleVertex
	AngleEquatorialAsc
	AngleCoAscKoch
	AngleCoAscMunkasey
	AnglePolarAsc
	NumAngles
)

// House systems accepted by houses, houses_armc and house_pos.
const (
	HousePlacidus      = 'P'
	HouseKoch          = 'K'
	HousePorphyrius    = 'O'
	HouseRegiomontanus = 'R'
	HouseCampanus      = 'C'
	HouseEqual         = 'E'
	HouseEqualMC       = 'D'
	HouseWholeSign     = 'W'
	HouseVehlow        = 'V'
	HouseMeridian      = 'X'
	HouseMorinus       = 'M'
	HouseHorizontal    = 'H'
	HouseTopocentric   = 'T'
	HouseAlcabitius    = 'B'
	HouseGauquelin     = 'G'
	HouseKrusinski     = 'U'
	HouseSripati       = 'S'
	HouseAPC           = 'Y'
	HousePullenSD      = 'L'
	HousePullenSR      = 'Q'
	HouseSunshine      = 'I'
	HouseCarter        = 'F'
	HouseEqualAries    = 'N'
)

// Sidereal modes for set_sid_mode.
const (
	SidFaganBradley      = 0
	SidLahiri            = 1
	SidDeluce            = 2
	SidRaman             = 3
	SidUshashashi        = 4
	SidKrishnamurti      = 5
	SidDjwhalKhul        = 6
	SidYukteshwar        = 7
	SidJNBhasin          = 8
	SidBabylKugler1      = 9
	SidBabylKugler2      = 10
	SidBabylKugler3      = 11
	SidBabylHuber        = 12
	SidBabylEtpsc        = 13
	SidAldebaran15Tau    = 14
	SidHipparchos        = 15
	SidSassanian         = 16
	SidGalcent0Sag       = 17
	SidJ2000             = 18
	SidJ1900             = 19
	SidB1950             = 20
	SidSuryasiddhanta    = 21
	SidSuryasiddhantaMS  = 22
	SidAryabhata         = 23
	SidAryabhataMSun     = 24
	SidSSRevati          = 25
	SidSSCitra           = 26
	SidTrueCitra         = 27
	SidTrueRevati        = 28
	SidTruePushya        = 29
	SidGalcentRGilbrand  = 30
	SidGalequIAU1958     = 31
	SidGalequTrue        = 32
	SidGalequMula        = 33
	SidGalalignMardyks   = 34
	SidTrueMula          = 35
	SidGalcentMulaWilh   = 36
	SidAryabhata522      = 37
	SidBabylBritton      = 38
	SidTrueSheoran       = 39
	SidGalcentCochrane   = 40
	SidGalequFiorenza    = 41
	SidValensMoon        = 42
	SidLahiri1940        = 43
	SidLahiriVP285       = 44
	SidKrishnamurtiVP291 = 45
	SidLahiriICRC        = 46
	SidUser              = 255
	NumSidPredefined     = 47
)

// Bits or-ed into the sidereal mode.
const (
	SidBitEclT0        = 256
	SidBitSSYPlane     = 512
	SidBitUserUT       = 1024
	SidBitEclDate      = 2048
	SidBitNoPrecOffset = 4096
	SidBitPrecOrig     = 8192
)

// Node and apside methods for nod_aps_ut.
const (
	NodeMean     = 1
	NodeOscu     = 2
	NodeOscuBar  = 4
	NodeFocalPnt = 256
)

// Heliacal event types.
const (
	HeliacalRising    = 1
	HeliacalSetting   = 2
	MorningFirst      = 1
	EveningLast       = 2
	EveningFirst      = 3
	MorningLast       = 4
	AcronychalRising  = 5
	AcronychalSetting = 6
	CosmicalSetting   = 6
)

// Heliacal flags.
const (
	HelFlagLongSearch     int32 = 128
	HelFlagHighPrecision  int32 = 256
	HelFlagOpticalParams  int32 = 512
	HelFlagNoDetails      int32 = 1024
	HelFlagSearch1Period  int32 = 2048
	HelFlagVisLimDark     int32 = 4096
	HelFlagVisLimNoMoon   int32 = 8192
	HelFlagVisLimPhotopic int32 = 16384
)

// Unit conversions.
const (
	AUToKm        = 149597870.7
	AUToLightYear = 0.000015812507409819728
	AUToParsec    = 0.000004848136811095274
)

// MaxStarName is the capacity of the engine's star name buffer.
const MaxStarName = 256

// MaxErrorText is the capacity of the engine's error text buffer.
const MaxErrorText = 256
