package engine

import (
	ephemeris "github.com/wippyai/ephemeris-bridge"
)

// Exported functions every engine module must provide.
const (
	exportMemory   = "memory"
	exportMalloc   = "malloc"
	exportFree     = "free"
	exportSetPath  = "swe_set_ephe_path"
	exportClose    = "swe_close"
	guestDataDir   = "/ephe"
	scratchAlign   = 8
	textBufferSize = ephemeris.MaxStarName
	errBufferSize  = ephemeris.MaxErrorText
)

// slotKind describes how one native parameter is produced.
type slotKind uint8

const (
	slotArg    slotKind = iota // next bound arg: int/char as i32, float as f64, string and floats by pointer
	slotPack                   // next n float args packed into a double array
	slotStar                   // next string arg in a MaxStarName in/out buffer, read back as text
	slotOut                    // pointer to n doubles stored at out[from:]
	slotOutI32                 // pointer to n int32s stored at out[from:] as floats
	slotText                   // pointer to a MaxStarName text buffer
	slotErr                    // pointer to the error text buffer
)

type slot struct {
	kind slotKind
	from int
	n    int
}

// retKind describes how the native return value becomes a status.
type retKind uint8

const (
	retVoid     retKind = iota // status 0; any return value is ignored
	retStatus                  // i32 status
	retF64Out                  // f64 stored at out[0]; status 0
	retHousePos                // f64 stored at out[2], point copied to out[0:2]; status -1 when error text is set
)

type abiFunc struct {
	export string
	slots  []slot
	ret    retKind
}

func argSlots(n int) []slot {
	s := make([]slot, n)
	for i := range s {
		s[i] = slot{kind: slotArg}
	}
	return s
}

func outSlot(from, n int) slot { return slot{kind: slotOut, from: from, n: n} }
func outI32Slot(from, n int) slot { return slot{kind: slotOutI32, from: from, n: n} }

var (
	errSlot  = slot{kind: slotErr}
	textSlot = slot{kind: slotText}
	starSlot = slot{kind: slotStar}
)

func concat(parts ...[]slot) []slot {
	var all []slot
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}

// utcOut is the output tail shared by the calendar conversions that return
// year, month, day, hour, minute as int32 and seconds as a double.
var utcOut = []slot{outI32Slot(0, 1), outI32Slot(1, 1), outI32Slot(2, 1), outI32Slot(3, 1), outI32Slot(4, 1), outSlot(5, 1)}

// abiTable maps each operation to its C entry point. Parameter order follows
// the engine prototypes; bound args are consumed left to right.
var abiTable = map[ephemeris.Op]abiFunc{
	ephemeris.OpJulday: {"swe_julday", argSlots(5), retF64Out},
	ephemeris.OpRevjul: {"swe_revjul", concat(argSlots(2), []slot{outI32Slot(0, 1), outI32Slot(1, 1), outI32Slot(2, 1), outSlot(3, 1)}), retVoid},

	ephemeris.OpUTCTimeZone: {"swe_utc_time_zone", concat(argSlots(7), utcOut), retVoid},
	ephemeris.OpUTCToJD:     {"swe_utc_to_jd", concat(argSlots(7), []slot{outSlot(0, 2), errSlot}), retStatus},
	ephemeris.OpJDETToUTC:   {"swe_jdet_to_utc", concat(argSlots(2), utcOut), retVoid},
	ephemeris.OpJDUT1ToUTC:  {"swe_jdut1_to_utc", concat(argSlots(2), utcOut), retVoid},

	ephemeris.OpDeltaT:        {"swe_deltat", argSlots(1), retF64Out},
	ephemeris.OpSidTime:       {"swe_sidtime", argSlots(1), retF64Out},
	ephemeris.OpGetAyanamsaUT: {"swe_get_ayanamsa_ut", argSlots(1), retF64Out},
	ephemeris.OpGetAyanamsa:   {"swe_get_ayanamsa", argSlots(1), retF64Out},

	ephemeris.OpCotrans:    {"swe_cotrans", []slot{{kind: slotPack, n: 3}, outSlot(0, 3), {kind: slotArg}}, retVoid},
	ephemeris.OpSetTopo:    {"swe_set_topo", argSlots(3), retVoid},
	ephemeris.OpSetSidMode: {"swe_set_sid_mode", argSlots(3), retVoid},

	ephemeris.OpCalc:   {"swe_calc", concat(argSlots(3), []slot{outSlot(0, 6), errSlot}), retStatus},
	ephemeris.OpCalcUT: {"swe_calc_ut", concat(argSlots(3), []slot{outSlot(0, 6), errSlot}), retStatus},

	ephemeris.OpHouses:     {"swe_houses_ex", concat(argSlots(5), []slot{outSlot(0, 37), outSlot(37, 10)}), retStatus},
	ephemeris.OpHousesARMC: {"swe_houses_armc", concat(argSlots(4), []slot{outSlot(0, 37), outSlot(37, 10)}), retStatus},
	ephemeris.OpHousePos:   {"swe_house_pos", concat(argSlots(5), []slot{errSlot}), retHousePos},

	ephemeris.OpFixstar:   {"swe_fixstar", concat([]slot{starSlot}, argSlots(2), []slot{outSlot(0, 6), errSlot}), retStatus},
	ephemeris.OpFixstarUT: {"swe_fixstar_ut", concat([]slot{starSlot}, argSlots(2), []slot{outSlot(0, 6), errSlot}), retStatus},

	ephemeris.OpHeliacalUT:      {"swe_heliacal_ut", concat(argSlots(7), []slot{outSlot(0, 50), errSlot}), retStatus},
	ephemeris.OpHeliacalPhenoUT: {"swe_heliacal_pheno_ut", concat(argSlots(7), []slot{outSlot(0, 50), errSlot}), retStatus},
	ephemeris.OpVisLimitMag:     {"swe_vis_limit_mag", concat(argSlots(6), []slot{outSlot(0, 50), errSlot}), retStatus},

	ephemeris.OpNodApsUT: {"swe_nod_aps_ut", concat(argSlots(4), []slot{outSlot(0, 6), outSlot(6, 6), outSlot(12, 6), outSlot(18, 6), errSlot}), retStatus},

	ephemeris.OpGetPlanetName: {"swe_get_planet_name", concat(argSlots(1), []slot{textSlot}), retVoid},
}

// lookupABI returns the entry point for op.
func lookupABI(op ephemeris.Op) (abiFunc, bool) {
	fn, ok := abiTable[op]
	return fn, ok
}
