// Package marshal decodes engine output buffers into result records.
//
// Decoding is pure: it reads a buffer and the engine's text output, never the
// engine. A Compiler turns a schema.Spec into a Plan once, matching each
// schema field to the record field whose ephem tag carries the same name, and
// caches it. Decoding a Plan is total: slots beyond the end of the buffer
// decode as zero, non-finite values bound for integer fields decode as zero,
// and text is cut at the first NUL.
//
//	spec, _ := schema.Lookup(ephemeris.OpCalcUT)
//	res := marshal.Decode(spec, buf, "")
//	pos := res.(ephemeris.Position)
package marshal
