// Package schema holds the static description of every engine operation:
// its positional signature, the size of the output buffer the engine fills,
// and which buffer offsets map to which named result fields.
//
// The table is defined once and never inferred at call time. The dispatcher
// uses it to validate and bind requests, the engine backends use it to lay
// out native arguments, and the marshaller uses it to decode buffers.
//
// A field layout for body positions looks like:
//
//	offset  field
//	0       longitude
//	1       latitude
//	2       distance
//	3       longitude_speed
//	4       latitude_speed
//	5       distance_speed
//
// Nested records (house angles, node/apside positions) use offsets relative
// to their parent field.
package schema
