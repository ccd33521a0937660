package schema

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable rendering of the whole catalog: signatures,
// buffer sizes and the offset of every decoded field.
func Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for n, spec := range table {
		if n > 0 {
			bw.WriteByte('\n')
		}
		spec.dump(bw)
	}
	return bw.Flush()
}

// Dump writes the rendering of a single operation.
func (s *Spec) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	s.dump(bw)
	return bw.Flush()
}

func (s *Spec) dump(w *bufio.Writer) {
	fmt.Fprintln(w, s.Signature())
	fmt.Fprintf(w, "  family: %s\n", s.Family)
	fmt.Fprintf(w, "  buffer: %d\n", s.BufferLen)
	if s.Mutates != ConfigNone {
		fmt.Fprintf(w, "  mutates: %s\n", s.Mutates)
	}
	if len(s.Reads) > 0 {
		names := make([]string, len(s.Reads))
		for n, r := range s.Reads {
			names[n] = r.String()
		}
		fmt.Fprintf(w, "  reads: %s\n", strings.Join(names, ", "))
	}
	if s.FailureMessage != "" {
		fmt.Fprintf(w, "  failure: %q\n", s.FailureMessage)
	}
	dumpFields(w, s.Fields, 0, "")
}

func dumpFields(w *bufio.Writer, fields []Field, base int, prefix string) {
	for _, f := range fields {
		name := prefix + f.Name
		switch {
		case f.Text:
			fmt.Fprintf(w, "  [text] %s\n", name)
		case len(f.Fields) > 0:
			dumpFields(w, f.Fields, base+f.Offset, name+".")
		case f.Count > 1:
			fmt.Fprintf(w, "  [%d:%d] %s\n", base+f.Offset, base+f.Offset+f.Count, name)
		default:
			fmt.Fprintf(w, "  [%d] %s\n", base+f.Offset, name)
		}
	}
}
