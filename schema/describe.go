package schema

// ParamInfo describes one positional parameter for clients.
type ParamInfo struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Len      int    `json:"len,omitempty" yaml:"len,omitempty"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Info is the client-facing description of an operation. It leaves out
// buffer layout, which never crosses the bridge boundary.
type Info struct {
	Op      string      `json:"op" yaml:"op"`
	Family  string      `json:"family" yaml:"family"`
	Doc     string      `json:"doc" yaml:"doc"`
	Params  []ParamInfo `json:"params" yaml:"params"`
	Flags   bool        `json:"flags" yaml:"flags"`
	Mutates string      `json:"mutates,omitempty" yaml:"mutates,omitempty"`
	Reads   []string    `json:"reads,omitempty" yaml:"reads,omitempty"`
}

// Info describes the spec.
func (s *Spec) Info() Info {
	info := Info{
		Op:     string(s.Op),
		Family: string(s.Family),
		Doc:    s.Doc,
		Params: []ParamInfo{},
		Flags:  s.HasFlags(),
	}
	for _, p := range s.Positional() {
		pi := ParamInfo{Name: p.Name, Kind: p.Kind.String(), Optional: p.Optional}
		if p.Kind == ParamFloats {
			pi.Len = p.Len
		}
		info.Params = append(info.Params, pi)
	}
	if s.Mutates != ConfigNone {
		info.Mutates = s.Mutates.String()
	}
	for _, r := range s.Reads {
		info.Reads = append(info.Reads, r.String())
	}
	return info
}

// Catalog describes every operation in catalog order.
func Catalog() []Info {
	out := make([]Info, len(table))
	for n, spec := range table {
		out[n] = spec.Info()
	}
	return out
}
