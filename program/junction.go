package program

import (
	"slices"
)

// Junction is a rendezvous barrier shared by every engine.
type Junction struct {
	program *Program
	index   int
	name    string
	timeNs  int64
	shares  []*RegisterShare
}

func (jn *Junction) Program() *Program { return jn.program }
func (jn *Junction) Index() int        { return jn.index }
func (jn *Junction) Name() string      { return jn.name }
func (jn *Junction) TimeNs() int64     { return jn.timeNs }

// Shares returns the register broadcasts fired by the junction.
func (jn *Junction) Shares() []*RegisterShare { return slices.Clone(jn.shares) }

// RegisterShare broadcasts a snapshot of Source, taken when the junction
// fires, into one destination register on each other engine.
type RegisterShare struct {
	junction *Junction
	name     string
	source   *Register
	bits     int
	dests    []*Register
}

func (rs *RegisterShare) Junction() *Junction { return rs.junction }
func (rs *RegisterShare) Name() string        { return rs.name }
func (rs *RegisterShare) Source() *Register   { return rs.source }
func (rs *RegisterShare) Bits() int           { return rs.bits }
func (rs *RegisterShare) Dests() []*Register  { return slices.Clone(rs.dests) }

// Mask returns the mask applied to the shared value.
func (rs *RegisterShare) Mask() uint32 { return BitMask(rs.bits) }

// checkShare finds the first violated share precondition.
func checkShare(prog *Program, source *Register, bits int, dests []*Register) (kind ConfigKind, name string, ok bool) {
	if source == nil || source.engine.program != prog {
		kind = KIND_FOREIGN_REGISTER
		if source != nil {
			name = source.String()
		}
		return
	}
	if len(dests) == 0 {
		return KIND_SHARE_EMPTY, source.String(), false
	}
	if bits < 1 || bits > source.width.Bits() {
		return KIND_SHARE_WIDTH, source.String(), false
	}

	seen := map[*Engine]bool{}
	for _, dest := range dests {
		switch {
		case dest == nil || dest.engine.program != prog:
			kind = KIND_FOREIGN_REGISTER
			if dest != nil {
				name = dest.String()
			}
			return
		case dest.engine == source.engine:
			return KIND_SHARE_SOURCE_ENGINE, dest.String(), false
		case seen[dest.engine]:
			return KIND_SHARE_DUPLICATE_ENGINE, dest.String(), false
		case bits > dest.width.Bits():
			return KIND_SHARE_WIDTH, dest.String(), false
		}
		seen[dest.engine] = true
	}

	ok = true
	return
}

// Share attaches a register broadcast to the junction. Destination
// registers must each be on a distinct engine other than the source's, and
// bits must fit the source and every destination.
func (jn *Junction) Share(name string, source *Register, bits int, dests []*Register) (rs *RegisterShare, err error) {
	prog := jn.program
	if err = prog.mutable("", name); err != nil {
		return
	}
	if slices.ContainsFunc(jn.shares, func(other *RegisterShare) bool { return other.name == name }) {
		err = &ConfigurationError{Kind: KIND_DUPLICATE_NAME, Name: name}
		return
	}

	kind, what, ok := checkShare(prog, source, bits, dests)
	if !ok {
		engine := ""
		if source != nil {
			engine = source.engine.name
		}
		err = &ConfigurationError{Kind: kind, Engine: engine, Name: name + ": " + what}
		return
	}

	rs = &RegisterShare{
		junction: jn,
		name:     name,
		source:   source,
		bits:     bits,
		dests:    slices.Clone(dests),
	}
	jn.shares = append(jn.shares, rs)

	return
}
