package grammar

import (
	"io"

	"github.com/ssargent/gdsstream/pkg/codec"
)

// Context tells a nested parse what its parent expects of it.
type Context int

const (
	// Root is a top-level parse; a mismatch is always a violation.
	Root Context = iota
	// UnderOptional is a nested parse whose covering item is optional or
	// already satisfied. A mismatch before anything was consumed means the
	// nested group is absent.
	UnderOptional
	// UnderRequired is a nested parse whose covering item must match.
	UnderRequired
)

func (c Context) String() string {
	switch c {
	case Root:
		return "root"
	case UnderOptional:
		return "under-optional"
	case UnderRequired:
		return "under-required"
	}
	return "unknown"
}

// Parse reads one group conforming to rule.
func Parse(r *codec.Reader, rule Rule) (*Group, error) {
	return rule.parse(r, Root)
}

// ParseHeader reads the records of g that precede its first nested rule, for
// streaming large libraries and structures. The returned group conforms to g.
func ParseHeader(r *codec.Reader, g *Grammar) (*Group, error) {
	grp, err := g.Head().parse(r, Root)
	if err != nil {
		return nil, err
	}
	grp.grammar = g
	return grp, nil
}

// ParseFooter reads the records of g that follow its last nested rule.
func ParseFooter(r *codec.Reader, g *Grammar) (*Group, error) {
	grp, err := g.Tail().parse(r, Root)
	if err != nil {
		return nil, err
	}
	grp.grammar = g
	return grp, nil
}

// ReadEach parses consecutive groups of rule and calls fn for each one. It
// stops without error at the first record that cannot start the rule; that
// record is left unread.
func ReadEach(r *codec.Reader, rule Rule, fn func(*Group) error) error {
	for {
		grp, err := rule.parse(r, UnderOptional)
		if err != nil {
			return err
		}
		if grp == nil {
			return nil
		}
		if err := fn(grp); err != nil {
			return err
		}
	}
}

// parse matches the items of g in order. It returns (nil, nil) when ctx is
// UnderOptional and the first record does not fit, leaving the stream where
// it was.
func (g *Grammar) parse(r *codec.Reader, ctx Context) (*Group, error) {
	grp := NewGroup(g)
	start := r.Offset()

	for i := 0; i < len(g.items); {
		item := g.items[i]

		switch k := item.Key.(type) {
		case Rule:
			sub := UnderRequired
			if item.Optional || grp.Has(k) {
				sub = UnderOptional
			}
			before := r.Offset()
			child, err := k.parse(r, sub)
			if err != nil {
				return nil, err
			}
			if child == nil || (r.Offset() == before && (item.Optional || grp.Has(k))) {
				// absent, or an all-optional group that matched nothing
				i++
				continue
			}
			grp.groups[k] = append(grp.groups[k], child)
			if !item.Repeatable || r.Offset() == before {
				i++
			}

		case codec.RecordType:
			before := r.Offset()
			rec, err := r.Read(nil)
			if err != nil && err != io.EOF {
				return nil, err
			}
			if rec != nil && rec.Type == k {
				grp.records[k] = append(grp.records[k], rec)
				if !item.Repeatable {
					i++
				}
				continue
			}
			if rec != nil {
				if err := r.Unread(); err != nil {
					return nil, err
				}
			}
			if item.Optional || grp.Has(k) {
				i++
				continue
			}
			if ctx == UnderOptional && r.Offset() == start {
				return nil, nil
			}
			return nil, newViolation(g, k, before, rec)
		}
	}
	return grp, nil
}

// parse dispatches on the type of the next record.
func (c *Choice) parse(r *codec.Reader, ctx Context) (*Group, error) {
	offset := r.Offset()
	rec, err := r.Peek()
	if err != nil && err != io.EOF {
		return nil, err
	}
	if rec != nil {
		if g, ok := c.byType[rec.Type]; ok {
			return g.parse(r, ctx)
		}
	}
	if ctx == UnderOptional {
		return nil, nil
	}
	return nil, newViolation(c, c, offset, rec)
}
