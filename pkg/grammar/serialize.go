package grammar

import (
	"github.com/ssargent/gdsstream/pkg/codec"
)

// Serialize writes g to w in grammar order. The whole group is checked first,
// so nothing is written when a required item is missing.
func Serialize(w *codec.Writer, g *Group) error {
	return SerializeAs(w, g.grammar, g)
}

// SerializeAs writes the data of g selected by spec, which may differ from the
// grammar g was parsed with. Library.Head(), for instance, writes only the
// library header of a fully parsed library.
func SerializeAs(w *codec.Writer, spec *Grammar, g *Group) error {
	if err := Check(spec, g); err != nil {
		return err
	}
	return Walk(spec, g, w.Write)
}

// SerializeFooter writes the items of g that follow its last nested rule.
func SerializeFooter(w *codec.Writer, g *Group) error {
	return SerializeAs(w, g.grammar.Tail(), g)
}

// Check verifies that every required item of spec, recursively, has data in g.
func Check(spec *Grammar, g *Group) error {
	for _, item := range spec.items {
		if g.Len(item.Key) == 0 {
			if !item.Optional {
				return &MissingFieldError{Grammar: spec.name, Item: item.Key.String()}
			}
			continue
		}
		if rule, ok := item.Key.(Rule); ok {
			for _, child := range g.groups[rule] {
				if err := Check(child.grammar, child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Walk calls fn for every record of g selected by spec, in stream order.
func Walk(spec *Grammar, g *Group, fn func(*codec.Record) error) error {
	for _, item := range spec.items {
		switch k := item.Key.(type) {
		case codec.RecordType:
			for _, rec := range g.records[k] {
				if err := fn(rec); err != nil {
					return err
				}
			}
		case Rule:
			for _, child := range g.groups[k] {
				if err := Walk(child.grammar, child, fn); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
