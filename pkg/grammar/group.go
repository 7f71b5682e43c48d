package grammar

import (
	"fmt"
	"slices"

	"github.com/ssargent/gdsstream/pkg/codec"
)

// Group is a parsed instance of a grammar. It owns the records and nested
// groups that matched each item.
type Group struct {
	grammar *Grammar
	records map[codec.RecordType][]*codec.Record
	groups  map[Rule][]*Group
}

// NewGroup creates an empty group for g.
func NewGroup(g *Grammar) *Group {
	return &Group{
		grammar: g,
		records: make(map[codec.RecordType][]*codec.Record),
		groups:  make(map[Rule][]*Group),
	}
}

// Grammar returns the grammar the group conforms to.
func (g *Group) Grammar() *Grammar { return g.grammar }

// Record returns the first record stored for t, or nil.
func (g *Group) Record(t codec.RecordType) *codec.Record {
	if recs := g.records[t]; len(recs) > 0 {
		return recs[0]
	}
	return nil
}

// Records returns every record stored for t, in stream order.
func (g *Group) Records(t codec.RecordType) []*codec.Record {
	return g.records[t]
}

// SetRecord replaces whatever is stored under the record's type.
func (g *Group) SetRecord(rec *codec.Record) {
	g.mustItem(rec.Type)
	g.records[rec.Type] = []*codec.Record{rec}
}

// AddRecord appends rec. For items that do not repeat it behaves like SetRecord.
func (g *Group) AddRecord(rec *codec.Record) {
	if !g.mustItem(rec.Type).Repeatable {
		g.SetRecord(rec)
		return
	}
	g.records[rec.Type] = append(g.records[rec.Type], rec)
}

// Group returns the first nested group stored for rule, or nil.
func (g *Group) Group(rule Rule) *Group {
	if gs := g.groups[rule]; len(gs) > 0 {
		return gs[0]
	}
	return nil
}

// Groups returns every nested group stored for rule, in stream order.
func (g *Group) Groups(rule Rule) []*Group {
	return g.groups[rule]
}

// SetGroup replaces whatever is stored under rule.
func (g *Group) SetGroup(rule Rule, child *Group) {
	g.mustItem(rule)
	mustConform(rule, child)
	g.groups[rule] = []*Group{child}
}

// AddGroup appends child. For items that do not repeat it behaves like SetGroup.
func (g *Group) AddGroup(rule Rule, child *Group) {
	if !g.mustItem(rule).Repeatable {
		g.SetGroup(rule, child)
		return
	}
	mustConform(rule, child)
	g.groups[rule] = append(g.groups[rule], child)
}

// Has reports whether anything is stored under key.
func (g *Group) Has(key Key) bool {
	return g.Len(key) > 0
}

// Len returns the number of entries stored under key.
func (g *Group) Len(key Key) int {
	switch k := key.(type) {
	case codec.RecordType:
		return len(g.records[k])
	case Rule:
		return len(g.groups[k])
	}
	return 0
}

// Delete removes everything stored under key.
func (g *Group) Delete(key Key) {
	switch k := key.(type) {
	case codec.RecordType:
		delete(g.records, k)
	case Rule:
		delete(g.groups, k)
	}
}

// RemoveRecords deletes the records of type t for which match returns true
// and reports how many were removed.
func (g *Group) RemoveRecords(t codec.RecordType, match func(*codec.Record) bool) int {
	before := len(g.records[t])
	g.records[t] = slices.DeleteFunc(g.records[t], match)
	return before - len(g.records[t])
}

// RemoveGroups deletes the nested groups under rule for which match returns
// true and reports how many were removed.
func (g *Group) RemoveGroups(rule Rule, match func(*Group) bool) int {
	before := len(g.groups[rule])
	g.groups[rule] = slices.DeleteFunc(g.groups[rule], match)
	return before - len(g.groups[rule])
}

// Empty reports whether the group holds no records and no nested groups.
func (g *Group) Empty() bool {
	for _, recs := range g.records {
		if len(recs) > 0 {
			return false
		}
	}
	for _, gs := range g.groups {
		if len(gs) > 0 {
			return false
		}
	}
	return true
}

func (g *Group) mustItem(key Key) Item {
	it, ok := g.grammar.Lookup(key)
	if !ok {
		panic(fmt.Sprintf("grammar %s has no item %s", g.grammar, key))
	}
	return it
}

func mustConform(rule Rule, child *Group) {
	switch r := rule.(type) {
	case *Grammar:
		if child.grammar == r {
			return
		}
	case *Choice:
		if r.accepts(child.grammar) {
			return
		}
	}
	panic(fmt.Sprintf("group of %s cannot be stored under %s", child.grammar, rule))
}
