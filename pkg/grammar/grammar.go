package grammar

import (
	"fmt"
	"sync"

	"github.com/ssargent/gdsstream/pkg/codec"
)

// Key identifies a grammar item. It is either a codec.RecordType or a Rule.
type Key interface {
	String() string
}

// Rule is a key that matches a nested group rather than a single record.
// It is implemented by *Grammar and *Choice.
type Rule interface {
	Key
	parse(r *codec.Reader, ctx Context) (*Group, error)
}

// Item is one position of a grammar.
type Item struct {
	Key        Key
	Optional   bool
	Repeatable bool
}

// One is a required, single item.
func One(k Key) Item { return Item{Key: k} }

// Opt is an optional, single item.
func Opt(k Key) Item { return Item{Key: k, Optional: true} }

// Many is a required item that may repeat.
func Many(k Key) Item { return Item{Key: k, Repeatable: true} }

// OptMany is an item that may appear any number of times, including zero.
func OptMany(k Key) Item { return Item{Key: k, Optional: true, Repeatable: true} }

func (it Item) String() string {
	s := it.Key.String()
	if it.Repeatable {
		s += "*"
	}
	if it.Optional {
		s += "?"
	}
	return s
}

// Grammar is an immutable, ordered list of items. Grammars are built once,
// usually as package-level values, and shared by every parse.
type Grammar struct {
	name  string
	items []Item
	index map[Key]int

	once sync.Once
	head *Grammar
	tail *Grammar
}

// New builds a grammar. It panics when a key is nil or appears twice.
func New(name string, items ...Item) *Grammar {
	g := &Grammar{
		name:  name,
		items: append([]Item(nil), items...),
		index: make(map[Key]int, len(items)),
	}
	for i, it := range g.items {
		if it.Key == nil {
			panic(fmt.Sprintf("grammar %s: item %d has no key", name, i))
		}
		if _, dup := g.index[it.Key]; dup {
			panic(fmt.Sprintf("grammar %s: duplicate item %s", name, it.Key))
		}
		g.index[it.Key] = i
	}
	return g
}

// String returns the grammar name.
func (g *Grammar) String() string { return g.name }

// Items returns a copy of the item list.
func (g *Grammar) Items() []Item {
	return append([]Item(nil), g.items...)
}

// Lookup returns the item for key k.
func (g *Grammar) Lookup(k Key) (Item, bool) {
	i, ok := g.index[k]
	if !ok {
		return Item{}, false
	}
	return g.items[i], true
}

// Head returns the grammar made of the items before the first nested rule,
// or the whole grammar when it has none.
func (g *Grammar) Head() *Grammar {
	g.split()
	return g.head
}

// Tail returns the grammar made of the items after the last nested rule. It
// is empty when the grammar has no nested rule.
func (g *Grammar) Tail() *Grammar {
	g.split()
	return g.tail
}

func (g *Grammar) split() {
	g.once.Do(func() {
		first, last := -1, -1
		for i, it := range g.items {
			if _, ok := it.Key.(Rule); ok {
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if first < 0 {
			g.head = g
			g.tail = New(g.name + " footer")
			return
		}
		g.head = New(g.name+" header", g.items[:first]...)
		g.tail = New(g.name+" footer", g.items[last+1:]...)
	})
}

// leading returns the record type a grammar must start with, if its first
// item is a required record.
func (g *Grammar) leading() (codec.RecordType, bool) {
	if len(g.items) == 0 || g.items[0].Optional {
		return 0, false
	}
	t, ok := g.items[0].Key.(codec.RecordType)
	return t, ok
}

// Choice selects one of several grammars by the type of the next record. Each
// alternative must start with a distinct required record type.
type Choice struct {
	name   string
	alts   []*Grammar
	byType map[codec.RecordType]*Grammar
}

// NewChoice builds a choice rule. It panics when an alternative has no
// required leading record or two alternatives share one.
func NewChoice(name string, alts ...*Grammar) *Choice {
	c := &Choice{
		name:   name,
		alts:   append([]*Grammar(nil), alts...),
		byType: make(map[codec.RecordType]*Grammar, len(alts)),
	}
	for _, g := range alts {
		t, ok := g.leading()
		if !ok {
			panic(fmt.Sprintf("choice %s: alternative %s does not start with a required record", name, g))
		}
		if prev, dup := c.byType[t]; dup {
			panic(fmt.Sprintf("choice %s: %s and %s both start with %s", name, prev, g, t))
		}
		c.byType[t] = g
	}
	return c
}

// String returns the choice name.
func (c *Choice) String() string { return c.name }

// Alternatives returns the grammars of the choice in declaration order.
func (c *Choice) Alternatives() []*Grammar {
	return append([]*Grammar(nil), c.alts...)
}

// Select returns the alternative that starts with record type t.
func (c *Choice) Select(t codec.RecordType) (*Grammar, bool) {
	g, ok := c.byType[t]
	return g, ok
}

// accepts reports whether g is one of the alternatives.
func (c *Choice) accepts(g *Grammar) bool {
	for _, alt := range c.alts {
		if alt == g {
			return true
		}
	}
	return false
}
