// Package schema holds the GDSII grammars (library, structure, the seven
// element kinds, property and transformation blocks) together with builders
// and accessors for the groups they produce.
//
// The grammars are immutable package-level values: parse a file with
// grammar.Parse(r, schema.Library), or stream it with
// grammar.ParseHeader(r, schema.Library) followed by
// grammar.ReadEach(r, schema.Structure, fn).
package schema
