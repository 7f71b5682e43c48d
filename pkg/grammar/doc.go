// Package grammar imposes a hierarchical schema on a flat record stream.
//
// A Grammar is an ordered list of items. Each item names either a record type
// or a nested Rule (another Grammar, or a Choice between grammars), and may be
// optional and/or repeatable. Parsing matches a grammar against the stream and
// produces a Group holding the records and nested groups that matched each
// item. Serializing walks the grammar in order and writes whatever the group
// holds.
//
// # Matching
//
// The parser is greedy with one record of lookahead. For a record item it
// reads the next record:
//   - a record of the expected type is stored; a repeatable item stays current
//   - otherwise the record is pushed back, and the item is finished when it is
//     optional or already holds data
//   - otherwise, when the parse is nested under an optional or satisfied item
//     and has not consumed anything yet, the nested group is absent
//   - otherwise the stream violates the grammar
//
// The Context passed to each nested parse carries that last condition
// explicitly. A nested group that already consumed records and then fails is
// always a violation.
//
// # Streaming
//
// Large libraries need not be held in memory. ParseHeader reads the items of
// a grammar up to its first nested rule, ReadEach parses consecutive nested
// groups one at a time, and ParseFooter reads the rest. SerializeAs and
// SerializeFooter are the writing counterparts.
package grammar
