package codec

// Filter selects the record types a Reader decodes. Records of other types are
// skipped without decoding. A nil Filter allows every type.
type Filter map[RecordType]struct{}

// NewFilter builds a filter allowing only the given types.
func NewFilter(types ...RecordType) Filter {
	f := make(Filter, len(types))
	for _, t := range types {
		f[t] = struct{}{}
	}
	return f
}

// Allows reports whether records of type t pass the filter.
func (f Filter) Allows(t RecordType) bool {
	if f == nil {
		return true
	}
	_, ok := f[t]
	return ok
}
