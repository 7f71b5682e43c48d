package store

import (
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/bptree"
	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

// indexFilter selects the only records an index scan decodes; element
// payloads are skipped undecoded.
var indexFilter = codec.NewFilter(codec.BgnStr, codec.StrName, codec.EndStr)

// indexOrder is the branching factor of the name tree
const indexOrder = 32

// StructureIndex maps structure names to their location in a stream file
type StructureIndex struct {
	entries *bptree.BPlusTree[string, *IndexEntry]
	order   []string
	mutex   sync.RWMutex
}

// NewStructureIndex creates an empty index
func NewStructureIndex() *StructureIndex {
	return &StructureIndex{
		entries: bptree.NewBPlusTree[string, *IndexEntry](indexOrder),
	}
}

// BuildIndex scans r from its current offset to the end of the stream.
func BuildIndex(r *StreamReader) (*StructureIndex, error) {
	idx := NewStructureIndex()
	var current *IndexEntry
	for {
		start := r.Offset()
		rec, err := r.Records().Read(indexFilter)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}

		switch rec.Type {
		case codec.BgnStr:
			current = &IndexEntry{Offset: start}
		case codec.StrName:
			if current == nil {
				return nil, errors.Wrapf(ErrCorruption, "STRNAME outside a structure at offset %d", start)
			}
			current.Name = rec.Text()
		case codec.EndStr:
			if current == nil {
				return nil, errors.Wrapf(ErrCorruption, "ENDSTR without BGNSTR at offset %d", start)
			}
			current.Size = r.Offset() - current.Offset
			idx.Put(current)
			current = nil
		}
	}
	if current != nil {
		return nil, errors.Wrapf(ErrCorruption, "structure %q at offset %d has no ENDSTR", current.Name, current.Offset)
	}
	return idx, nil
}

// IndexFile builds the structure index of a stream file
func IndexFile(path string) (*StructureIndex, error) {
	var idx *StructureIndex
	err := ReadFile(path, func(r *StreamReader) error {
		var err error
		idx, err = BuildIndex(r)
		return err
	})
	return idx, err
}

// Put adds or updates the entry for a structure
func (idx *StructureIndex) Put(entry *IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if idx.entries.Insert(entry.Name, entry) {
		idx.order = append(idx.order, entry.Name)
	}
}

// Get retrieves the entry for a structure
func (idx *StructureIndex) Get(name string) (*IndexEntry, bool) {
	return idx.entries.Search(name)
}

// Size returns the number of indexed structures
func (idx *StructureIndex) Size() int {
	return idx.entries.Len()
}

// Entries returns the entries in stream order
func (idx *StructureIndex) Entries() []*IndexEntry {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	entries := make([]*IndexEntry, 0, len(idx.order))
	for _, name := range idx.order {
		entry, _ := idx.entries.Search(name)
		entries = append(entries, entry)
	}
	return entries
}

// NamesWithPrefix returns the sorted names that start with prefix
func (idx *StructureIndex) NamesWithPrefix(prefix string) []string {
	var names []string
	idx.entries.Ascend(prefix, func(name string, _ *IndexEntry) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		names = append(names, name)
		return true
	})
	return names
}

// ReadStructure seeks r to the named structure and parses it.
func (idx *StructureIndex) ReadStructure(r *StreamReader, name string) (*grammar.Group, error) {
	entry, ok := idx.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrStructureNotFound, "%q", name)
	}
	if err := r.Seek(entry.Offset); err != nil {
		return nil, err
	}
	return grammar.Parse(r.Records(), schema.Structure)
}
