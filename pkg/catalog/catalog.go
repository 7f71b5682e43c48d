package catalog

import (
	"bytes"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

// Errors
var (
	ErrNotFound = errors.New("structure not found")
	ErrNoHeader = errors.New("catalog has no library header")
)

// Key layout:
//
//	h            library header records
//	n/<name>     structure name -> KSUID
//	s/<ksuid>    serialized structure
var (
	headerKey  = []byte("h")
	namePrefix = []byte("n/")
	dataPrefix = []byte("s/")
)

// Entry describes a stored structure
type Entry struct {
	Name    string      `json:"name"`
	ID      ksuid.KSUID `json:"id"`
	Size    int         `json:"size"`
	Created time.Time   `json:"created"`
}

// ImportResult summarizes an Import
type ImportResult struct {
	Library    string   `json:"library"`
	Structures int      `json:"structures"`
	Replaced   int      `json:"replaced"`
	Names      []string `json:"names"`
}

// Catalog stores the structures of a library in a pebble database, one
// key per structure, so single cells can be fetched or replaced without
// rewriting the whole stream.
type Catalog struct {
	db    *pebble.DB
	mutex sync.Mutex // serializes name index updates
}

// Open opens (creating if needed) the catalog in dir
func Open(dir string) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open catalog %s", dir)
	}
	return &Catalog{db: db}, nil
}

// Close closes the catalog
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Import reads a whole library from r. The header replaces the stored one
// and each structure replaces any structure of the same name. Nothing is
// written unless the whole library parses.
func (c *Catalog) Import(r *codec.Reader) (*ImportResult, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx := c.begin()
	defer tx.close()

	hdr, err := grammar.ParseHeader(r, schema.Library)
	if err != nil {
		return nil, err
	}
	if err := tx.putHeader(hdr); err != nil {
		return nil, err
	}

	res := &ImportResult{Library: schema.Name(hdr)}
	err = grammar.ReadEach(r, schema.Structure, func(str *grammar.Group) error {
		_, replaced, err := tx.put(str)
		if err != nil {
			return err
		}
		res.Structures++
		if replaced {
			res.Replaced++
		}
		res.Names = append(res.Names, schema.Name(str))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := grammar.ParseFooter(r, schema.Library); err != nil {
		return nil, err
	}
	if err := tx.commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// PutHeader stores the header records of lib (everything before the first
// structure).
func (c *Catalog) PutHeader(lib *grammar.Group) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx := c.begin()
	defer tx.close()
	if err := tx.putHeader(lib); err != nil {
		return err
	}
	return tx.commit()
}

// Header returns the stored library header as a library group with no
// structures.
func (c *Catalog) Header() (*grammar.Group, error) {
	data, closer, err := c.db.Get(headerKey)
	if err == pebble.ErrNotFound {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return grammar.ParseHeader(codec.NewReader(bytes.NewReader(data)), schema.Library)
}

// Put stores a structure under a fresh KSUID, replacing any structure of the
// same name.
func (c *Catalog) Put(str *grammar.Group) (ksuid.KSUID, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	tx := c.begin()
	defer tx.close()
	id, _, err := tx.put(str)
	if err != nil {
		return ksuid.Nil, err
	}
	if err := tx.commit(); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// txn stages writes in one pebble batch. Names written by the batch are
// tracked so later puts in the same batch see them.
type txn struct {
	c     *Catalog
	batch *pebble.Batch
	names map[string]ksuid.KSUID
}

// begin starts a txn. Callers hold c.mutex until commit or close.
func (c *Catalog) begin() *txn {
	return &txn{c: c, batch: c.db.NewBatch(), names: make(map[string]ksuid.KSUID)}
}

func (tx *txn) putHeader(lib *grammar.Group) error {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if err := grammar.SerializeAs(w, schema.Library.Head(), lib); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return tx.batch.Set(headerKey, buf.Bytes(), nil)
}

func (tx *txn) put(str *grammar.Group) (ksuid.KSUID, bool, error) {
	if str.Grammar() != schema.Structure {
		return ksuid.Nil, false, errors.Errorf("expected a structure; got %s", str.Grammar())
	}
	name := schema.Name(str)
	if name == "" {
		return ksuid.Nil, false, errors.Wrap(schema.ErrMalformedRecord, "structure has no name")
	}

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if err := grammar.Serialize(w, str); err != nil {
		return ksuid.Nil, false, err
	}
	if err := w.Flush(); err != nil {
		return ksuid.Nil, false, err
	}

	old, replaced := tx.names[name]
	if !replaced {
		var err error
		old, err = tx.c.lookup(name)
		replaced = err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return ksuid.Nil, false, err
		}
	}

	id := ksuid.New()
	if replaced {
		if err := tx.batch.Delete(dataKey(old), nil); err != nil {
			return ksuid.Nil, false, err
		}
	}
	if err := tx.batch.Set(dataKey(id), buf.Bytes(), nil); err != nil {
		return ksuid.Nil, false, err
	}
	if err := tx.batch.Set(nameKey(name), id.Bytes(), nil); err != nil {
		return ksuid.Nil, false, err
	}
	tx.names[name] = id
	return id, replaced, nil
}

func (tx *txn) commit() error {
	return tx.batch.Commit(pebble.Sync)
}

// close discards anything not committed.
func (tx *txn) close() {
	_ = tx.batch.Close()
}

// Lookup returns the catalog entry of a structure without parsing it
func (c *Catalog) Lookup(name string) (Entry, error) {
	id, err := c.lookup(name)
	if err != nil {
		return Entry{}, err
	}
	return c.entry(name, id), nil
}

// Raw returns the serialized records of a structure
func (c *Catalog) Raw(name string) ([]byte, error) {
	id, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	data, closer, err := c.db.Get(dataKey(id))
	if err == pebble.ErrNotFound {
		return nil, errors.Wrapf(ErrNotFound, "%q has a dangling id %s", name, id)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), data...), nil
}

// Get returns a parsed structure
func (c *Catalog) Get(name string) (*grammar.Group, error) {
	data, err := c.Raw(name)
	if err != nil {
		return nil, err
	}
	return grammar.Parse(codec.NewReader(bytes.NewReader(data)), schema.Structure)
}

// Delete removes a structure
func (c *Catalog) Delete(name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	id, err := c.lookup(name)
	if err != nil {
		return err
	}
	batch := c.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(nameKey(name), nil); err != nil {
		return err
	}
	if err := batch.Delete(dataKey(id), nil); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

// List returns the stored structures in name order
func (c *Catalog) List() ([]Entry, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: namePrefix,
		UpperBound: prefixEnd(namePrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt id for %q", iter.Key())
		}
		entries = append(entries, c.entry(string(iter.Key()[len(namePrefix):]), id))
	}
	return entries, iter.Error()
}

// Export writes the stored header, every structure in name order and ENDLIB.
func (c *Catalog) Export(w *codec.Writer) error {
	entries, err := c.List()
	if err != nil {
		return err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return c.ExportStructures(w, names...)
}

// ExportStructures writes a library holding only the named structures.
func (c *Catalog) ExportStructures(w *codec.Writer, names ...string) error {
	hdr, err := c.Header()
	if err != nil {
		return err
	}
	if err := grammar.SerializeAs(w, schema.Library.Head(), hdr); err != nil {
		return err
	}
	for _, name := range names {
		str, err := c.Get(name)
		if err != nil {
			return err
		}
		if err := grammar.Serialize(w, str); err != nil {
			return err
		}
	}
	return w.Write(codec.NewRecord(codec.EndLib, nil))
}

func (c *Catalog) entry(name string, id ksuid.KSUID) Entry {
	e := Entry{Name: name, ID: id, Created: id.Time()}
	if data, closer, err := c.db.Get(dataKey(id)); err == nil {
		e.Size = len(data)
		closer.Close()
	}
	return e
}

func (c *Catalog) lookup(name string) (ksuid.KSUID, error) {
	val, closer, err := c.db.Get(nameKey(name))
	if err == pebble.ErrNotFound {
		return ksuid.Nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	if err != nil {
		return ksuid.Nil, err
	}
	defer closer.Close()
	return ksuid.FromBytes(val)
}

func nameKey(name string) []byte {
	return append(append([]byte(nil), namePrefix...), name...)
}

func dataKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), dataPrefix...), id.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}
