package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/gdsstream/pkg/catalog"
	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
	// MaxImportBytes caps the size of an import request body (0 = 256 MiB)
	MaxImportBytes int64
}

// RecordDump is the JSON form of one record of a structure
type RecordDump struct {
	Offset int64  `json:"offset"`
	Type   string `json:"type"`
	Kind   string `json:"kind"`
	Size   int    `json:"size"`
	Value  string `json:"value"`
}

// StructureDump is the JSON form of a stored structure
type StructureDump struct {
	Name     string       `json:"name"`
	ID       ksuid.KSUID  `json:"id"`
	Elements int          `json:"elements"`
	Records  []RecordDump `json:"records"`
}

// ICatalog defines the catalog operations the API needs
type ICatalog interface {
	Import(r *codec.Reader) (*catalog.ImportResult, error)
	Get(name string) (*grammar.Group, error)
	Lookup(name string) (catalog.Entry, error)
	Delete(name string) error
	List() ([]catalog.Entry, error)
	Export(w *codec.Writer) error
	ExportStructures(w *codec.Writer, names ...string) error
}
