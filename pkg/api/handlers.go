package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/ssargent/gdsstream/pkg/catalog"
	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

const defaultMaxImportBytes = 256 << 20

// Server holds the API server state
type Server struct {
	catalog ICatalog
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(catalog ICatalog, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		catalog: catalog,
		config:  config,
		metrics: metrics,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListStructures godoc
//
//	@Summary		List structures
//	@Description	List the structures stored in the catalog, in name order
//	@Tags			structures
//	@Produce		json
//	@Success		200	{array}		catalog.Entry
//	@Failure		500	{object}	APIResponse
//	@Router			/structures [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListStructures(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.catalog.List()
	s.metrics.RecordCatalogOperation("list", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list structures: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	s.metrics.UpdateCatalogStats(len(entries))
	sendSuccess(w, entries)
}

// handleGetStructure godoc
//
//	@Summary		Get a structure
//	@Description	Dump the records of a structure as JSON
//	@Tags			structures
//	@Produce		json
//	@Param			name	path		string	true	"Structure name"
//	@Success		200		{object}	StructureDump
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/structures/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	name, ok := structureName(w, r)
	if !ok {
		return
	}

	start := time.Now()
	entry, err := s.catalog.Lookup(name)
	var str *grammar.Group
	if err == nil {
		str, err = s.catalog.Get(name)
	}
	s.metrics.RecordCatalogOperation("get", err == nil, time.Since(start))
	if err != nil {
		sendCatalogError(w, err)
		return
	}

	dump := StructureDump{Name: schema.Name(str), ID: entry.ID, Elements: len(schema.Elements(str))}

	var offset int64
	err = grammar.Walk(str.Grammar(), str, func(rec *codec.Record) error {
		dump.Records = append(dump.Records, RecordDump{
			Offset: offset,
			Type:   rec.Name(),
			Kind:   rec.Kind().String(),
			Size:   rec.Size(),
			Value:  rec.String(),
		})
		offset += int64(rec.Size())
		return nil
	})
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, dump)
}

// handleGetStructureGDS godoc
//
//	@Summary		Download a structure
//	@Description	Stream a library holding only the named structure, using the catalog's library header
//	@Tags			structures
//	@Produce		octet-stream
//	@Param			name	path		string	true	"Structure name"
//	@Success		200		{file}		binary
//	@Failure		404		{object}	APIResponse
//	@Router			/structures/{name}/gds [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetStructureGDS(w http.ResponseWriter, r *http.Request) {
	name, ok := structureName(w, r)
	if !ok {
		return
	}

	start := time.Now()
	if _, err := s.catalog.Lookup(name); err != nil {
		s.metrics.RecordCatalogOperation("export", false, time.Since(start))
		sendCatalogError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".gds"))
	w.WriteHeader(http.StatusOK)

	// Headers are gone once the first byte is written; failures after this
	// point only show in the metrics.
	cw := codec.NewWriter(w, codec.WithTracer(s.metrics))
	err := s.catalog.ExportStructures(cw, name)
	if err == nil {
		err = cw.Flush()
	}
	s.metrics.RecordCatalogOperation("export", err == nil, time.Since(start))
}

// handleDeleteStructure godoc
//
//	@Summary		Delete a structure
//	@Description	Remove a structure from the catalog
//	@Tags			structures
//	@Produce		json
//	@Param			name	path		string	true	"Structure name"
//	@Success		200		{object}	map[string]string
//	@Failure		404		{object}	APIResponse
//	@Router			/structures/{name} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteStructure(w http.ResponseWriter, r *http.Request) {
	name, ok := structureName(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := s.catalog.Delete(name)
	s.metrics.RecordCatalogOperation("delete", err == nil, time.Since(start))
	if err != nil {
		sendCatalogError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "Structure deleted successfully"})
}

// handleImport godoc
//
//	@Summary		Import a library
//	@Description	Store every structure of a GDSII stream, replacing structures of the same name
//	@Tags			structures
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"GDSII stream"
//	@Success		200		{object}	catalog.ImportResult
//	@Failure		400		{object}	APIResponse
//	@Router			/import [post]
//	@Security		ApiKeyAuth
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	limit := s.config.MaxImportBytes
	if limit <= 0 {
		limit = defaultMaxImportBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)

	start := time.Now()
	res, err := s.catalog.Import(codec.NewReader(body, codec.WithTracer(s.metrics)))
	s.metrics.RecordCatalogOperation("import", err == nil, time.Since(start))
	if err != nil {
		sendCatalogError(w, err)
		return
	}
	sendSuccess(w, res)
}

// structureName extracts the unescaped {name} URL parameter
func structureName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		sendError(w, "Invalid structure name encoding", http.StatusBadRequest)
		return "", false
	}
	if name == "" {
		sendError(w, "Structure name is required", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// sendCatalogError maps catalog and stream errors to HTTP statuses
func sendCatalogError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	var recErr *codec.RecordError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &maxErr):
		sendError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, grammar.ErrGrammarViolation),
		errors.Is(err, grammar.ErrMissingRequiredField),
		errors.As(err, &recErr):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}
