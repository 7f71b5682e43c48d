// Package api provides interfaces for dependency injection
package api

import "context"

// CatalogOpener opens the structure catalog the server is backed by
type CatalogOpener interface {
	// OpenCatalog opens (creating if needed) the catalog in dir
	OpenCatalog(dir string) (CatalogCloser, error)
}

// CatalogCloser is a catalog that must be closed when the server stops
type CatalogCloser interface {
	ICatalog
	Close() error
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the catalog until ctx is cancelled
	StartServer(ctx context.Context, catalog ICatalog, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
