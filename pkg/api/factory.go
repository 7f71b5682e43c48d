// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/ssargent/gdsstream/pkg/catalog"
)

// DefaultCatalogOpener opens pebble-backed catalogs
type DefaultCatalogOpener struct{}

// NewCatalogOpener creates a new catalog opener
func NewCatalogOpener() CatalogOpener {
	return &DefaultCatalogOpener{}
}

// OpenCatalog opens the catalog in dir
func (o *DefaultCatalogOpener) OpenCatalog(dir string) (CatalogCloser, error) {
	return catalog.Open(dir)
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, cat ICatalog, config ServerConfig) error {
	return StartServer(ctx, cat, config)
}
