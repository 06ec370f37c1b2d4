// Package tui is the bubbletea front end behind "coursemate chat".
package tui

import (
	"errors"

	"github.com/custodia-labs/coursemate/internal/core/ports/driving"
)

var (
	ErrMissingQueryService   = errors.New("tui: query service is required")
	ErrMissingCatalogService = errors.New("tui: catalog service is required")
)

// Ports are the services the views call. Sessions may be nil, in which case
// "new conversation" only forgets the session ID locally.
type Ports struct {
	Query    driving.QueryService
	Catalog  driving.CatalogService
	Sessions driving.SessionService
}

func NewPorts(query driving.QueryService, catalog driving.CatalogService, sessions driving.SessionService) *Ports {
	return &Ports{Query: query, Catalog: catalog, Sessions: sessions}
}

// Validate reports every missing required service.
func (p *Ports) Validate() error {
	var errs []error
	if p.Query == nil {
		errs = append(errs, ErrMissingQueryService)
	}
	if p.Catalog == nil {
		errs = append(errs, ErrMissingCatalogService)
	}
	return errors.Join(errs...)
}
