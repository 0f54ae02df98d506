package repository

import "github.com/alexanderramin/agenda/internal/domain"

// ErrNotFound is returned when a lookup matches no row. It is the domain
// sentinel so callers can test with errors.Is at any layer.
var ErrNotFound = domain.ErrNotFound
