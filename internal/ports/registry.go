package ports

import "shuttle/internal/domain"

// ServerRegistry resolves server identifiers to connection records.
// Lookup is case-sensitive and exact-match only.
type ServerRegistry interface {
	// Resolve returns the record for id. It fails with
	// application.ErrServerNotFound for unknown identifiers and
	// application.ErrServerDisabled for disabled ones.
	Resolve(id string) (*domain.Server, error)

	// List returns every configured record, including disabled ones,
	// in registry order.
	List() ([]domain.Server, error)
}
