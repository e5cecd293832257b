package insight

import "errors"

var (
	// ErrUnauthorized is returned when a request carries no user identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidAssets is returned for an empty list or unknown symbols.
	ErrInvalidAssets = errors.New("invalid assets")
	// ErrInvalidPersona is returned for an unknown investor persona.
	ErrInvalidPersona = errors.New("invalid persona")
)
