package domain

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrDomainRule          = errors.New("domain rule violated")
)

// Kind returns a stable label for the error taxonomy member err wraps.
// Errors outside the taxonomy are reported as "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrDomainRule):
		return "domain_rule"
	default:
		return "internal"
	}
}
