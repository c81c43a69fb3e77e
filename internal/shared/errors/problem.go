// Package errors renders storefront failures as RFC 7807 Problem Details.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 Problem Details body.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithInstance returns a copy with the given instance URI.
func (p ProblemDetail) WithInstance(instance string) ProblemDetail {
	p.Instance = instance
	return p
}

// WithExtension returns a copy with an additional extension property. The
// receiver's map is never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem type URI references.
const (
	TypeBadRequest        = "/problems/bad-request"
	TypeNotFound          = "/problems/not-found"
	TypeConflict          = "/problems/conflict"
	TypeUpstream          = "/problems/upstream-unavailable"
	TypeUpstreamMalformed = "/problems/upstream-malformed"
	TypeInternal          = "/problems/internal-error"
)

var (
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrConflict covers actions the current checkout or cart state refuses.
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	// ErrUpstream means a remote sheet or order endpoint could not be reached.
	ErrUpstream = ProblemDetail{
		Type:   TypeUpstream,
		Title:  "Upstream Unavailable",
		Status: http.StatusBadGateway,
	}

	// ErrUpstreamMalformed means a remote answered with a payload that could
	// not be read.
	ErrUpstreamMalformed = ProblemDetail{
		Type:   TypeUpstreamMalformed,
		Title:  "Upstream Response Unreadable",
		Status: http.StatusBadGateway,
	}

	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)

// NewNotFoundProblem creates a not found problem for one resource.
func NewNotFoundProblem(resourceType string, identifier any) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s '%v' not found", resourceType, identifier)).
		WithExtension("resourceType", resourceType).
		WithExtension("identifier", identifier)
}
