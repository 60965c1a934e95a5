// Package repository defines the metadata provider boundary the resolver
// consumes. Implementations live elsewhere: pkg/modrinth talks to the
// remote registry, pkg/pack serves hand-authored local components.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/invar-dev/invar/pkg/component"
)

// Project is the registry-level description of a component, independent
// of any particular version.
type Project struct {
	ID       string
	Slug     string
	Name     string
	Summary  string
	Category component.Category

	// Origin is "remote" for registry-backed projects and "local" for
	// hand-authored declarations.
	Origin string
}

// Provider supplies component metadata records. FetchVersions returns the
// full release list for a component, newest first, fully materialized.
// Any failure is reported as a *Error; the resolver treats every provider
// failure as a fatal abort of the current resolution, never as an
// implicit empty candidate set.
type Provider interface {
	FetchProject(ctx context.Context, id component.ID) (*Project, error)
	FetchVersions(ctx context.Context, id component.ID) ([]component.Version, error)
}

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	// NotFound means the registry has no project under the given ID.
	NotFound ErrorKind = "not_found"

	// RateLimited means the registry refused the request due to rate
	// limiting. Retrying is the caller's policy, never the core's.
	RateLimited ErrorKind = "rate_limited"

	// Unreachable covers transport-level failures.
	Unreachable ErrorKind = "unreachable"

	// MalformedRecord means the registry answered with a record that
	// could not be decoded.
	MalformedRecord ErrorKind = "malformed_record"
)

// Error is a structured provider failure.
type Error struct {
	Kind      ErrorKind
	Component component.ID
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s for %q: %v", e.Kind, e.Component, e.Err)
	}
	return fmt.Sprintf("provider %s for %q", e.Kind, e.Component)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a provider NotFound failure.
func IsNotFound(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == NotFound
}
