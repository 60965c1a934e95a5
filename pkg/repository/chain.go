package repository

import (
	"context"

	"github.com/invar-dev/invar/pkg/component"
)

// Chain queries providers in order and returns the first answer that
// isn't a NotFound. Any other failure stops the chain immediately: a
// rate-limited or unreachable registry must surface as such, not fall
// through to an implicit miss.
type Chain []Provider

// FetchProject implements Provider.
func (c Chain) FetchProject(ctx context.Context, id component.ID) (*Project, error) {
	var lastErr error
	for _, p := range c {
		project, err := p.FetchProject(ctx, id)
		if err == nil {
			return project, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &Error{Kind: NotFound, Component: id}
	}
	return nil, lastErr
}

// FetchVersions implements Provider.
func (c Chain) FetchVersions(ctx context.Context, id component.ID) ([]component.Version, error) {
	var lastErr error
	for _, p := range c {
		fetched, err := p.FetchVersions(ctx, id)
		if err == nil {
			return fetched, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &Error{Kind: NotFound, Component: id}
	}
	return nil, lastErr
}
