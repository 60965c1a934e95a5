package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invar-dev/invar/pkg/component"
)

type stubProvider struct {
	projects map[component.ID]*Project
	err      *Error
	calls    int
}

func (s *stubProvider) FetchProject(_ context.Context, id component.ID) (*Project, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.projects[id]; ok {
		return p, nil
	}
	return nil, &Error{Kind: NotFound, Component: id}
}

func (s *stubProvider) FetchVersions(_ context.Context, id component.ID) ([]component.Version, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.projects[id]; ok {
		return []component.Version{{ID: "v1", Number: "1.0.0"}}, nil
	}
	return nil, &Error{Kind: NotFound, Component: id}
}

func TestChainFallsThroughNotFound(t *testing.T) {
	first := &stubProvider{}
	second := &stubProvider{projects: map[component.ID]*Project{
		"sodium": {Slug: "sodium", Origin: "remote"},
	}}

	chain := Chain{first, second}
	p, err := chain.FetchProject(context.Background(), "sodium")
	require.NoError(t, err)
	assert.Equal(t, "sodium", p.Slug)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainFirstAnswerWins(t *testing.T) {
	first := &stubProvider{projects: map[component.ID]*Project{
		"sodium": {Slug: "sodium", Origin: "local"},
	}}
	second := &stubProvider{projects: map[component.ID]*Project{
		"sodium": {Slug: "sodium", Origin: "remote"},
	}}

	chain := Chain{first, second}
	p, err := chain.FetchProject(context.Background(), "sodium")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Origin)
	assert.Zero(t, second.calls)
}

func TestChainStopsOnHardFailure(t *testing.T) {
	first := &stubProvider{err: &Error{Kind: RateLimited, Component: "sodium"}}
	second := &stubProvider{projects: map[component.ID]*Project{
		"sodium": {Slug: "sodium"},
	}}

	chain := Chain{first, second}
	_, err := chain.FetchVersions(context.Background(), "sodium")
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, RateLimited, perr.Kind)
	assert.Zero(t, second.calls, "a hard failure must not fall through")
}

func TestChainEmptyReportsNotFound(t *testing.T) {
	_, err := Chain{}.FetchProject(context.Background(), "sodium")
	assert.True(t, IsNotFound(err))
}
