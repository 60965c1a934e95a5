package resolve

import (
	"fmt"
	"strings"

	"github.com/invar-dev/invar/pkg/component"
)

// DuplicateComponentError is returned when a component key is added twice
// with conflicting origins.
type DuplicateComponentError struct {
	Component component.ID
	Existing  string
	Requested string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("component %q already declared with origin %s (requested %s)",
		e.Component, e.Existing, e.Requested)
}

// UnknownComponentError is returned when an operation names a component
// that is not declared in the graph.
type UnknownComponentError struct {
	Component component.ID
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("component %q is not part of the pack", e.Component)
}

// EdgeRef names a dependency edge together with the component whose
// selected version declares it, for diagnostics.
type EdgeRef struct {
	Source component.ID
	Edge   component.Dependency
}

func (r EdgeRef) String() string {
	s := fmt.Sprintf("%s -> %s (%s", r.Source, r.Edge.Target, r.Edge.Kind)
	if r.Edge.Range != "" {
		s += " " + r.Edge.Range
	}
	return s + ")"
}

// UnsatisfiableError is returned when no assignment satisfies every
// constraint. It carries the chain of edges that constrained the failing
// component and the candidate versions that were considered and rejected.
type UnsatisfiableError struct {
	// Component is the component no candidate could be selected for.
	Component component.ID

	// Constraint is the explicit version constraint on the component,
	// if one was requested.
	Constraint string

	// Edges lists the inbound edges that constrained the component at
	// the moment its candidate list ran out.
	Edges []EdgeRef

	// Considered lists the version numbers that were fetched for the
	// component before pruning, newest first.
	Considered []string
}

func (e *UnsatisfiableError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no version of %q satisfies all constraints", e.Component)
	if e.Constraint != "" {
		fmt.Fprintf(&sb, " (requested %s)", e.Constraint)
	}
	for _, edge := range e.Edges {
		sb.WriteString("\n  constrained by ")
		sb.WriteString(edge.String())
	}
	if len(e.Considered) > 0 {
		fmt.Fprintf(&sb, "\n  candidates tried: %s", strings.Join(e.Considered, ", "))
	}
	return sb.String()
}

// ValidationError is returned when the post-resolution validation gate
// rejects an assignment the search believed complete.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "resolved assignment failed validation with %d violation(s):", len(e.Violations))
	for _, v := range e.Violations {
		sb.WriteString("\n  ")
		sb.WriteString(v.String())
	}
	return sb.String()
}
