package resolve

import (
	"fmt"
	"strings"

	"github.com/invar-dev/invar/pkg/component"
	"github.com/invar-dev/invar/pkg/versions"
)

// ViolationKind names one way an assignment fails its invariants.
type ViolationKind string

const (
	MissingRequired     ViolationKind = "missing_required"
	RangeNotSatisfied   ViolationKind = "range_not_satisfied"
	IncompatiblePair    ViolationKind = "incompatible_pair"
	LoaderMismatch      ViolationKind = "loader_mismatch"
	GameVersionMismatch ViolationKind = "game_version_mismatch"
)

// Violation is one specific, named inconsistency in an assignment.
type Violation struct {
	Kind ViolationKind

	// Component is the component whose selected version the violation
	// is about.
	Component component.ID

	// Target is the other end of the edge for edge violations, or the
	// other half of an incompatible pair.
	Target component.ID

	// Edge is the offending dependency declaration, when the violation
	// stems from one.
	Edge *component.Dependency

	// Actual is the value that failed the check: the target's selected
	// version for range violations, the pack loader or game version for
	// compatibility mismatches.
	Actual string

	// Allowed is the compatibility set the selected version declares,
	// for loader and game-version mismatches.
	Allowed []string
}

func (v Violation) String() string {
	switch v.Kind {
	case MissingRequired:
		return fmt.Sprintf("%s requires %s, which is not part of the pack", v.Component, v.Target)
	case RangeNotSatisfied:
		return fmt.Sprintf("%s requires %s %s, but %s is selected", v.Component, v.Target, v.Edge.Range, v.Actual)
	case IncompatiblePair:
		return fmt.Sprintf("%s is incompatible with %s", v.Component, v.Target)
	case LoaderMismatch:
		return fmt.Sprintf("%s supports loaders [%s], pack uses %s", v.Component, strings.Join(v.Allowed, ", "), v.Actual)
	case GameVersionMismatch:
		return fmt.Sprintf("%s supports game versions [%s], pack targets %s", v.Component, strings.Join(v.Allowed, ", "), v.Actual)
	}
	return string(v.Kind)
}

// Validate re-checks every edge constraint and every compatibility
// requirement of a committed assignment against the pack target. It is a
// pure function: the view is read-only and the graph is never touched.
//
// It serves two callers: the solver uses it as the final gate before
// committing a new assignment, and the doctor command runs it standalone
// to detect drift introduced by manual edits to persisted state.
func Validate(view View, target Target) []Violation {
	var violations []Violation
	foreign := target.foreignSet()

	for _, sel := range view.Assignment {
		version := sel.Version

		if !version.SupportsLoader(target.Loader, foreign) {
			violations = append(violations, Violation{
				Kind:      LoaderMismatch,
				Component: sel.Component,
				Actual:    target.Loader,
				Allowed:   version.Loaders,
			})
		}
		if !version.SupportsGameVersion(target.GameVersion) {
			violations = append(violations, Violation{
				Kind:      GameVersionMismatch,
				Component: sel.Component,
				Actual:    target.GameVersion,
				Allowed:   version.GameVersions,
			})
		}

		for i := range version.Dependencies {
			dep := version.Dependencies[i]
			selected, present := view.Selected(dep.Target)

			switch dep.Kind {
			case component.DependencyRequired:
				if !present {
					violations = append(violations, Violation{
						Kind:      MissingRequired,
						Component: sel.Component,
						Target:    dep.Target,
						Edge:      &dep,
					})
					continue
				}
				if !versions.SatisfiesRange(selected.Number, dep.Range) {
					violations = append(violations, Violation{
						Kind:      RangeNotSatisfied,
						Component: sel.Component,
						Target:    dep.Target,
						Edge:      &dep,
						Actual:    selected.Number,
					})
				}
			case component.DependencyOptional:
				if present && !versions.SatisfiesRange(selected.Number, dep.Range) {
					violations = append(violations, Violation{
						Kind:      RangeNotSatisfied,
						Component: sel.Component,
						Target:    dep.Target,
						Edge:      &dep,
						Actual:    selected.Number,
					})
				}
			case component.DependencyIncompatible:
				if present && withinIncompatibleRange(selected.Number, dep.Range) {
					violations = append(violations, Violation{
						Kind:      IncompatiblePair,
						Component: sel.Component,
						Target:    dep.Target,
						Edge:      &dep,
						Actual:    selected.Number,
					})
				}
			case component.DependencyEmbedded:
				// Embedded targets ship inside the declaring file and
				// never need a selection of their own.
			}
		}
	}

	return violations
}

// withinIncompatibleRange decides whether a selected version falls inside
// an Incompatible edge's range. An empty range forbids every version.
func withinIncompatibleRange(number, rangeExpr string) bool {
	if strings.TrimSpace(rangeExpr) == "" {
		return true
	}
	return versions.SatisfiesRange(number, rangeExpr)
}
