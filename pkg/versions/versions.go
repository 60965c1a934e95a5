// Package versions wraps version parsing, ordering and range matching for
// registry version identifiers, which are semver-like but not guaranteed
// to be strict semver (e.g. "0.5.1.j+1.20.1", "1.20.1-47.2.0").
package versions

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	goversion "github.com/hashicorp/go-version"
)

// NewVersion parses a registry version identifier leniently. Identifiers
// sometimes separate pre-release data with an underscore or carry a "v"
// prefix; both are tolerated.
func NewVersion(v string) (*goversion.Version, error) {
	v = strings.TrimPrefix(v, "v")
	v = strings.ReplaceAll(v, "_", "")
	return goversion.NewVersion(v)
}

// Compare orders two raw version identifiers. Identifiers that fail to
// parse sort below anything parseable; two unparseable identifiers fall
// back to lexical order so the overall ordering stays total and
// deterministic.
func Compare(a, b string) int {
	va, errA := NewVersion(a)
	vb, errB := NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// SatisfiesRange reports whether the version identifier falls inside the
// semver range expression (e.g. ">=1.1", "=1.0", "1.x"). An empty range
// is unbounded and always satisfied. When a range is declared but either
// side is unparseable, the check fails closed.
func SatisfiesRange(v, rangeExpr string) bool {
	rangeExpr = strings.TrimSpace(rangeExpr)
	if rangeExpr == "" || rangeExpr == "*" {
		return true
	}

	constraint, err := semver.NewConstraint(rangeExpr)
	if err != nil {
		return false
	}

	parsed, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		// Retry with the lenient parse; go-version accepts 4-segment
		// and underscore-separated identifiers that Masterminds won't.
		lenient, lerr := NewVersion(v)
		if lerr != nil {
			return false
		}
		parsed, err = semver.NewVersion(lenient.Core().String())
		if err != nil {
			return false
		}
	}

	return constraint.Check(parsed)
}

// ValidRange reports whether the expression parses as a semver range.
func ValidRange(rangeExpr string) bool {
	rangeExpr = strings.TrimSpace(rangeExpr)
	if rangeExpr == "" || rangeExpr == "*" {
		return true
	}
	_, err := semver.NewConstraint(rangeExpr)
	return err == nil
}
