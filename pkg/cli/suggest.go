package cli

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/invar-dev/invar/pkg/component"
)

// didYouMean returns the known component closest to the input, if any is
// close enough to plausibly be a typo.
func didYouMean(input component.ID, known []component.ID) string {
	const maxDistance = 3

	best := ""
	bestDistance := maxDistance + 1
	for _, candidate := range known {
		if candidate == input {
			continue
		}
		d := levenshtein.DistanceForStrings([]rune(input.String()), []rune(candidate.String()), levenshtein.DefaultOptions)
		if d < bestDistance {
			best = candidate.String()
			bestDistance = d
		}
	}
	return best
}
