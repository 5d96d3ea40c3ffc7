// Package identity resolves full or abbreviated hex ids against a set of
// known ids.
package identity

import (
	"sort"
	"strings"

	"github.com/bnema/dexplore/internal/domain"
)

// Nouns used in resolution messages.
const (
	NounContainer = "container ID"
	NounLayer     = "layer ID"
)

// Outcome is the result class of a resolution.
type Outcome int

const (
	NotFound Outcome = iota
	Matched
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Resolution is the explicit result of Resolve. ID is set only when
// Outcome is Matched; Candidates is sorted and set only when Ambiguous.
type Resolution struct {
	Noun       string
	Prefix     string
	Outcome    Outcome
	ID         string
	Candidates []string
}

// Resolve matches prefix case-sensitively against known. A full id
// resolves to itself.
func Resolve(noun, prefix string, known []string) Resolution {
	res := Resolution{Noun: noun, Prefix: prefix}

	var matches []string
	for _, id := range known {
		if id == prefix {
			res.Outcome = Matched
			res.ID = id
			return res
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}

	sort.Strings(matches)
	matches = dedupe(matches)

	switch len(matches) {
	case 0:
		res.Outcome = NotFound
	case 1:
		res.Outcome = Matched
		res.ID = matches[0]
	default:
		res.Outcome = Ambiguous
		res.Candidates = matches
	}
	return res
}

// Err returns nil for a match, otherwise a container lookup error whose
// message names the query and, when ambiguous, every candidate.
func (r Resolution) Err() error {
	switch r.Outcome {
	case Matched:
		return nil
	case Ambiguous:
		return domain.NewContainerError("Too many %ss starting with \"%s\": %s",
			r.Noun, r.Prefix, strings.Join(r.Candidates, ", "))
	default:
		return domain.NewContainerError("Could not find any %s starting with \"%s\"", r.Noun, r.Prefix)
	}
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
