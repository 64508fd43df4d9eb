package search

import (
	"log/slog"

	"github.com/coregx/ahocorasick"
)

// prefilter rejects input that contains none of a pattern's literals without
// running the pattern. A nil prefilter rejects nothing.
type prefilter struct {
	auto *ahocorasick.Automaton
}

func newPrefilter(literals [][]byte) *prefilter {
	if len(literals) == 0 {
		return nil
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		slog.Debug("literal prefilter disabled", "error", err)
		return nil
	}
	slog.Debug("literal prefilter enabled", "literals", len(literals))
	return &prefilter{auto: auto}
}

// skip reports whether b cannot contain a match.
func (pf *prefilter) skip(b []byte) bool {
	if pf == nil {
		return false
	}
	return !pf.auto.IsMatch(b)
}
