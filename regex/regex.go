package regex

// missing and I want to add:
// multiline '^' and '$' anywhere in the pattern, not only at its ends
// potentially: POSIX character sets outside of brackets
// potentially: non-greedy (lazy) quantifier variants like .+?

import (
	"strings"
	"unicode"
)

// Submatch is the text of a match or of one of its capture groups. Offset is
// -1 for a group that did not participate.
type Submatch struct {
	Offset int
	Str    string
}

// Leftmost filters a start-ordered sequence of matches, as produced by an
// Iterator, down to non-overlapping leftmost-longest matches.
type Leftmost struct {
	end int
}

// Keep reports whether m starts at or after the end of the last kept match.
func (l *Leftmost) Keep(m Match) bool {
	if m.Start < l.end {
		return false
	}
	l.end = m.End
	return true
}

func (l *Leftmost) Reset() {
	l.end = 0
}

// Match reports whether b contains a match of the pattern.
func (p *Pattern) Match(b []byte) bool {
	return NewSimulator(p).Contains(b)
}

func (p *Pattern) MatchString(s string) bool {
	return p.Match([]byte(s))
}

// FindAllSubmatches finds up to maxCount non-overlapping leftmost-longest
// matches of the pattern in s. Element 0 of each result is the whole match,
// followed by one element per capture group.
// To return all submatches pass a maxCount of -1
func (p *Pattern) FindAllSubmatches(s string, maxCount int) [][]Submatch {
	if maxCount == 0 {
		return nil
	}

	var allSubmatches [][]Submatch
	var lm Leftmost
	collect := func(ms []Match) bool {
		for _, m := range ms {
			if !lm.Keep(m) {
				continue
			}
			allSubmatches = append(allSubmatches, submatches(s, m))
			if maxCount != -1 && len(allSubmatches) >= maxCount {
				return false
			}
		}
		return true
	}

	it := NewIterator(p)
	for i := 0; i < len(s); i++ {
		if !collect(it.Feed(s[i])) {
			return allSubmatches
		}
	}
	collect(it.Flush())
	return allSubmatches
}

func (p *Pattern) FindSubmatch(s string) []Submatch {
	submatch := p.FindAllSubmatches(s, 1)
	if len(submatch) < 1 {
		return nil
	}
	return submatch[0]
}

// Replace replaces the first match in s with the expansion of with, in which
// $N stands for the text of submatch N.
func (p *Pattern) Replace(s string, with string) string {
	submatches := p.FindSubmatch(s)
	if submatches == nil {
		return s
	}

	out := strings.Builder{}
	out.WriteString(s[:submatches[0].Offset])
	for i := 0; i < len(with); i++ {
		if with[i] == '$' && i+1 < len(with) && unicode.IsDigit(rune(with[i+1])) {
			num := 0
			for j := i + 1; j < len(with) && unicode.IsDigit(rune(with[j])); j++ {
				num *= 10
				num += int(with[j] - '0')
				i++
			}

			if num < len(submatches) {
				out.WriteString(submatches[num].Str)
			}
		} else {
			out.WriteByte(with[i])
		}
	}
	out.WriteString(s[submatches[0].Offset+len(submatches[0].Str):])
	return out.String()
}

func submatches(s string, m Match) []Submatch {
	out := make([]Submatch, 0, 1+len(m.Groups))
	out = append(out, Submatch{Offset: m.Start, Str: s[m.Start:m.End]})
	for _, g := range m.Groups {
		if !g.IsSet() {
			out = append(out, Submatch{Offset: -1})
			continue
		}
		out = append(out, Submatch{Offset: g.Start, Str: s[g.Start:g.End]})
	}
	return out
}
