package search

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mfroeh/streamgrep/regex"
)

func TestPrefilterSkip(t *testing.T) {
	tests := map[string]struct {
		givenLiterals []string
		givenLine     string
		want          bool
	}{
		"no literals never skips": {givenLiterals: nil, givenLine: "anything", want: false},
		"contains a literal":      {givenLiterals: []string{"foo", "bar"}, givenLine: "xxbarxx", want: false},
		"contains no literal":     {givenLiterals: []string{"foo", "bar"}, givenLine: "baz fo", want: true},
		"empty line":              {givenLiterals: []string{"foo"}, givenLine: "", want: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var lits [][]byte
			for _, l := range tt.givenLiterals {
				lits = append(lits, []byte(l))
			}

			// when
			got := newPrefilter(lits).skip([]byte(tt.givenLine))

			// then
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestPrefilterDoesNotChangeResults(t *testing.T) {
	input := strings.Join([]string{
		"the colour of the sky",
		"no match here",
		"color colour colr",
		"",
		"foobar barfoo",
		"COLOR",
	}, "\n")

	for _, re := range []string{"colou?r", "foo|bar", "o(ob|r)a", "[cC]olor"} {
		p := regex.MustCompile(re)
		for _, mode := range []Mode{Lines, OnlyMatching, Count} {
			opts := Options{Mode: mode, LineNumbers: true}

			filtered := New(p, opts)
			if filtered.pre == nil {
				t.Fatalf("%q: expected a prefilter", re)
			}
			unfiltered := New(p, opts)
			unfiltered.pre = nil

			// when
			var want, got bytes.Buffer
			unfiltered.Search("f", strings.NewReader(input), &want)
			filtered.Search("f", strings.NewReader(input), &got)

			// then
			if d := cmp.Diff(want.String(), got.String()); d != "" {
				t.Errorf("%q mode %d: got diff (-want +got):\n%s", re, mode, d)
			}
		}
	}
}
