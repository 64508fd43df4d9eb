package search

import (
	"bufio"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/mfroeh/streamgrep/regex"
)

func (s *Searcher) writePrefix(w *bufio.Writer, name string, lineno int) {
	if s.opts.WithFilename && !s.opts.Heading {
		w.WriteString(s.nameColor.Sprint(name))
		w.WriteByte(':')
	}
	if s.opts.LineNumbers {
		w.WriteString(s.lineColor.Sprint(strconv.Itoa(lineno)))
		w.WriteByte(':')
	}
}

// writeHighlighted writes line with every match in ms highlighted. Matches
// overlapping an earlier one are left out.
func (s *Searcher) writeHighlighted(w *bufio.Writer, line []byte, ms []regex.Match) {
	last := 0
	for _, m := range ms {
		if m.Start < last {
			continue
		}
		w.Write(line[last:m.Start])
		s.writeMatch(w, line, 0, m)
		last = m.End
	}
	w.Write(line[last:])
}

// writeMatch writes the text of m, which starts at offset base in text. The
// whole match gets the first color of the palette and each capture group one
// of its own, unless there are more groups than colors.
func (s *Searcher) writeMatch(w io.Writer, text []byte, base int, m regex.Match) {
	whole := s.palette[0]
	if len(m.Groups) == 0 || len(m.Groups) >= len(s.palette) {
		paint(w, whole, text[m.Start-base:m.End-base])
		return
	}

	off := m.Start
	for i, g := range m.Groups {
		// nested and unset groups keep the color of what surrounds them
		if !g.IsSet() || g.Start < off || g.End > m.End {
			continue
		}
		paint(w, whole, text[off-base:g.Start-base])
		paint(w, s.palette[i+1], text[g.Start-base:g.End-base])
		off = g.End
	}
	paint(w, whole, text[off-base:m.End-base])
}

func paint(w io.Writer, c *color.Color, b []byte) {
	if len(b) == 0 {
		return
	}
	io.WriteString(w, c.Sprint(string(b)))
}
