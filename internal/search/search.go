package search

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/mfroeh/streamgrep/internal/logutil"
	"github.com/mfroeh/streamgrep/regex"
)

// Mode selects what is reported for a source.
type Mode int

const (
	// Lines prints every matching line with its matches highlighted.
	Lines Mode = iota
	// OnlyMatching prints every match on a line of its own.
	OnlyMatching
	// Count prints the number of matching lines.
	Count
	// FilesWithMatches prints the name of every source with a match.
	FilesWithMatches
	// Quiet prints nothing and stops at the first match.
	Quiet
	// Stream treats each source as one byte stream and prints every match
	// as name:start-end:text, offsets counted from the start of the source.
	Stream
)

type Options struct {
	Mode         Mode
	Overlapping  bool
	LineNumbers  bool
	WithFilename bool
	Heading      bool
	Color        bool
	Jobs         int
}

const (
	chunkSize = 4096
	stdinName = "-"
)

// Searcher reports matches of a pattern in one source at a time. It must not
// be used by more than one goroutine at a time.
type Searcher struct {
	pat  *regex.Pattern
	opts Options
	pre  *prefilter

	it      *regex.Iterator
	sim     *regex.Simulator
	lm      regex.Leftmost
	matches []regex.Match

	rd    *bufio.Reader
	chunk []byte

	palette   []*color.Color
	nameColor *color.Color
	lineColor *color.Color
}

func New(p *regex.Pattern, opts Options) *Searcher {
	s := &Searcher{
		pat:  p,
		opts: opts,
		pre:  newPrefilter(p.Literals()),
		it:   regex.NewIterator(p),
		sim:  regex.NewSimulator(p),
		palette: []*color.Color{
			color.New(color.FgRed, color.Bold),
			color.New(color.FgGreen),
			color.New(color.FgYellow),
			color.New(color.FgBlue),
			color.New(color.FgMagenta),
			color.New(color.FgCyan),
		},
		nameColor: color.New(color.FgMagenta),
		lineColor: color.New(color.FgGreen),
	}

	for _, c := range append([]*color.Color{s.nameColor, s.lineColor}, s.palette...) {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Search reads r to the end, or until the mode needs no more input, and
// writes the results for the source called name to w. It reports whether
// anything matched.
func (s *Searcher) Search(name string, r io.Reader, w io.Writer) (bool, error) {
	bw := bufio.NewWriter(w)
	var matched bool
	var err error
	if s.opts.Mode == Stream {
		matched, err = s.searchStream(displayName(name), r, bw)
	} else {
		matched, err = s.searchLines(displayName(name), r, bw)
	}
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return matched, err
}

func (s *Searcher) searchLines(name string, r io.Reader, w *bufio.Writer) (bool, error) {
	if s.rd == nil {
		s.rd = bufio.NewReaderSize(r, 64*1024)
	} else {
		s.rd.Reset(r)
	}
	defer s.rd.Reset(nil)

	count := 0
	heading := false
	for lineno := 1; ; lineno++ {
		line, err := s.rd.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return count > 0, err
		}
		if len(line) == 0 && err != nil {
			break
		}
		line = bytes.TrimSuffix(line, []byte{'\n'})

		switch s.opts.Mode {
		case Count, FilesWithMatches, Quiet:
			if s.pre.skip(line) || !s.sim.Contains(line) {
				break
			}
			count++
			if s.opts.Mode == FilesWithMatches {
				w.WriteString(s.nameColor.Sprint(name))
				w.WriteByte('\n')
				return true, nil
			}
			if s.opts.Mode == Quiet {
				return true, nil
			}
		default:
			ms := s.find(line)
			if len(ms) == 0 {
				break
			}
			count++
			if s.opts.Heading && !heading {
				heading = true
				w.WriteString(s.nameColor.Sprint(name))
				w.WriteByte('\n')
			}
			if s.opts.Mode == OnlyMatching {
				for _, m := range ms {
					s.writePrefix(w, name, lineno)
					s.writeMatch(w, line, 0, m)
					w.WriteByte('\n')
				}
				break
			}
			s.writePrefix(w, name, lineno)
			s.writeHighlighted(w, line, ms)
			w.WriteByte('\n')
		}

		if err != nil {
			break
		}
	}

	if s.opts.Mode == Count {
		if s.opts.WithFilename {
			w.WriteString(s.nameColor.Sprint(name))
			w.WriteByte(':')
		}
		w.WriteString(strconv.Itoa(count))
		w.WriteByte('\n')
	}
	if heading {
		w.WriteByte('\n')
	}
	return count > 0, nil
}

// find returns the matches on line to report, ordered by start.
func (s *Searcher) find(line []byte) []regex.Match {
	s.matches = s.matches[:0]
	if s.pre.skip(line) {
		return s.matches
	}

	s.it.Reset()
	s.lm.Reset()
	s.keep(s.it.FeedBytes(line))
	s.keep(s.it.Flush())
	return s.matches
}

func (s *Searcher) keep(ms []regex.Match) {
	for _, m := range ms {
		if s.opts.Overlapping || s.lm.Keep(m) {
			s.matches = append(s.matches, m)
		}
	}
}

func (s *Searcher) searchStream(name string, r io.Reader, w *bufio.Writer) (bool, error) {
	if s.chunk == nil {
		s.chunk = make([]byte, chunkSize)
	}
	s.it.Reset()
	s.lm.Reset()

	matched := false
	report := func(ms []regex.Match) {
		for _, m := range ms {
			if !s.opts.Overlapping && !s.lm.Keep(m) {
				continue
			}
			matched = true
			w.WriteString(s.nameColor.Sprint(name))
			fmt.Fprintf(w, ":%d-%d:", m.Start, m.End)
			s.writeMatch(w, s.it.Bytes(m), m.Start, m)
			w.WriteByte('\n')
		}
	}

	for {
		n, err := r.Read(s.chunk)
		if n > 0 {
			report(s.it.FeedBytes(s.chunk[:n]))
			logutil.Trace(nil, "fed chunk", "source", name, "offset", s.it.Offset(), "pending", s.it.Pending())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return matched, err
		}
	}
	report(s.it.Flush())
	return matched, nil
}

func displayName(name string) string {
	if name == stdinName {
		return "(standard input)"
	}
	return name
}
