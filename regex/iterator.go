package regex

import "slices"

// Span is a half-open range [Start, End) of absolute stream offsets. Unset
// capture groups are {-1, -1}.
type Span struct {
	Start int
	End   int
}

var unset = Span{Start: -1, End: -1}

func (s Span) IsSet() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Match is a finalized match. Offsets count bytes fed to the Iterator since it
// was created or last Reset.
//
// Groups come from the group boundaries crossed by any state of the attempt,
// so when several states of one attempt cross them the spans can mix
// different parses: (a|ab)(c|bcd) on "abcd" reports groups "ab" and "cd".
type Match struct {
	Start  int
	End    int
	Groups []Span // Groups[i] is capture group i+1
}

func (m Match) Len() int {
	return m.End - m.Start
}

// path is one matching attempt anchored at a fixed start offset.
type path struct {
	sim   *Simulator
	start int
	end   int // longest accepted end so far, -1 if none

	// pendingEnd is an accepted end that still needs the next byte to be a
	// newline (or the stream to end) before a '$' pattern may use it.
	pendingEnd    int
	pendingGroups []Span

	opened []int  // last offset each group was opened at
	spans  []Span // groups closed so far on this attempt
	groups []Span // spans snapshot at the accepted end

	done bool
}

// Iterator finds all matches of a Pattern in a byte stream in a single
// forward pass. It starts one attempt at every offset and keeps each alive
// only as long as it could still match, so it buffers no more input than the
// longest match in progress.
//
// An Iterator must not be used by more than one goroutine at a time.
type Iterator struct {
	pat *Pattern

	buf  []byte
	base int // stream offset of buf[0]
	pos  int // stream offset of the next byte

	paths []*path // live attempts, oldest start first
	free  []*path
	held  []Match // finished matches waiting for older attempts, by start
	out   []Match
}

func NewIterator(p *Pattern) *Iterator {
	return &Iterator{pat: p}
}

func (it *Iterator) Pattern() *Pattern {
	return it.pat
}

// Reset drops all attempts and buffered input, keeping allocated capacity.
// Offsets start again from 0.
func (it *Iterator) Reset() {
	for _, p := range it.paths {
		it.release(p)
	}
	it.paths = it.paths[:0]
	it.held = it.held[:0]
	it.buf = it.buf[:0]
	it.base = 0
	it.pos = 0
	it.out = it.out[:0]
}

// Offset returns the number of bytes fed since creation or the last Reset.
func (it *Iterator) Offset() int {
	return it.pos
}

// Pending returns the number of attempts that could still match.
func (it *Iterator) Pending() int {
	return len(it.paths)
}

// Held returns the number of found matches not yet returned because an
// attempt with an earlier start is still running.
func (it *Iterator) Held() int {
	return len(it.held)
}

// Feed consumes one byte and returns the matches finalized by it, ordered by
// start offset. The returned slice and the text reachable through Bytes are
// only valid until the next call to Feed, FeedBytes, Flush or Reset.
func (it *Iterator) Feed(c byte) []Match {
	it.evict()
	it.out = it.out[:0]
	it.feed(c)
	return it.out
}

// FeedBytes feeds every byte of b and returns all matches finalized along
// the way, under the same validity rules as Feed.
func (it *Iterator) FeedBytes(b []byte) []Match {
	it.evict()
	it.out = it.out[:0]
	for _, c := range b {
		it.feed(c)
	}
	return it.out
}

// Flush finalizes every attempt as if the stream ended at the current
// offset. Feeding may continue afterwards.
func (it *Iterator) Flush() []Match {
	it.evict()
	it.out = it.out[:0]
	for _, p := range it.paths {
		if p.pendingEnd == it.pos {
			p.commit(p.pendingEnd, p.pendingGroups)
		}
		p.done = true
	}
	it.emit()
	return it.out
}

// Bytes returns the text of m if it is still buffered, or nil.
func (it *Iterator) Bytes(m Match) []byte {
	return it.text(Span{Start: m.Start, End: m.End})
}

// Group returns the text of capture group i (1-based) of m, or nil if the
// group did not participate or is no longer buffered.
func (it *Iterator) Group(m Match, i int) []byte {
	if i < 1 || i > len(m.Groups) || !m.Groups[i-1].IsSet() {
		return nil
	}
	return it.text(m.Groups[i-1])
}

func (it *Iterator) text(s Span) []byte {
	if s.Start < it.base || s.End > it.pos || s.Start > s.End {
		return nil
	}
	return it.buf[s.Start-it.base : s.End-it.base]
}

func (it *Iterator) feed(c byte) {
	p := it.pos
	it.buf = append(it.buf, c)
	it.pos++

	for _, pa := range it.paths {
		it.step(pa, c, p)
	}

	// only a '^' pattern restricts where attempts may start
	if !it.pat.anchorStart || p == 0 || it.byteAt(p-1) == '\n' {
		pa := it.acquire(p)
		it.step(pa, c, p)
		it.paths = append(it.paths, pa)
	}

	it.emit()
}

// step feeds c, found at offset p, to one attempt.
func (it *Iterator) step(pa *path, c byte, p int) {
	if pa.pendingEnd == p {
		if c == '\n' {
			pa.commit(pa.pendingEnd, pa.pendingGroups)
		}
		pa.pendingEnd = -1
	}

	accepted := pa.sim.Feed(c)
	pa.track(pa.sim.Boundaries(), p+1)
	if accepted {
		if it.pat.anchorEnd {
			pa.pendingEnd = p + 1
			pa.pendingGroups = append(pa.pendingGroups[:0], pa.spans...)
		} else {
			pa.commit(p+1, pa.spans)
		}
	}

	pa.done = !pa.sim.Alive() && pa.pendingEnd < 0
}

// emit releases finished attempts and returns matches oldest start first.
// A match that finished while an older attempt is still running is held
// until that attempt finishes.
func (it *Iterator) emit() {
	kept := it.paths[:0]
	for _, pa := range it.paths {
		if !pa.done {
			kept = append(kept, pa)
			continue
		}
		if pa.end >= 0 {
			groups := make([]Span, len(pa.groups))
			copy(groups, pa.groups)
			it.hold(Match{Start: pa.start, End: pa.end, Groups: groups})
		}
		it.release(pa)
	}
	clear(it.paths[len(kept):])
	it.paths = kept

	n := len(it.held)
	if len(it.paths) > 0 {
		oldest := it.paths[0].start
		n = 0
		for n < len(it.held) && it.held[n].Start < oldest {
			n++
		}
	}
	if n == 0 {
		return
	}
	it.out = append(it.out, it.held[:n]...)
	it.held = it.held[n:]
}

func (it *Iterator) hold(m Match) {
	i := len(it.held)
	for i > 0 && it.held[i-1].Start > m.Start {
		i--
	}
	it.held = slices.Insert(it.held, i, m)
}

// evict drops buffered bytes no attempt can refer to anymore. It runs at
// the start of a feed call so text of the previous call stays readable
// until then.
func (it *Iterator) evict() {
	keep := it.pos
	if len(it.paths) > 0 {
		keep = it.paths[0].start
	}
	if len(it.held) > 0 {
		keep = min(keep, it.held[0].Start)
	}
	// one byte of look-behind is needed for '^'
	if keep > it.base {
		keep--
	}
	dead := keep - it.base
	if dead <= 0 || dead < len(it.buf)/2 {
		return
	}
	n := copy(it.buf, it.buf[dead:])
	it.buf = it.buf[:n]
	it.base = keep
}

func (it *Iterator) byteAt(p int) byte {
	return it.buf[p-it.base]
}

func (it *Iterator) acquire(start int) *path {
	var pa *path
	if n := len(it.free); n > 0 {
		pa = it.free[n-1]
		it.free = it.free[:n-1]
		pa.sim.Reset()
	} else {
		groups := it.pat.groups
		pa = &path{
			sim:    NewSimulator(it.pat),
			opened: make([]int, groups),
			spans:  make([]Span, groups),
			groups: make([]Span, groups),
		}
	}

	pa.start = start
	pa.end = -1
	pa.pendingEnd = -1
	pa.done = false
	for g := range pa.spans {
		pa.opened[g] = -1
		pa.spans[g] = unset
		pa.groups[g] = unset
	}
	pa.track(pa.sim.Boundaries(), start)
	return pa
}

func (it *Iterator) release(pa *path) {
	it.free = append(it.free, pa)
}

// track applies the capture boundaries crossed by the latest step at offset
// off. Closes go first so that a group closing and reopening in one step
// (as in "(a)*") keeps the iteration that just ended.
func (pa *path) track(bs []Boundary, off int) {
	for _, b := range bs {
		if !b.Open && pa.opened[b.Group-1] >= 0 {
			pa.spans[b.Group-1] = Span{Start: pa.opened[b.Group-1], End: off}
		}
	}
	for _, b := range bs {
		if b.Open {
			pa.opened[b.Group-1] = off
		}
	}
}

func (pa *path) commit(end int, spans []Span) {
	pa.end = end
	copy(pa.groups, spans)
}
