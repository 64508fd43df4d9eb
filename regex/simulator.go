package regex

// Boundary is a capture group boundary crossed while expanding a closure.
type Boundary struct {
	Group int
	Open  bool
}

// Simulator runs a Pattern over a byte stream, tracking the set of live
// ByteMatch nodes. It only tells whether a match ended at the latest byte,
// not where it started; use an Iterator for that.
//
// A Simulator must not be used by more than one goroutine at a time.
type Simulator struct {
	pat *Pattern

	// cur holds the live nodes, last the ones from the previous step. They
	// swap roles on every Feed.
	cur  []bool
	last []bool
	live int

	// seen[i] == gen marks node i as expanded during the current closure
	// step, which keeps epsilon cycles from being followed forever.
	seen  []uint32
	gen   uint32
	stack []Edge

	boundaries []Boundary
	accepting  bool
}

func NewSimulator(p *Pattern) *Simulator {
	s := &Simulator{
		pat:  p,
		cur:  make([]bool, len(p.nodes)),
		last: make([]bool, len(p.nodes)),
		seen: make([]uint32, len(p.nodes)),
	}
	s.Reset()
	return s
}

func (s *Simulator) Pattern() *Pattern {
	return s.pat
}

// Reset puts the simulator back into the state it had right after
// NewSimulator: only the closure of the start node is live.
func (s *Simulator) Reset() {
	clear(s.cur)
	clear(s.last)
	s.live = 0
	s.boundaries = s.boundaries[:0]
	s.nextGen()
	s.accepting = s.closure(To(s.pat.start))
}

// Start begins another matching attempt at the current position by adding
// the closure of the start node to the live set. It reports whether the
// pattern matches the empty string there.
func (s *Simulator) Start() bool {
	s.boundaries = s.boundaries[:0]
	s.nextGen()
	if s.closure(To(s.pat.start)) {
		s.accepting = true
		return true
	}
	return false
}

// Feed advances every live node over c and reports whether a match ends
// right after c.
func (s *Simulator) Feed(c byte) bool {
	s.cur, s.last = s.last, s.cur
	clear(s.cur)
	wasLive := s.live
	s.live = 0
	s.boundaries = s.boundaries[:0]
	s.accepting = false
	if wasLive == 0 {
		return false
	}

	s.nextGen()
	for i, on := range s.last {
		if !on {
			continue
		}
		n := &s.pat.nodes[i]
		if n.Kind != ByteMatch || !n.Set.Contains(c) {
			continue
		}
		if s.closure(n.Out1) {
			s.accepting = true
		}
		if s.closure(n.Out2) {
			s.accepting = true
		}
	}
	return s.accepting
}

// FeedBytes feeds every byte of b in order and returns the result of the
// last Feed, or Accepting if b is empty.
func (s *Simulator) FeedBytes(b []byte) bool {
	for _, c := range b {
		s.Feed(c)
	}
	return s.accepting
}

// Alive reports whether any node is live, i.e. whether more input could
// still produce a match.
func (s *Simulator) Alive() bool {
	return s.live > 0
}

// Accepting reports whether the latest Reset, Start or Feed reached Accept.
func (s *Simulator) Accepting() bool {
	return s.accepting
}

// Boundaries returns the capture boundaries crossed by the latest Reset,
// Start or Feed. The slice is reused by the next call.
func (s *Simulator) Boundaries() []Boundary {
	return s.boundaries
}

// Contains reports whether b contains a match of the pattern. Anchors are
// line anchors: '^' admits attempts at offset 0 and after '\n', '$' admits
// match ends at len(b) and before '\n'.
func (s *Simulator) Contains(b []byte) bool {
	s.Reset()
	p := s.pat
	for k, c := range b {
		if k > 0 && (!p.anchorStart || b[k-1] == '\n') {
			s.Start()
		}
		if s.accepting && (!p.anchorEnd || c == '\n') {
			return true
		}
		s.Feed(c)
	}
	if len(b) > 0 && (!p.anchorStart || b[len(b)-1] == '\n') {
		s.Start()
	}
	return s.accepting
}

// closure marks every ByteMatch node reachable from e through epsilon nodes
// as live and reports whether Accept is reachable.
func (s *Simulator) closure(e Edge) bool {
	accept := false
	s.stack = append(s.stack[:0], e)
	for len(s.stack) > 0 {
		e := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		i, ok := e.Index()
		if !ok {
			if e.IsAccept() {
				accept = true
			}
			continue
		}
		if s.seen[i] == s.gen {
			continue
		}
		s.seen[i] = s.gen

		n := &s.pat.nodes[i]
		if n.Kind == ByteMatch {
			if !s.cur[i] {
				s.cur[i] = true
				s.live++
			}
			continue
		}
		if n.Group > 0 {
			s.boundaries = append(s.boundaries, Boundary{Group: n.Group, Open: n.Open})
		}
		s.stack = append(s.stack, n.Out2, n.Out1)
	}
	return accept
}

func (s *Simulator) nextGen() {
	s.gen++
	if s.gen == 0 {
		clear(s.seen)
		s.gen = 1
	}
}
