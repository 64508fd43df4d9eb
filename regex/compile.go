package regex

const (
	maxNodes    = 1 << 20
	maxLiterals = 64
)

// hole is an unpatched out-edge: Out1 of node, or Out2 if second is set.
type hole struct {
	node   int
	second bool
}

// frag is a partially built graph: its entry node and its dangling edges.
type frag struct {
	entry int
	out   []hole
}

type compiler struct {
	nodes []Node
}

func (c *compiler) add(n Node) int {
	c.nodes = append(c.nodes, n)
	return len(c.nodes) - 1
}

func (c *compiler) patch(out []hole, to Edge) {
	for _, h := range out {
		if h.second {
			c.nodes[h.node].Out2 = to
		} else {
			c.nodes[h.node].Out1 = to
		}
	}
}

func (c *compiler) compile(e *expr) frag {
	switch e.op {
	case opEmpty:
		n := c.add(Node{Kind: Epsilon})
		return frag{entry: n, out: []hole{{node: n}}}
	case opBytes:
		// Out2 of a byte node stays NoEdge, patching both would only
		// duplicate closure work
		n := c.add(Node{Kind: ByteMatch, Set: e.set})
		return frag{entry: n, out: []hole{{node: n}}}
	case opConcat:
		f := c.compile(e.subs[0])
		for _, sub := range e.subs[1:] {
			g := c.compile(sub)
			c.patch(f.out, To(g.entry))
			f.out = g.out
		}
		return f
	case opAlternate:
		frags := make([]frag, len(e.subs))
		for i, sub := range e.subs {
			frags[i] = c.compile(sub)
		}
		f := frags[len(frags)-1]
		for i := len(frags) - 2; i >= 0; i-- {
			g := frags[i]
			n := c.add(Node{Kind: Epsilon, Out1: To(g.entry), Out2: To(f.entry)})
			f = frag{entry: n, out: append(g.out, f.out...)}
		}
		return f
	case opGroup:
		inner := c.compile(e.subs[0])
		open := c.add(Node{Kind: Epsilon, Group: e.group, Open: true, Out1: To(inner.entry)})
		closing := c.add(Node{Kind: Epsilon, Group: e.group})
		c.patch(inner.out, To(closing))
		return frag{entry: open, out: []hole{{node: closing}}}
	case opRepeat:
		return c.repeat(e.subs[0], e.min, e.max)
	}
	panic("unexpected expression op")
}

// repeat unrolls sub{mi,ma}: mi mandatory copies, then either ma-mi
// optional copies or, for an unbounded ma, one starred copy.
func (c *compiler) repeat(sub *expr, mi, ma int) frag {
	var f *frag
	appendFrag := func(g frag) {
		if f == nil {
			f = &g
			return
		}
		c.patch(f.out, To(g.entry))
		f.out = g.out
	}

	for i := 0; i < mi; i++ {
		appendFrag(c.compile(sub))
	}

	if ma == -1 {
		g := c.compile(sub)
		loop := c.add(Node{Kind: Epsilon, Out1: To(g.entry)})
		c.patch(g.out, To(loop))
		appendFrag(frag{entry: loop, out: []hole{{node: loop, second: true}}})
	} else {
		for i := mi; i < ma; i++ {
			g := c.compile(sub)
			skip := c.add(Node{Kind: Epsilon, Out1: To(g.entry)})
			appendFrag(frag{entry: skip, out: append(g.out, hole{node: skip, second: true})})
		}
	}

	if f == nil {
		return c.compile(&expr{op: opEmpty})
	}
	return *f
}

// graphSize returns the number of nodes compile will create for e, saturating
// just above maxNodes.
func graphSize(e *expr) int {
	sat := func(n int) int {
		if n > maxNodes {
			return maxNodes + 1
		}
		return n
	}

	switch e.op {
	case opEmpty, opBytes:
		return 1
	case opConcat, opAlternate:
		n := 0
		for _, sub := range e.subs {
			n = sat(n + graphSize(sub))
		}
		if e.op == opAlternate {
			n = sat(n + len(e.subs) - 1)
		}
		return n
	case opGroup:
		return sat(graphSize(e.subs[0]) + 2)
	case opRepeat:
		s := graphSize(e.subs[0])
		var n int
		if e.max == -1 {
			n = e.min*s + s + 1
		} else {
			n = e.min*s + (e.max-e.min)*(s+1)
		}
		if n == 0 {
			n = 1
		}
		return sat(n)
	}
	return 0
}

// literalSet returns the strings matched by e if they form a small finite set
// of non-empty strings, otherwise nil.
func literalSet(e *expr) [][]byte {
	lits, ok := literals(e)
	if !ok || len(lits) == 0 {
		return nil
	}
	for _, l := range lits {
		if len(l) == 0 {
			return nil
		}
	}
	return lits
}

func literals(e *expr) ([][]byte, bool) {
	switch e.op {
	case opEmpty:
		return [][]byte{{}}, true
	case opBytes:
		if e.set.Len() > maxLiterals {
			return nil, false
		}
		var out [][]byte
		for _, c := range e.set.Bytes() {
			out = append(out, []byte{c})
		}
		return out, true
	case opGroup:
		return literals(e.subs[0])
	case opConcat:
		acc := [][]byte{{}}
		for _, sub := range e.subs {
			lits, ok := literals(sub)
			if !ok {
				return nil, false
			}
			if acc, ok = crossLiterals(acc, lits); !ok {
				return nil, false
			}
		}
		return acc, true
	case opAlternate:
		var out [][]byte
		for _, sub := range e.subs {
			lits, ok := literals(sub)
			if !ok || len(out)+len(lits) > maxLiterals {
				return nil, false
			}
			out = append(out, lits...)
		}
		return out, true
	case opRepeat:
		if e.max == -1 {
			return nil, false
		}
		lits, ok := literals(e.subs[0])
		if !ok {
			return nil, false
		}
		power := [][]byte{{}}
		for i := 0; i < e.min; i++ {
			if power, ok = crossLiterals(power, lits); !ok {
				return nil, false
			}
		}
		out := append([][]byte(nil), power...)
		for i := e.min; i < e.max; i++ {
			if power, ok = crossLiterals(power, lits); !ok || len(out)+len(power) > maxLiterals {
				return nil, false
			}
			out = append(out, power...)
		}
		return out, true
	}
	return nil, false
}

func crossLiterals(prefixes, suffixes [][]byte) ([][]byte, bool) {
	if len(prefixes)*len(suffixes) > maxLiterals {
		return nil, false
	}
	out := make([][]byte, 0, len(prefixes)*len(suffixes))
	for _, p := range prefixes {
		for _, s := range suffixes {
			l := make([]byte, 0, len(p)+len(s))
			out = append(out, append(append(l, p...), s...))
		}
	}
	return out, true
}
