package regex

// missing and I want to add:
// potentially: a lazily built DFA on top of the byte-set simulator
// potentially: counter-based bounded repetition instead of unrolling

import (
	"fmt"
	"strings"
)

type edgeKind uint8

const (
	edgeNone edgeKind = iota
	edgeAccept
	edgeTo
)

// Edge is an outgoing edge of a Node: a dead end, the Accept sentinel, or an
// index into the pattern's nodes. The zero value is NoEdge.
type Edge struct {
	kind edgeKind
	to   int
}

var (
	NoEdge     = Edge{}
	AcceptEdge = Edge{kind: edgeAccept}
)

// To returns an edge leading to node i.
func To(i int) Edge {
	return Edge{kind: edgeTo, to: i}
}

func (e Edge) IsNone() bool {
	return e.kind == edgeNone
}

func (e Edge) IsAccept() bool {
	return e.kind == edgeAccept
}

// Index returns the target node index and true, or false for a sentinel.
func (e Edge) Index() (int, bool) {
	return e.to, e.kind == edgeTo
}

func (e Edge) String() string {
	switch e.kind {
	case edgeAccept:
		return "accept"
	case edgeTo:
		return fmt.Sprintf("%d", e.to)
	}
	return "-"
}

type NodeKind uint8

const (
	// Epsilon nodes consume no input and are never live in a Simulator.
	Epsilon NodeKind = iota
	// ByteMatch nodes consume one byte that is a member of their Set.
	ByteMatch
)

// Node is a single NFA state.
type Node struct {
	Kind NodeKind
	Set  ByteSet
	Out1 Edge
	Out2 Edge

	// Group is the 1-based capture group whose boundary this epsilon node
	// marks, or 0. Open distinguishes '(' from ')'.
	Group int
	Open  bool
}

func (n Node) String() string {
	switch {
	case n.Kind == ByteMatch:
		return fmt.Sprintf("match %s -> %s, %s", n.Set, n.Out1, n.Out2)
	case n.Group > 0 && n.Open:
		return fmt.Sprintf("open %d -> %s", n.Group, n.Out1)
	case n.Group > 0:
		return fmt.Sprintf("close %d -> %s", n.Group, n.Out1)
	}
	return fmt.Sprintf("eps -> %s, %s", n.Out1, n.Out2)
}

// Pattern is a compiled regular expression. It is never modified after
// Compile returns and may be shared by any number of goroutines.
type Pattern struct {
	nodes       []Node
	start       int
	src         string
	groups      int
	anchorStart bool
	anchorEnd   bool
	literals    [][]byte
}

func Compile(re string) (*Pattern, error) {
	if re == "" {
		return nil, fmt.Errorf("failed to construct regex from %q: %w", re, newParserError(0, EmptyPattern, "pattern is empty", nil))
	}

	body, i := re, 0
	anchorStart := body[0] == '^'
	if anchorStart {
		i = 1
	}
	anchorEnd := endsWithAnchor(body[i:])
	if anchorEnd {
		body = body[:len(body)-1]
	}

	e, groups, err := parse(body, i, anchorStart || anchorEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to construct regex from %q: %w", re, err)
	}
	if n := graphSize(e); n > maxNodes {
		return nil, fmt.Errorf("failed to construct regex from %q: %w", re,
			newParserError(i, InvalidRepetitionBounds, fmt.Sprintf("pattern expands to more than %d nodes", maxNodes), nil))
	}

	c := compiler{nodes: make([]Node, 0, graphSize(e))}
	f := c.compile(e)
	c.patch(f.out, AcceptEdge)

	p := &Pattern{
		nodes:       c.nodes,
		start:       f.entry,
		src:         re,
		groups:      groups,
		anchorStart: anchorStart,
		anchorEnd:   anchorEnd,
	}
	if !anchorStart && !anchorEnd {
		p.literals = literalSet(e)
	}
	return p, nil
}

// MustCompile is like Compile but panics if the pattern cannot be parsed.
func MustCompile(re string) *Pattern {
	p, err := Compile(re)
	if err != nil {
		panic(err)
	}
	return p
}

// endsWithAnchor reports whether s ends in an unescaped '$'.
func endsWithAnchor(s string) bool {
	if len(s) == 0 || s[len(s)-1] != '$' {
		return false
	}
	backslashes := 0
	for j := len(s) - 2; j >= 0 && s[j] == '\\'; j-- {
		backslashes++
	}
	return backslashes%2 == 0
}

// String returns the source text the pattern was compiled from.
func (p *Pattern) String() string {
	return p.src
}

// Len returns the number of nodes in the graph.
func (p *Pattern) Len() int {
	return len(p.nodes)
}

func (p *Pattern) Start() int {
	return p.start
}

func (p *Pattern) Node(i int) Node {
	return p.nodes[i]
}

// NumGroups returns the number of capture groups.
func (p *Pattern) NumGroups() int {
	return p.groups
}

// AnchoredStart reports whether the pattern began with '^': attempts may only
// start at the beginning of the stream or right after a newline.
// Anchors bind the whole pattern, so Compile rejects "^a|b" and asks for
// "^(a|b)" instead.
func (p *Pattern) AnchoredStart() bool {
	return p.anchorStart
}

// AnchoredEnd reports whether the pattern ended with '$': matches may only
// end at the end of the stream or right before a newline.
func (p *Pattern) AnchoredEnd() bool {
	return p.anchorEnd
}

// Literals returns the finite set of strings the pattern matches, or nil if
// the pattern is anchored, can match the empty string, or matches more than
// maxLiterals distinct strings.
func (p *Pattern) Literals() [][]byte {
	if p.literals == nil {
		return nil
	}
	out := make([][]byte, len(p.literals))
	for i, l := range p.literals {
		out[i] = append([]byte(nil), l...)
	}
	return out
}

// Dump renders the graph one node per line, for debugging.
func (p *Pattern) Dump() string {
	out := strings.Builder{}
	fmt.Fprintf(&out, "start %d\n", p.start)
	for i, n := range p.nodes {
		fmt.Fprintf(&out, "%4d: %s\n", i, n)
	}
	return out.String()
}
