package regex

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompileErrors(t *testing.T) {
	tests := map[string]struct {
		givenRe    string
		wantKind   ErrorKind
		wantOffset int
	}{
		"empty pattern":                   {givenRe: "", wantKind: EmptyPattern, wantOffset: 0},
		"unterminated class":              {givenRe: "[abc", wantKind: UnterminatedClass, wantOffset: 0},
		"unterminated class after text":   {givenRe: "a[b", wantKind: UnterminatedClass, wantOffset: 1},
		"unterminated class on backslash": {givenRe: `[a\`, wantKind: UnterminatedClass, wantOffset: 2},
		"range out of order":              {givenRe: "[z-a]", wantKind: InvalidRange, wantOffset: 1},
		"class as range end":              {givenRe: `[a-\d]`, wantKind: InvalidRange, wantOffset: 3},
		"unterminated group":              {givenRe: "(ab", wantKind: UnterminatedGroup, wantOffset: 0},
		"unterminated outer group":        {givenRe: "a(b(c)", wantKind: UnterminatedGroup, wantOffset: 1},
		"unmatched closing paren":         {givenRe: "ab)", wantKind: UnexpectedToken, wantOffset: 2},
		"leading star":                    {givenRe: "*a", wantKind: UnexpectedToken, wantOffset: 0},
		"leading bound":                   {givenRe: "{2}", wantKind: UnexpectedToken, wantOffset: 0},
		"star after alternation":          {givenRe: "a|*", wantKind: UnexpectedToken, wantOffset: 2},
		"nested repetition":               {givenRe: "a**", wantKind: UnexpectedToken, wantOffset: 2},
		"caret inside pattern":            {givenRe: "a^b", wantKind: UnexpectedToken, wantOffset: 1},
		"dollar inside pattern":           {givenRe: "a$b", wantKind: UnexpectedToken, wantOffset: 1},
		"caret before alternation":        {givenRe: "^a|b", wantKind: UnexpectedToken, wantOffset: 2},
		"dollar after alternation":        {givenRe: "a|bc|d$", wantKind: UnexpectedToken, wantOffset: 1},
		"trailing backslash":              {givenRe: `ab\`, wantKind: UnexpectedToken, wantOffset: 2},
		"unknown posix class":             {givenRe: "[[:foo:]]", wantKind: UnexpectedToken, wantOffset: 1},
		"bounds out of order":             {givenRe: "a{3,2}", wantKind: InvalidRepetitionBounds, wantOffset: 1},
		"unterminated bounds":             {givenRe: "a{2", wantKind: InvalidRepetitionBounds, wantOffset: 1},
		"bad upper bound":                 {givenRe: "a{2,x}", wantKind: InvalidRepetitionBounds, wantOffset: 1},
		"bound too large":                 {givenRe: "a{1001}", wantKind: InvalidRepetitionBounds, wantOffset: 1},
		"graph too large":                 {givenRe: "((a{1000}){1000}){2}", wantKind: InvalidRepetitionBounds, wantOffset: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			p, err := Compile(tt.givenRe)

			// then
			if p != nil {
				t.Fatalf("Compile(%q) returned a pattern", tt.givenRe)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Compile(%q) error %v is not a *ParseError", tt.givenRe, err)
			}
			if d := cmp.Diff(tt.wantKind, perr.Kind); d != "" {
				t.Errorf("kind: got diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantOffset, perr.Offset); d != "" {
				t.Errorf("offset: got diff (-want +got):\n%s", d)
			}
			if !strings.Contains(err.Error(), tt.wantKind.String()) {
				t.Errorf("error %q does not name kind %q", err, tt.wantKind)
			}
		})
	}
}

func TestCompileAcceptsLiteralMetaCharacters(t *testing.T) {
	tests := map[string]struct {
		givenRe    string
		givenText  string
		wantGroups int
	}{
		"brace without digits":          {givenRe: "a{x}", givenText: "a{x}"},
		"brace at end":                  {givenRe: "a{", givenText: "a{"},
		"closing bracket first":         {givenRe: "[]a]", givenText: "]"},
		"dash at end":                   {givenRe: "[a-]", givenText: "-"},
		"dash at start":                 {givenRe: "[-a]", givenText: "-"},
		"escaped dollar":                {givenRe: `a\$`, givenText: "a$"},
		"escaped caret":                 {givenRe: `\^a`, givenText: "^a"},
		"escaped newline in class":      {givenRe: `[^\n]x`, givenText: "ax"},
		"posix class":                   {givenRe: "[[:digit:]x]+", givenText: "1x2"},
		"nested groups":                 {givenRe: "(a(b))(c)", givenText: "abc", wantGroups: 3},
		"empty group":                   {givenRe: "a()b", givenText: "ab", wantGroups: 1},
		"empty alternative":             {givenRe: "a(|b)c", givenText: "ac", wantGroups: 1},
		"anchors only":                  {givenRe: "^$", givenText: ""},
		"anchored grouped alternation":  {givenRe: "^(a|bc)$", givenText: "bc", wantGroups: 1},
		"escape sequences":              {givenRe: `\t\e`, givenText: "\t\x1b"},
		"perl classes outside brackets": {givenRe: `\w\d\s\W\D\S`, givenText: "a1 -x!"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			p, err := Compile(tt.givenRe)

			// then
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.givenRe, err)
			}
			if d := cmp.Diff(tt.wantGroups, p.NumGroups()); d != "" {
				t.Errorf("groups: got diff (-want +got):\n%s", d)
			}
			if tt.givenText != "" && !p.MatchString(tt.givenText) {
				t.Errorf("%q does not match %q", tt.givenRe, tt.givenText)
			}
		})
	}
}

func TestParse(t *testing.T) {
	rep := func(sub *expr, mi, ma int) *expr {
		return &expr{op: opRepeat, subs: []*expr{sub}, min: mi, max: ma}
	}
	lit := func(c byte) *expr {
		return bytesExpr(Single(c))
	}

	tests := map[string]struct {
		givenRe    string
		wantExpr   *expr
		wantGroups int
	}{
		"alternation of sequences": {
			givenRe: "a|bc",
			wantExpr: &expr{op: opAlternate, subs: []*expr{
				lit('a'),
				{op: opConcat, subs: []*expr{lit('b'), lit('c')}},
			}},
		},
		"quantifiers": {
			givenRe: "a*b+c?d{2,}e{1,3}",
			wantExpr: &expr{op: opConcat, subs: []*expr{
				rep(lit('a'), 0, -1),
				rep(lit('b'), 1, -1),
				rep(lit('c'), 0, 1),
				rep(lit('d'), 2, -1),
				rep(lit('e'), 1, 3),
			}},
		},
		"groups are numbered by opening paren": {
			givenRe: "((a)|b)",
			wantExpr: &expr{op: opGroup, group: 1, subs: []*expr{
				{op: opAlternate, subs: []*expr{
					{op: opGroup, group: 2, subs: []*expr{lit('a')}},
					lit('b'),
				}},
			}},
			wantGroups: 2,
		},
		"negated class": {
			givenRe:  "[^a-y]",
			wantExpr: bytesExpr(Range('a', 'y').Negate()),
		},
		"dot": {
			givenRe:  ".",
			wantExpr: bytesExpr(AnyByte()),
		},
		"empty alternative": {
			givenRe:  "|",
			wantExpr: &expr{op: opAlternate, subs: []*expr{{op: opEmpty}, {op: opEmpty}}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			gotExpr, gotGroups, err := parse(tt.givenRe, 0, false)

			// then
			if err != nil {
				t.Fatalf("parse(%q): %v", tt.givenRe, err)
			}
			if d := cmp.Diff(tt.wantExpr, gotExpr, cmp.AllowUnexported(expr{})); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantGroups, gotGroups); d != "" {
				t.Errorf("groups: got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestCompileGraph(t *testing.T) {
	tests := map[string]struct {
		givenRe   string
		wantStart int
		wantNodes []Node
	}{
		"concatenation": {
			givenRe:   "ab",
			wantStart: 0,
			wantNodes: []Node{
				{Kind: ByteMatch, Set: Single('a'), Out1: To(1)},
				{Kind: ByteMatch, Set: Single('b'), Out1: AcceptEdge},
			},
		},
		"alternation": {
			givenRe:   "a|b",
			wantStart: 2,
			wantNodes: []Node{
				{Kind: ByteMatch, Set: Single('a'), Out1: AcceptEdge},
				{Kind: ByteMatch, Set: Single('b'), Out1: AcceptEdge},
				{Kind: Epsilon, Out1: To(0), Out2: To(1)},
			},
		},
		"star": {
			givenRe:   "a*",
			wantStart: 1,
			wantNodes: []Node{
				{Kind: ByteMatch, Set: Single('a'), Out1: To(1)},
				{Kind: Epsilon, Out1: To(0), Out2: AcceptEdge},
			},
		},
		"group": {
			givenRe:   "(a)",
			wantStart: 1,
			wantNodes: []Node{
				{Kind: ByteMatch, Set: Single('a'), Out1: To(2)},
				{Kind: Epsilon, Group: 1, Open: true, Out1: To(0)},
				{Kind: Epsilon, Group: 1, Out1: AcceptEdge},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			p := MustCompile(tt.givenRe)
			var gotNodes []Node
			for i := 0; i < p.Len(); i++ {
				gotNodes = append(gotNodes, p.Node(i))
			}

			// then
			if d := cmp.Diff(tt.wantStart, p.Start()); d != "" {
				t.Errorf("start: got diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantNodes, gotNodes, cmp.AllowUnexported(Edge{})); d != "" {
				t.Errorf("nodes: got diff (-want +got):\n%s\n%s", d, p.Dump())
			}
		})
	}
}

func TestCompileEdgesStayInRange(t *testing.T) {
	for _, re := range []string{
		"a", "a|b|c", "(a|b)*c", "x{2,5}y{3,}", "((a*)*|b?)+", "[^a-z]{0,2}", "(|)", "a{0}",
	} {
		p := MustCompile(re)
		check := func(i int, e Edge) {
			if j, ok := e.Index(); ok && (j < 0 || j >= p.Len()) {
				t.Errorf("%q: node %d points at %d outside [0,%d)", re, i, j, p.Len())
			}
		}
		for i := 0; i < p.Len(); i++ {
			n := p.Node(i)
			check(i, n.Out1)
			check(i, n.Out2)
			if n.Kind == ByteMatch && n.Out1.IsNone() {
				t.Errorf("%q: byte node %d has no successor", re, i)
			}
		}
	}
}

func TestLiterals(t *testing.T) {
	tests := map[string]struct {
		givenRe string
		want    []string
	}{
		"alternation":       {givenRe: "foo|bar", want: []string{"foo", "bar"}},
		"small class":       {givenRe: "ab[cd]", want: []string{"abc", "abd"}},
		"optional byte":     {givenRe: "colou?r", want: []string{"color", "colour"}},
		"bounded repeat":    {givenRe: "x{1,2}", want: []string{"x", "xx"}},
		"group":             {givenRe: "(ab)c", want: []string{"abc"}},
		"unbounded":         {givenRe: "a+"},
		"nullable":          {givenRe: "a?"},
		"anchored":          {givenRe: "^foo"},
		"too many strings":  {givenRe: "[a-z]{3}"},
		"dot is too large":  {givenRe: "a.b"},
		"empty alternative": {givenRe: "a|"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			var got []string
			for _, l := range MustCompile(tt.givenRe).Literals() {
				got = append(got, string(l))
			}

			// then
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}
