package regex

import (
	"fmt"
	"strconv"
	"strings"
)

// maxRepeat bounds the m and n of {m,n}; repetitions are unrolled.
const maxRepeat = 1000

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	UnterminatedClass ErrorKind = iota + 1
	InvalidRange
	EmptyPattern
	UnexpectedToken
	UnterminatedGroup
	InvalidRepetitionBounds
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedClass:
		return "unterminated class"
	case InvalidRange:
		return "invalid range"
	case EmptyPattern:
		return "empty pattern"
	case UnexpectedToken:
		return "unexpected token"
	case UnterminatedGroup:
		return "unterminated group"
	case InvalidRepetitionBounds:
		return "invalid repetition bounds"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError reports a malformed pattern. Offset is the byte offset in the
// pattern source where the problem was detected.
type ParseError struct {
	Kind    ErrorKind
	Offset  int
	Message string
	inner   error
}

func (p *ParseError) Error() string {
	return fmt.Sprintf("parser error at %d: %s: %s", p.Offset, p.Kind, p.Message)
}

func (p *ParseError) Unwrap() error {
	return p.inner
}

func newParserError(i int, kind ErrorKind, str string, inner error) *ParseError {
	return &ParseError{Kind: kind, Offset: i, Message: str, inner: inner}
}

type exprOp uint8

const (
	opEmpty exprOp = iota
	opBytes
	opConcat
	opAlternate
	opRepeat
	opGroup
)

// expr is the syntax tree the parser hands to the compiler.
type expr struct {
	op    exprOp
	set   ByteSet
	subs  []*expr
	min   int
	max   int // -1 means unbounded
	group int
}

type parser struct {
	re     string
	groups int
	depth  int

	bar int // offset of the first '|' outside any group, -1 if none
}

// parse parses re[i:] as a whole pattern body and also returns the number of
// capture groups. An anchored body may not be an alternation, since the
// anchor was stripped from its first or last alternative.
func parse(re string, i int, anchored bool) (*expr, int, error) {
	p := &parser{re: re, bar: -1}
	e, j, err := p.parseChoices(i)
	if err != nil {
		return nil, 0, err
	}
	if j < len(re) {
		// parseChoices only stops early on an unmatched ')'
		return nil, 0, newParserError(j, UnexpectedToken, "unmatched ')'", nil)
	}
	if anchored && p.bar >= 0 {
		return nil, 0, newParserError(p.bar, UnexpectedToken, "anchor applies to only one alternative, use a group", nil)
	}
	return e, p.groups, nil
}

// ...|...|...
func (p *parser) parseChoices(i int) (*expr, int, error) {
	var choices []*expr
	for {
		seq, j, err := p.parseSequence(i)
		if err != nil {
			return nil, 0, err
		}
		choices = append(choices, seq)
		i = j
		if i < len(p.re) && p.re[i] == '|' {
			if p.depth == 0 && p.bar < 0 {
				p.bar = i
			}
			i++
			continue
		}
		break
	}

	// if we parsed just one, we are not a choice
	if len(choices) == 1 {
		return choices[0], i, nil
	}
	return &expr{op: opAlternate, subs: choices}, i, nil
}

func (p *parser) parseSequence(i int) (*expr, int, error) {
	var items []*expr
	for i < len(p.re) && p.re[i] != '|' && p.re[i] != ')' {
		atom, j, err := p.parseAtom(i)
		if err != nil {
			return nil, 0, err
		}

		mi, ma, cons, err := p.parseQuantifier(j)
		if err != nil {
			return nil, 0, err
		}
		if cons > 0 {
			atom = &expr{op: opRepeat, subs: []*expr{atom}, min: mi, max: ma}
			j += cons
			if p.isQuantifier(j) {
				return nil, 0, newParserError(j, UnexpectedToken, "invalid nested repetition operator", nil)
			}
		}
		items = append(items, atom)
		i = j
	}

	switch len(items) {
	case 0:
		return &expr{op: opEmpty}, i, nil
	case 1:
		return items[0], i, nil
	}
	return &expr{op: opConcat, subs: items}, i, nil
}

func (p *parser) parseAtom(i int) (*expr, int, error) {
	switch c := p.re[i]; c {
	case '(':
		return p.parseGroup(i)
	case '[':
		return p.parseBracket(i)
	case '*', '+', '?':
		return nil, 0, newParserError(i, UnexpectedToken, "missing argument to repetition operator", nil)
	case '{':
		if p.isQuantifier(i) {
			return nil, 0, newParserError(i, UnexpectedToken, "missing argument to repetition operator", nil)
		}
		return bytesExpr(Single(c)), i + 1, nil
	case '^', '$':
		return nil, 0, newParserError(i, UnexpectedToken, "unexpected meta character", nil)
	case '.':
		return bytesExpr(AnyByte()), i + 1, nil
	case '\\':
		set, cons, err := p.parseEscape(i)
		if err != nil {
			return nil, 0, err
		}
		return bytesExpr(set), i + cons, nil
	default:
		return bytesExpr(Single(c)), i + 1, nil
	}
}

// (...)
func (p *parser) parseGroup(i int) (*expr, int, error) {
	p.groups++
	group := p.groups

	// pop off '('
	p.depth++
	inner, j, err := p.parseChoices(i + 1)
	p.depth--
	if err != nil {
		return nil, 0, err
	}
	if j >= len(p.re) || p.re[j] != ')' {
		return nil, 0, newParserError(i, UnterminatedGroup, "did not find closing ')'", nil)
	}

	// pop off ')'
	return &expr{op: opGroup, subs: []*expr{inner}, group: group}, j + 1, nil
}

// [...] and [^...]
// ']' right after the opening bracket and '-' at either end are literal.
func (p *parser) parseBracket(i int) (*expr, int, error) {
	// pop off '['
	j := i + 1

	negate := j < len(p.re) && p.re[j] == '^'
	if negate {
		j++
	}

	var set ByteSet
	first := true
	for {
		if j >= len(p.re) {
			return nil, 0, newParserError(i, UnterminatedClass, "did not find closing ']'", nil)
		}
		if p.re[j] == ']' && !first {
			break
		}
		first = false

		if strings.HasPrefix(p.re[j:], "[:") {
			cs, cons := parsePosixCharSet(p.re, j)
			if cons == 0 {
				return nil, 0, newParserError(j, UnexpectedToken, "invalid POSIX character set", nil)
			}
			set.Union(cs)
			j += cons
			continue
		}

		if p.re[j] == '\\' {
			if cs, ok := parsePerlCharSet(p.re, j); ok {
				set.Union(cs)
				j += 2
				continue
			}
		}

		lo, cons, err := p.parseClassByte(j)
		if err != nil {
			return nil, 0, err
		}
		loAt := j
		j += cons

		// a '-' right before the closing ']' is literal
		if j+1 < len(p.re) && p.re[j] == '-' && p.re[j+1] != ']' {
			if _, ok := parsePerlCharSet(p.re, j+1); ok {
				return nil, 0, newParserError(j+1, InvalidRange, "character class cannot end a range", nil)
			}
			hi, cons, err := p.parseClassByte(j + 1)
			if err != nil {
				return nil, 0, err
			}
			if lo > hi {
				return nil, 0, newParserError(loAt, InvalidRange, "range out of order: "+p.re[loAt:j+1+cons], nil)
			}
			set.AddRange(lo, hi)
			j += 1 + cons
			continue
		}
		set.Add(lo)
	}

	// pop off ']'
	j++

	if negate {
		set = set.Negate()
	}
	return bytesExpr(set), j, nil
}

// parseClassByte reads one literal or escaped byte inside a bracket expression.
func (p *parser) parseClassByte(i int) (byte, int, error) {
	if p.re[i] != '\\' {
		return p.re[i], 1, nil
	}
	if i+1 >= len(p.re) {
		return 0, 0, newParserError(i, UnterminatedClass, "did not find closing ']'", nil)
	}
	return escapedChar(p.re[i+1]), 2, nil
}

// parseEscape parses a backslash sequence outside of brackets.
func (p *parser) parseEscape(i int) (ByteSet, int, error) {
	if i+1 >= len(p.re) {
		return ByteSet{}, 0, newParserError(i, UnexpectedToken, "trailing backslash", nil)
	}
	if cs, ok := parsePerlCharSet(p.re, i); ok {
		return cs, 2, nil
	}
	// otherwise treat as an escaped literal
	return Single(escapedChar(p.re[i+1])), 2, nil
}

func (p *parser) isQuantifier(i int) bool {
	if i >= len(p.re) {
		return false
	}
	switch p.re[i] {
	case '*', '+', '?':
		return true
	case '{':
		return i+1 < len(p.re) && isDigit(p.re[i+1])
	}
	return false
}

// {m}, {m,}, {m,n} and ? and * and +
// consumed is 0 when there is no quantifier at i.
func (p *parser) parseQuantifier(i int) (mi int, ma int, consumed int, err error) {
	if !p.isQuantifier(i) {
		return 1, 1, 0, nil
	}

	switch p.re[i] {
	case '+':
		return 1, -1, 1, nil
	case '?':
		return 0, 1, 1, nil
	case '*':
		return 0, -1, 1, nil
	}

	re := p.re[i:]
	endIdx := strings.IndexByte(re, '}')
	if endIdx == -1 {
		return 0, 0, 0, newParserError(i, InvalidRepetitionBounds, "did not find closing '}'", nil)
	}

	// inside '{...}'
	numStrs := strings.SplitN(re[1:endIdx], ",", 2)

	occMin, err := strconv.Atoi(numStrs[0])
	if err != nil {
		return 0, 0, 0, newParserError(i, InvalidRepetitionBounds, "failed to convert to number", err)
	}

	occMax := occMin
	if len(numStrs) == 2 {
		if numStrs[1] == "" {
			occMax = -1
		} else if occMax, err = strconv.Atoi(numStrs[1]); err != nil {
			return 0, 0, 0, newParserError(i, InvalidRepetitionBounds, "failed to convert to number", err)
		}
	}

	if occMin > maxRepeat || occMax > maxRepeat {
		return 0, 0, 0, newParserError(i, InvalidRepetitionBounds, fmt.Sprintf("repeat count exceeds %d", maxRepeat), nil)
	}
	if occMax != -1 && occMin > occMax {
		return 0, 0, 0, newParserError(i, InvalidRepetitionBounds, fmt.Sprintf("minimum %d exceeds maximum %d", occMin, occMax), nil)
	}
	return occMin, occMax, 1 + endIdx, nil
}

type charRange struct {
	from byte
	to   byte
}

func rangesSet(ranges ...charRange) ByteSet {
	var s ByteSet
	for _, r := range ranges {
		s.AddRange(r.from, r.to)
	}
	return s
}

var (
	wordSet  = rangesSet(charRange{'a', 'z'}, charRange{'A', 'Z'}, charRange{'0', '9'}, charRange{'_', '_'})
	digitSet = rangesSet(charRange{'0', '9'})
	spaceSet = rangesSet(charRange{' ', ' '}, charRange{'\t', '\r'})
)

var posixCharSets = map[string]ByteSet{
	"[:word:]":   wordSet,
	"[:alnum:]":  rangesSet(charRange{'a', 'z'}, charRange{'A', 'Z'}, charRange{'0', '9'}),
	"[:alpha:]":  rangesSet(charRange{'a', 'z'}, charRange{'A', 'Z'}),
	"[:ascii:]":  rangesSet(charRange{0x0, 0x7f}),
	"[:blank:]":  rangesSet(charRange{' ', ' '}, charRange{'\t', '\t'}),
	"[:cntrl:]":  rangesSet(charRange{0x0, 0x1f}, charRange{0x7f, 0x7f}),
	"[:digit:]":  digitSet,
	"[:graph:]":  rangesSet(charRange{0x21, 0x7e}),
	"[:lower:]":  rangesSet(charRange{'a', 'z'}),
	"[:print:]":  rangesSet(charRange{0x20, 0x7e}),
	"[:punct:]":  rangesSet(charRange{0x21, 0x2f}, charRange{0x3a, 0x40}, charRange{0x5b, 0x60}, charRange{0x7b, 0x7e}),
	"[:space:]":  spaceSet,
	"[:upper:]":  rangesSet(charRange{'A', 'Z'}),
	"[:xdigit:]": rangesSet(charRange{'A', 'F'}, charRange{'a', 'f'}, charRange{'0', '9'}),
}

// parsePosixCharSet returns the set named at re[i:] and the bytes consumed,
// or 0 consumed if there is none.
func parsePosixCharSet(re string, i int) (ByteSet, int) {
	end := strings.Index(re[i:], ":]")
	if end == -1 {
		return ByteSet{}, 0
	}
	name := re[i : i+end+2]
	if set, ok := posixCharSets[name]; ok {
		return set, len(name)
	}
	return ByteSet{}, 0
}

// supported: \w, \W, \d, \D, \s, \S
func parsePerlCharSet(re string, i int) (ByteSet, bool) {
	if i+1 >= len(re) || re[i] != '\\' {
		return ByteSet{}, false
	}
	switch re[i+1] {
	case 'w':
		return wordSet, true
	case 'W':
		return wordSet.Negate(), true
	case 'd':
		return digitSet, true
	case 'D':
		return digitSet.Negate(), true
	case 's':
		return spaceSet, true
	case 'S':
		return spaceSet.Negate(), true
	}
	return ByteSet{}, false
}

// parse an ASCII escape sequence from c if there is one (e.g. '\t', '\n', ...)
// if c isn't an ASCII escape sequence, return c
// should be called if the character preceding c in the input string is '\'
// https://en.wikipedia.org/wiki/Escape_sequences_in_C
func escapedChar(c byte) byte {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'e':
		return 0x1b
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	}
	return c
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func bytesExpr(set ByteSet) *expr {
	return &expr{op: opBytes, set: set}
}
