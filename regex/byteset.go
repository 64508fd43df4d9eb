package regex

import (
	"fmt"
	"math/bits"
	"strings"
)

// ByteSet is a set of byte values with constant-time membership queries.
// The zero value is the empty set.
type ByteSet [4]uint64

// Single returns the set containing only c.
func Single(c byte) ByteSet {
	var s ByteSet
	s.Add(c)
	return s
}

// Range returns the set of bytes from lo to hi inclusive.
func Range(lo, hi byte) ByteSet {
	var s ByteSet
	s.AddRange(lo, hi)
	return s
}

// AnyByte returns the set of all 256 byte values.
func AnyByte() ByteSet {
	return ByteSet{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
}

func (s *ByteSet) Add(c byte) {
	s[c/64] |= uint64(1) << (c & 63)
}

func (s *ByteSet) AddRange(lo, hi byte) {
	for c := int(lo); c <= int(hi); c++ {
		s.Add(byte(c))
	}
}

func (s *ByteSet) Union(o ByteSet) {
	for i := range s {
		s[i] |= o[i]
	}
}

// Negate returns the complement of s over all 256 byte values.
func (s ByteSet) Negate() ByteSet {
	for i := range s {
		s[i] = ^s[i]
	}
	return s
}

// Contains reports whether byte c is in the set.
func (s ByteSet) Contains(c byte) bool {
	return s[c/64]&(uint64(1)<<(c&63)) != 0
}

func (s ByteSet) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bytes returns the members in increasing order.
func (s ByteSet) Bytes() []byte {
	out := make([]byte, 0, s.Len())
	for c := 0; c < 256; c++ {
		if s.Contains(byte(c)) {
			out = append(out, byte(c))
		}
	}
	return out
}

// String renders the set as a bracket expression, e.g. "[0-9a-f]".
func (s ByteSet) String() string {
	out := strings.Builder{}
	out.WriteByte('[')
	for c := 0; c < 256; {
		if !s.Contains(byte(c)) {
			c++
			continue
		}
		lo := c
		for c < 256 && s.Contains(byte(c)) {
			c++
		}
		hi := c - 1
		out.WriteString(printableByte(byte(lo)))
		if hi > lo {
			out.WriteByte('-')
			out.WriteString(printableByte(byte(hi)))
		}
	}
	out.WriteByte(']')
	return out.String()
}

func printableByte(c byte) string {
	if c >= 0x21 && c <= 0x7e && c != '\\' && c != '-' && c != ']' {
		return string(rune(c))
	}
	return fmt.Sprintf(`\x%02x`, c)
}
