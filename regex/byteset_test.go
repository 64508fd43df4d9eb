package regex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestByteSet(t *testing.T) {
	tests := map[string]struct {
		givenSet   ByteSet
		wantLen    int
		wantString string
	}{
		"empty": {
			givenSet:   ByteSet{},
			wantLen:    0,
			wantString: "[]",
		},
		"single": {
			givenSet:   Single('x'),
			wantLen:    1,
			wantString: "[x]",
		},
		"digits and underscore": {
			givenSet: func() ByteSet {
				s := Range('0', '9')
				s.Add('_')
				return s
			}(),
			wantLen:    11,
			wantString: "[0-9_]",
		},
		"non printable bytes are escaped": {
			givenSet: func() ByteSet {
				s := Single('\n')
				s.Add('-')
				s.Add(0xff)
				return s
			}(),
			wantLen:    3,
			wantString: `[\x0a\x2d\xff]`,
		},
		"any byte": {
			givenSet:   AnyByte(),
			wantLen:    256,
			wantString: `[\x00-\xff]`,
		},
		"negated range": {
			givenSet:   Range(0x01, 0xff).Negate(),
			wantLen:    1,
			wantString: `[\x00]`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// then
			if d := cmp.Diff(tt.wantLen, tt.givenSet.Len()); d != "" {
				t.Errorf("len: got diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantString, tt.givenSet.String()); d != "" {
				t.Errorf("string: got diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantLen, len(tt.givenSet.Bytes())); d != "" {
				t.Errorf("bytes: got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestByteSetMembership(t *testing.T) {
	s := Range('a', 'c')
	s.Union(Single(0x80))
	neg := s.Negate()

	for c := 0; c < 256; c++ {
		want := c >= 'a' && c <= 'c' || c == 0x80
		if s.Contains(byte(c)) != want {
			t.Errorf("Contains(%#x) = %v, want %v", c, !want, want)
		}
		if neg.Contains(byte(c)) == want {
			t.Errorf("negated Contains(%#x) = %v, want %v", c, want, !want)
		}
	}

	if d := cmp.Diff([]byte{'a', 'b', 'c', 0x80}, s.Bytes()); d != "" {
		t.Errorf("got diff (-want +got):\n%s", d)
	}
}
