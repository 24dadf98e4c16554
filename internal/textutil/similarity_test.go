package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaroWinklerKnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "ABUIABAC", "ABUIABAC", 1},
		{"both empty", "", "", 1},
		{"one empty", "abc", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"martha", "MARTHA", "MARHTA", 0.9611},
		{"dwayne", "DWAYNE", "DUANE", 0.84},
		{"dixon", "DIXON", "DICKSONX", 0.8133},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, JaroWinkler(tt.a, tt.b), 0.001)
		})
	}
}

func TestJaroKnownValue(t *testing.T) {
	assert.InDelta(t, 0.9444, Jaro("MARTHA", "MARHTA"), 0.001)
}

func TestJaroWinklerIsCaseSensitive(t *testing.T) {
	assert.Less(t, JaroWinkler("abcdef", "ABCDEF"), 1.0)
}

func TestJaroWinklerSymmetric(t *testing.T) {
	a := "ABUIABACGAAgw67ovwYoy-e26QcwoAY4oAY"
	b := "ABUIABACGAAgw67ovwYoy-e26QcwoAY4oAZ"
	assert.Equal(t, JaroWinkler(a, b), JaroWinkler(b, a))
}

func TestJaroWinklerBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "a"},
		{"ab", "ba"},
		{"ABUIAB", "ABUIABACGAAg"},
		{"héllo", "hello"},
	}
	for _, p := range pairs {
		score := JaroWinkler(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
