package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Run("identical canonical forms", func(t *testing.T) {
		assert.Equal(t, 1.0, Ratio("Stephen Curry", "stephen curry"))
		assert.Equal(t, 1.0, Ratio("Tim Hardaway Jr", "Tim Hardaway"))
		assert.Equal(t, 1.0, Ratio("Luka Dončić", "Luka Doncic"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0.0, Ratio("", "curry"))
		assert.Equal(t, 0.0, Ratio("curry", ""))
	})

	t.Run("one edit", func(t *testing.T) {
		// "smith" vs "smyth": 1 substitution over length 5.
		assert.InDelta(t, 0.8, Ratio("smith", "smyth"), 1e-9)
	})

	t.Run("bounded", func(t *testing.T) {
		pairs := [][2]string{
			{"curry", "james"},
			{"a", "somethingmuchlonger"},
			{"smith", "smiths"},
		}
		for _, p := range pairs {
			r := Ratio(p[0], p[1])
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, Ratio("curry", "currie"), Ratio("currie", "curry"))
	})
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"smith", "smyth", 1},
		{"curry", "curry", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
