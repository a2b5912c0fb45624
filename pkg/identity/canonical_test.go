package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple", "Stephen Curry", "stephencurry"},
		{"case folded", "STEPHEN CURRY", "stephencurry"},
		{"apostrophe dropped", "Shaquille O'Neal", "shaquilleoneal"},
		{"hyphen dropped", "Karl-Anthony Towns", "karlanthonytowns"},
		{"period dropped", "P.J. Tucker", "pjtucker"},
		{"accents stripped", "Luka Dončić", "lukadoncic"},
		{"jr suffix dropped", "Tim Hardaway Jr.", "timhardaway"},
		{"sr suffix dropped", "Gary Payton Sr", "garypayton"},
		{"iii suffix dropped", "Otto Porter III", "ottoporter"},
		{"iv suffix dropped", "Lonnie Walker IV", "lonniewalker"},
		{"v suffix dropped", "Gary Payton V", "garypayton"},
		{"extra whitespace", "  LeBron   James  ", "lebronjames"},
		{"empty", "", ""},
		{"only punctuation", "...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.raw))
		})
	}
}

func TestCanonicalizeIsStable(t *testing.T) {
	// The same physical player must land on the same lookup regardless of
	// which source's spelling arrives first.
	spellings := []string{"Luka Doncic", "Luka Dončić", "LUKA DONCIC", "luka doncic"}
	want := Canonicalize(spellings[0])
	for _, s := range spellings[1:] {
		assert.Equal(t, want, Canonicalize(s), "spelling %q", s)
	}
}

func TestCanonicalizeSuffixNotMidName(t *testing.T) {
	// Only a trailing token is treated as a suffix.
	assert.Equal(t, "srsmith", Canonicalize("Sr Smith"))
	assert.Equal(t, "jrholiday", Canonicalize("Jr Holiday"))
}

func TestHasGenerationalSuffix(t *testing.T) {
	assert.True(t, HasGenerationalSuffix("Tim Hardaway Jr"))
	assert.True(t, HasGenerationalSuffix("Otto Porter III"))
	assert.True(t, HasGenerationalSuffix("hardawayjr"))
	assert.False(t, HasGenerationalSuffix("Stephen Curry"))
	assert.False(t, HasGenerationalSuffix("curry"))
}

func TestSplitSuffix(t *testing.T) {
	t.Run("recognized suffixes", func(t *testing.T) {
		tests := []struct {
			lookup string
			base   string
		}{
			{"hardawayjr", "hardaway"},
			{"paytonsr", "payton"},
			{"porteriii", "porter"},
			{"walkeriv", "walker"},
		}
		for _, tt := range tests {
			base, ok := SplitSuffix(tt.lookup)
			assert.True(t, ok, "lookup %q", tt.lookup)
			assert.Equal(t, tt.base, base)
		}
	})

	t.Run("no suffix", func(t *testing.T) {
		_, ok := SplitSuffix("curry")
		assert.False(t, ok)
	})

	t.Run("lone v ambiguous", func(t *testing.T) {
		// "paytonv" could be "Payton V" or a surname ending in v.
		_, ok := SplitSuffix("paytonv")
		assert.False(t, ok)
	})

	t.Run("suffix only", func(t *testing.T) {
		_, ok := SplitSuffix("jr")
		assert.False(t, ok)
	})
}

func TestDiffersBySuffix(t *testing.T) {
	t.Run("suffix on first", func(t *testing.T) {
		alias, canonical, ok := DiffersBySuffix("jamesjr", "james")
		assert.True(t, ok)
		assert.Equal(t, "jamesjr", alias)
		assert.Equal(t, "james", canonical)
	})

	t.Run("suffix on second", func(t *testing.T) {
		alias, canonical, ok := DiffersBySuffix("james", "jamesjr")
		assert.True(t, ok)
		assert.Equal(t, "jamesjr", alias)
		assert.Equal(t, "james", canonical)
	})

	t.Run("equal lookups", func(t *testing.T) {
		_, _, ok := DiffersBySuffix("james", "james")
		assert.False(t, ok)
	})

	t.Run("different names", func(t *testing.T) {
		_, _, ok := DiffersBySuffix("jamesjr", "curry")
		assert.False(t, ok)
	})
}
