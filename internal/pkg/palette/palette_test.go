package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteColor(t *testing.T) {
	t.Run("empty input is neutral", func(t *testing.T) {
		assert.Equal(t, Neutral, SiteColor(""))
	})

	t.Run("known hashes", func(t *testing.T) {
		// "a" hashes to 97, "ab" to 3105.
		assert.Equal(t, "#e57373", SiteColor("a"))
		assert.Equal(t, "#64b5f6", SiteColor("ab"))
	})

	t.Run("sum leaves the int32 range", func(t *testing.T) {
		// "amina@fleet.test" hashes to -6376339646, "KBX 123A" to -5732050130
		// and "driver@example.com" to -2416203035.
		assert.Equal(t, "#81c784", SiteColor("amina@fleet.test"))
		assert.Equal(t, "#81c784", SiteColor("KBX 123A"))
		assert.Equal(t, "#ba68c8", SiteColor("driver@example.com"))
	})

	t.Run("deterministic and in palette", func(t *testing.T) {
		for _, s := range []string{"KBX 123A", "Jane Wanjiku", "0712345678", "日本語", "a very long vehicle identifier that overflows int32"} {
			c := SiteColor(s)
			assert.Equal(t, c, SiteColor(s))
			assert.Contains(t, siteColors, c)
		}
	})
}

func TestSegmentColor(t *testing.T) {
	assert.Equal(t, SegmentDark, SegmentColor(0))
	assert.Equal(t, SegmentLight, SegmentColor(1))
	assert.Equal(t, SegmentMuted, SegmentColor(2))
	assert.Equal(t, ExtraSegments[0], SegmentColor(3))
	assert.Equal(t, ExtraSegments[0], SegmentColor(3+len(ExtraSegments)))
}

func TestBadge(t *testing.T) {
	assert.Equal(t, Badge("active"), Badge("available"))
	assert.Equal(t, Badge("maintenance"), Badge("assigned"))
	assert.Equal(t, Badge("inactive"), Badge("anything else"))
	assert.NotEqual(t, Badge("active"), Badge("inactive"))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "J", Initial("jane", "?"))
	assert.Equal(t, "Å", Initial("ålborg", "?"))
	assert.Equal(t, "?", Initial("", "?"))
}
