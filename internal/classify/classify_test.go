package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicewatch/voicewatch/internal/keywords"
)

func TestClassifyTiered(t *testing.T) {
	c := New(keywords.Default(), StrategyTiered)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "two any-tier matches",
			text: "ElevenLabs launches new text-to-speech API",
			want: true,
		},
		{
			name: "no primary keyword",
			text: "Tesla announces new Autopilot features",
			want: false,
		},
		{
			name: "context keywords without voice terms",
			text: "Our new AI model improves efficiency",
			want: false,
		},
		{
			name: "single primary with context in same sentence",
			text: "Researchers demoed speech synthesis with a neural model. The audience cheered.",
			want: true,
		},
		{
			name: "single primary and context in different sentences",
			text: "The startup focuses on speech synthesis. Their api is generative and neural.",
			want: false,
		},
		{
			name: "substring match inside larger word still counts",
			text: "Watts Labs published a vocoder demo",
			want: true,
		},
		{
			name: "empty text",
			text: "",
			want: false,
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(tt.text)
			assert.Equal(t, tt.want, got, "text: %q", tt.text)
		})
	}
}

func TestClassifyReturnsMatches(t *testing.T) {
	c := New(keywords.Default(), StrategyTiered)

	ok, matched := c.Classify("ElevenLabs launches new text-to-speech API")
	require.True(t, ok)
	assert.Contains(t, matched, "text-to-speech")
	assert.Contains(t, matched, "elevenlabs")
	assert.Contains(t, matched, "api")
}

func TestClassifyBrokenKeywordSet(t *testing.T) {
	t.Run("should reject everything with a nil set", func(t *testing.T) {
		c := New(nil, StrategyTiered)
		ok, matched := c.Classify("voice ai and text-to-speech everywhere")
		assert.False(t, ok)
		assert.Empty(t, matched)
	})

	t.Run("should reject everything when primary tier is empty", func(t *testing.T) {
		c := New(&keywords.Set{Context: []string{"ai"}}, StrategyTiered)
		ok, _ := c.Classify("voice ai and text-to-speech everywhere")
		assert.False(t, ok)
	})
}

func TestClassifyAnyPrimary(t *testing.T) {
	c := New(keywords.Default(), StrategyAnyPrimary)

	t.Run("should accept a single primary match", func(t *testing.T) {
		ok, matched := c.Classify("A deep dive into voice cloning")
		assert.True(t, ok)
		assert.Contains(t, matched, "voice cloning")
	})

	t.Run("should accept two supporting-tier matches", func(t *testing.T) {
		ok, _ := c.Classify("elevenlabs ships a new vocoder")
		assert.True(t, ok)
	})

	t.Run("should reject a single supporting-tier match", func(t *testing.T) {
		ok, _ := c.Classify("elevenlabs raised a funding round")
		assert.False(t, ok)
	})
}

func TestClassifyWeighted(t *testing.T) {
	c := New(keywords.Default(), StrategyWeighted)

	t.Run("should accept on a primary match", func(t *testing.T) {
		ok, _ := c.Classify("new text-to-speech engine released")
		assert.True(t, ok)
	})

	t.Run("should reject low scoring technical matches", func(t *testing.T) {
		// One technical term scores 2, below the threshold.
		ok, _ := c.Classify("the prosody of spoken Danish")
		assert.False(t, ok)
	})

	t.Run("should subtract for negative keywords", func(t *testing.T) {
		// Company match (5) minus negative match (5) lands below the
		// threshold.
		ok, _ := c.Classify("elevenlabs hired a famous voice actor")
		assert.False(t, ok)
	})

	t.Run("should clamp the score at zero", func(t *testing.T) {
		ok, matched := c.Classify("the voice actor left a voicemail about voice lessons")
		assert.False(t, ok)
		assert.Empty(t, matched)
	})
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := New(keywords.Default(), StrategyTiered)

	ok1, _ := c.Classify("ELEVENLABS LAUNCHES NEW TEXT-TO-SPEECH API")
	ok2, _ := c.Classify(strings.ToLower("ELEVENLABS LAUNCHES NEW TEXT-TO-SPEECH API"))
	assert.True(t, ok1)
	assert.Equal(t, ok1, ok2)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"tiered", StrategyTiered, false},
		{"", StrategyTiered, false},
		{"any_primary", StrategyAnyPrimary, false},
		{"weighted", StrategyWeighted, false},
		{"bogus", StrategyTiered, true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
