package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCensorReplacesForbiddenWord(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	// When
	censored, hits := moderator.Censor("that was stupid of him")

	// Then only the matched span is rewritten
	req.Equal("that was ****** of him", censored)
	req.Equal(1, hits)
}

func TestCensorFoldsLeetSpeak(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	censored, hits := moderator.Censor("that was 5tup1d of him")

	req.Equal("that was ****** of him", censored)
	req.Equal(1, hits)
}

func TestCensorSeesThroughPunctuation(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	// Dots inside the word are noise for the matcher but kept in the output
	censored, hits := moderator.Censor("s.t.u.p.i.d")

	req.Equal("***********", censored)
	req.Equal(1, hits)
}

func TestCensorCountsEverySpan(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid", "fool"}, '*')
	req.NoError(err)

	censored, hits := moderator.Censor("stupid fool")

	req.Equal("****** ****", censored)
	req.Equal(2, hits)
}

func TestCensorLeavesCleanTextAlone(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	censored, hits := moderator.Censor("bonjour tout le monde")

	req.Equal("bonjour tout le monde", censored)
	req.Zero(hits)
}

func TestCensorIsCaseInsensitive(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"stupid"}, '*')
	req.NoError(err)

	censored, hits := moderator.Censor("STUPID")

	req.Equal("******", censored)
	req.Equal(1, hits)
}

func TestLoadDefaultWords(t *testing.T) {
	req := require.New(t)

	words, err := LoadDefaultWords()

	req.NoError(err)
	req.NotEmpty(words)
	for _, w := range words {
		req.NotEmpty(w)
	}
}

func TestDetectLang(t *testing.T) {
	req := require.New(t)

	req.Equal("en", DetectLang("the quick brown fox jumps over the lazy dog"))
	req.Equal("fr", DetectLang("bonjour tout le monde, comment allez-vous aujourd'hui"))
}
