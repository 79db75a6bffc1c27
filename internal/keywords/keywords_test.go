package keywords

import (
	"strings"
	"testing"

	"github.com/jonathan/evidence-engine/internal/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_Basic(t *testing.T) {
	kws, err := Derive("Automated resume screening for ATS workflows!", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"automated", "screening", "workflows", "resume", "ats"}, kws)
}

func TestDerive_SortsByLengthThenLexical(t *testing.T) {
	kws, err := Derive("zeta beta alpha gamma", 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma", "beta", "zeta"}, kws)
}

func TestDerive_Truncates(t *testing.T) {
	kws, err := Derive("one1 two2 three3 four4 five5 six6 seven7 eight8 nine9 ten10", 3)
	require.NoError(t, err)
	assert.Len(t, kws, 3)
}

func TestDerive_DefaultMax(t *testing.T) {
	text := "alpha bravo charlie delta echoes foxtrot golfing hotel indigo juliet kilos"
	kws, err := Derive(text, 0)
	require.NoError(t, err)
	assert.Len(t, kws, DefaultMaxKeywords)
}

func TestDerive_EmptyInput(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"a an to of",
		"the and with that",
		"!!! ??? ...",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			kws, err := Derive(text, 8)
			assert.ErrorIs(t, err, ErrEmptyInput)
			assert.Nil(t, kws)
		})
	}
}

func TestDerive_Properties(t *testing.T) {
	inputs := []string{
		"Help recruiters screen resumes faster with AI matching and ATS sync",
		"RESUME resume Resume résumé parsing, parsing; PARSING",
		"A tool that lets hiring managers verify candidate backgrounds and references automatically",
		"x y z the of and but screening",
	}
	stop := vocab.Stopwords()

	for _, text := range inputs {
		kws, err := Derive(text, 8)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(kws), 8)

		seen := make(map[string]bool)
		for _, kw := range kws {
			assert.Equal(t, strings.ToLower(kw), kw)
			assert.False(t, stop[kw], "stopword %q leaked", kw)
			assert.False(t, seen[kw], "duplicate %q", kw)
			seen[kw] = true
		}
	}
}

func TestNormalize_Override(t *testing.T) {
	kws, err := Normalize([]string{"Resume", "screening", "ATS", "resume", "applicant tracking"}, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"applicant", "screening", "tracking", "resume", "ats"}, kws)
}

func TestNormalize_Empty(t *testing.T) {
	_, err := Normalize(nil, 8)
	assert.ErrorIs(t, err, ErrEmptyInput)
}
