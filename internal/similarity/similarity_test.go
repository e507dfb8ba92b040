package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pairup/internal/similarity"
)

func TestFuzzy_Score(t *testing.T) {
	type testCase struct {
		name      string
		algorithm similarity.Algorithm
		left      string
		right     string
		mode      similarity.Mode
		want      int
	}

	tests := []testCase{
		{name: "Identical", algorithm: similarity.AlgorithmIndel, left: "Kojo", right: "Kojo", mode: similarity.ModeRatio, want: 100},
		{name: "BothEmpty", algorithm: similarity.AlgorithmIndel, left: "", right: "", mode: similarity.ModeRatio, want: 100},
		{name: "OneEmpty", algorithm: similarity.AlgorithmIndel, left: "", right: "abc", mode: similarity.ModeRatio, want: 0},
		{name: "TrailingPunctuation", algorithm: similarity.AlgorithmIndel, left: "this is a test", right: "this is a test!", mode: similarity.ModeRatio, want: 97},
		{name: "RatioIsCaseSensitive", algorithm: similarity.AlgorithmIndel, left: "Kojo", right: "kojo", mode: similarity.ModeRatio, want: 75},
		{name: "TokenSortReordered", algorithm: similarity.AlgorithmIndel, left: "new york mets", right: "mets new york", mode: similarity.ModeTokenSortRatio, want: 100},
		{name: "TokenSortFoldsAccents", algorithm: similarity.AlgorithmIndel, left: "José Mensah", right: "mensah_jose", mode: similarity.ModeTokenSortRatio, want: 100},
		{name: "Levenshtein", algorithm: similarity.AlgorithmLevenshtein, left: "kitten", right: "sitting", mode: similarity.ModeRatio, want: 57},
		{name: "LevenshteinEmpty", algorithm: similarity.AlgorithmLevenshtein, left: "", right: "", mode: similarity.ModeRatio, want: 100},
		{name: "JaroWinklerIdentical", algorithm: similarity.AlgorithmJaroWinkler, left: "Ama Serwaa", right: "Ama Serwaa", mode: similarity.ModeRatio, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer, err := similarity.New(tt.algorithm)
			require.NoError(t, err)

			got, err := scorer.Score(tt.left, tt.right, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFuzzy_ScoreIsDeterministicAndBounded(t *testing.T) {
	pairs := [][2]string{
		{"Kojo", "kojo.wav"},
		{"Esi Community Group", "group esi"},
		{"Yaw", "Ama"},
	}

	for _, alg := range similarity.Algorithms() {
		scorer, err := similarity.New(alg)
		require.NoError(t, err)

		for _, p := range pairs {
			for _, mode := range []similarity.Mode{similarity.ModeRatio, similarity.ModeTokenSortRatio} {
				first, err := scorer.Score(p[0], p[1], mode)
				require.NoError(t, err)

				second, err := scorer.Score(p[0], p[1], mode)
				require.NoError(t, err)

				assert.Equal(t, first, second, "%s %s %v", alg, mode, p)
				assert.GreaterOrEqual(t, first, 0)
				assert.LessOrEqual(t, first, 100)
			}
		}
	}
}

func TestFuzzy_ScoreErrors(t *testing.T) {
	scorer := similarity.Default()

	_, err := scorer.Score("\xff\xfe", "abc", similarity.ModeRatio)
	assert.ErrorIs(t, err, similarity.ErrMalformedInput)

	_, err = scorer.Score("abc", "\xff", similarity.ModeTokenSortRatio)
	assert.ErrorIs(t, err, similarity.ErrMalformedInput)

	_, err = scorer.Score("abc", "abc", similarity.Mode(42))
	assert.ErrorIs(t, err, similarity.ErrUnknownMode)
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	_, err := similarity.New("soundex")
	assert.ErrorIs(t, err, similarity.ErrUnknownAlgorithm)

	scorer, err := similarity.New("")
	require.NoError(t, err)
	assert.Equal(t, similarity.AlgorithmIndel, scorer.Algorithm())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "kojo mensah wav", similarity.Normalize("  Kojo_Mensah.WAV "))
	assert.Equal(t, "ama", similarity.Normalize("ÁMA!!"))
	assert.Equal(t, "", similarity.Normalize("--"))
}

func TestSortTokens(t *testing.T) {
	assert.Equal(t, "group kojo mensah", similarity.SortTokens("Mensah, Kojo (Group)"))
	assert.Equal(t, "", similarity.SortTokens(""))
}
