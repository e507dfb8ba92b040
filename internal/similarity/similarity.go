package similarity

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"
	"github.com/hbollon/go-edlib"
)

// Mode selects how two display strings are compared.
type Mode int

const (
	// ModeRatio compares the strings character by character.
	ModeRatio Mode = iota
	// ModeTokenSortRatio normalizes both strings, sorts their whitespace separated
	// tokens and compares the rejoined results.
	ModeTokenSortRatio
)

func (m Mode) String() string {
	switch m {
	case ModeRatio:
		return "ratio"
	case ModeTokenSortRatio:
		return "token_sort_ratio"
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// Scorer returns a similarity score in [0,100] for two display strings.
// Implementations must be deterministic for identical inputs.
type Scorer interface {
	Score(left, right string, mode Mode) (int, error)
}

// Algorithm names the character level ratio used underneath both modes.
type Algorithm string

const (
	AlgorithmIndel       Algorithm = "indel"
	AlgorithmLevenshtein Algorithm = "levenshtein"
	AlgorithmJaroWinkler Algorithm = "jaro-winkler"
)

var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrUnknownAlgorithm = errors.New("unknown similarity algorithm")
	ErrUnknownMode      = errors.New("unknown similarity mode")
)

// Algorithms lists the supported algorithms, default first.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmIndel, AlgorithmLevenshtein, AlgorithmJaroWinkler}
}

// ratioFunc returns a similarity in [0,1].
type ratioFunc func(a, b string) float64

// Fuzzy is the production Scorer.
type Fuzzy struct {
	algorithm Algorithm
	ratio     ratioFunc
}

// New returns a Fuzzy scorer backed by the named algorithm.
func New(alg Algorithm) (*Fuzzy, error) {
	var fn ratioFunc

	switch alg {
	case AlgorithmIndel, "":
		alg = AlgorithmIndel
		fn = indelRatio
	case AlgorithmLevenshtein:
		fn = levenshteinRatio
	case AlgorithmJaroWinkler:
		jw := metrics.NewJaroWinkler()
		fn = func(a, b string) float64 {
			return strutil.Similarity(a, b, jw)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}

	return &Fuzzy{algorithm: alg, ratio: fn}, nil
}

// Default returns the indel ratio scorer.
func Default() *Fuzzy {
	return &Fuzzy{algorithm: AlgorithmIndel, ratio: indelRatio}
}

func (f *Fuzzy) Algorithm() Algorithm {
	return f.algorithm
}

func (f *Fuzzy) Score(left, right string, mode Mode) (int, error) {
	if !utf8.ValidString(left) {
		return 0, fmt.Errorf("%w: left %q is not valid UTF-8", ErrMalformedInput, left)
	}

	if !utf8.ValidString(right) {
		return 0, fmt.Errorf("%w: right %q is not valid UTF-8", ErrMalformedInput, right)
	}

	switch mode {
	case ModeRatio:
		return toScore(f.ratio(left, right)), nil
	case ModeTokenSortRatio:
		return toScore(f.ratio(SortTokens(left), SortTokens(right))), nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
}

// indelRatio is 2*LCS/(len(a)+len(b)), the insert/delete edit ratio.
func indelRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	return float64(2*edlib.LCS(a, b)) / float64(total)
}

func levenshteinRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}

	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func toScore(ratio float64) int {
	score := int(math.Round(ratio * 100))

	return min(max(score, 0), 100)
}

// SortTokens normalizes s and returns its tokens sorted and joined by single spaces.
func SortTokens(s string) string {
	tokens := strings.Fields(Normalize(s))
	slices.Sort(tokens)

	return strings.Join(tokens, " ")
}
