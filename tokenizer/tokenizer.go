// Package tokenizer turns text into the feature tokens consumed by the
// fingerprint builder. Every tokenizer here is a replaceable default.
package tokenizer

import (
	"regexp"
	"strings"
)

// DefaultWidth is the sliding window width in runes.
const DefaultWidth = 4

// DefaultPattern selects the runes kept by the sliding tokenizer: letters,
// digits, underscore and the CJK unified ideographs block.
var DefaultPattern = regexp.MustCompile(`[\p{L}\p{N}_\x{4e00}-\x{9fcc}]+`)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

type Tokenizer interface {
	Tokenize(text string) []string
}

// Func adapts a plain function to Tokenizer.
type Func func(text string) []string

func (f Func) Tokenize(text string) []string { return f(text) }

// Sliding lower-cases the text, keeps only the runes matched by Pattern,
// concatenates them and emits every Width-rune window. Text shorter than the
// window yields a single token (possibly empty).
type Sliding struct {
	Pattern *regexp.Regexp
	Width   int
}

func Default() *Sliding {
	return &Sliding{Pattern: DefaultPattern, Width: DefaultWidth}
}

func (s *Sliding) Tokenize(text string) []string {
	pattern := s.Pattern
	if pattern == nil {
		pattern = DefaultPattern
	}
	width := s.Width
	if width <= 0 {
		width = DefaultWidth
	}

	content := strings.Join(pattern.FindAllString(strings.ToLower(text), -1), "")
	return Slide([]rune(content), width)
}

// Slide returns every width-rune window of content. At least one window is
// always returned.
func Slide(content []rune, width int) []string {
	n := len(content) - width + 1
	if n < 1 {
		n = 1
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		end := i + width
		if end > len(content) {
			end = len(content)
		}
		out = append(out, string(content[i:end]))
	}
	return out
}

// Words splits lower-cased text into runs of letters and digits.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Shingles creates n-gram shingles from tokens joined by sep. Fewer than n
// tokens yields nil.
func Shingles(tokens []string, n int, sep string) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], sep))
	}
	return shingles
}

// WordShingles tokenizes into words and emits N-word shingles, falling back
// to the whole word sequence when there are fewer than N words.
type WordShingles struct {
	N int
}

func (w WordShingles) Tokenize(text string) []string {
	words := Words(text)
	if len(words) == 0 {
		return nil
	}
	shingles := Shingles(words, w.N, " ")
	if len(shingles) == 0 {
		return []string{strings.Join(words, " ")}
	}
	return shingles
}
