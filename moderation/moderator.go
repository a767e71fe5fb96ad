package moderation

import (
	"firechat/errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Policy selects how text is normalized before matching.
type Policy string

const (
	// PolicyStrict matches whole words, case-insensitively.
	PolicyStrict Policy = "strict"
	// PolicyLeet also folds leet aliases and skips noise inside a word.
	// The mask rune is never skipped: a match cannot span an already masked word.
	PolicyLeet Policy = "leet"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyLeet:
		return PolicyLeet, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownPolicy, s)
	}
}

// Moderator is an Aho-Corasick backed Filter.
// It is immutable once built and safe for concurrent use.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	policy       Policy
	log          *slog.Logger
}

var _ Filter = (*Moderator)(nil)
var _ WordReporter = (*Moderator)(nil)

type TextMapping struct {
	Normalized []rune
	OrigIdx    []int
}

type span struct {
	start int // first masked rune in the original text
	end   int // exclusive
	word  string
}

// NewModerator builds the automaton over the normalized lexicon.
// The censored char must never be matchable itself, otherwise cleaning would not converge.
func NewModerator(censoredWords []string, censoredChar rune, policy Policy, log *slog.Logger) (*Moderator, error) {
	if !isNoise(censoredChar) || isWordRune(censoredChar) || simplifyRune(censoredChar) != censoredChar {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidMask, censoredChar)
	}
	m := &Moderator{censoredChar: censoredChar, policy: policy, log: log}

	seen := make(map[string]struct{}, len(censoredWords))
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if strings.ContainsRune(word, censoredChar) {
			log.Warn(errors.ErrMaskInLexicon.Error(), "word", word)
			continue
		}
		pattern := m.normalizeWord(word)
		if len(pattern) == 0 {
			continue
		}
		key := string(pattern)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		patterns = append(patterns, pattern)
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	// The double-array trie is built from sorted keys
	sort.Slice(patterns, func(i, j int) bool {
		return string(patterns[i]) < string(patterns[j])
	})

	matcher := new(goahocorasick.Machine)
	if err := matcher.Build(patterns); err != nil {
		return nil, err
	}
	m.matcher = matcher
	log.Debug("Moderator built", "patterns", len(patterns), "policy", policy)
	return m, nil
}

func (m *Moderator) IsProfane(text string) bool {
	return len(m.spans([]rune(text))) > 0
}

// Clean masks every match until none is left.
// Each pass masks at least one rune that was not masked before, so the loop is bounded by the text length.
func (m *Moderator) Clean(text string) string {
	cleaned, words := m.Censor(text)
	for i := 0; len(words) > 0 && i < utf8.RuneCountInString(text); i++ {
		cleaned, words = m.Censor(cleaned)
	}
	return cleaned
}

func (m *Moderator) Matches(text string) []string {
	_, words := m.Censor(text)
	return words
}

// Censor identifies forbidden patterns and replaces the original characters with the censored char,
// preserving spacing and everything outside the matches. It returns the normalized words found, in order.
func (m *Moderator) Censor(original string) (string, []string) {
	origRunes := []rune(original)
	spans := m.spans(origRunes)
	if len(spans) == 0 {
		return original, nil
	}

	words := make([]string, 0, len(spans))
	for _, s := range spans {
		for i := s.start; i < s.end; i++ {
			origRunes[i] = m.censoredChar
		}
		words = append(words, s.word)
	}
	return string(origRunes), words
}

// spans returns the matches that sit on word boundaries in the original text.
func (m *Moderator) spans(origRunes []rune) []span {
	mapping := m.normalize(origRunes)
	if len(mapping.Normalized) == 0 {
		return nil
	}

	terms := m.matcher.MultiPatternSearch(mapping.Normalized, false)
	var res []span
	for _, term := range terms {
		normStart := term.Pos
		normEnd := normStart + len(term.Word)
		if normStart < 0 || normEnd > len(mapping.OrigIdx) || normEnd <= normStart {
			continue
		}

		origStart := mapping.OrigIdx[normStart]
		origEnd := mapping.OrigIdx[normEnd-1] + 1
		if !isBoundary(origRunes, origStart-1) || !isBoundary(origRunes, origEnd) {
			continue
		}
		if slices.Contains(origRunes[origStart:origEnd], m.censoredChar) {
			continue
		}
		res = append(res, span{start: origStart, end: origEnd, word: string(term.Word)})
	}
	return res
}

// normalize transforms the input into a searchable format and tracks original rune positions.
func (m *Moderator) normalize(origRunes []rune) TextMapping {
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		if m.policy == PolicyLeet {
			r = simplifyRune(r)
			if isNoise(r) {
				continue
			}
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return TextMapping{Normalized: norm, OrigIdx: origIdx}
}

func (m *Moderator) normalizeWord(word string) []rune {
	word = strings.TrimSpace(word)
	out := make([]rune, 0, len(word))
	for _, r := range word {
		if m.policy == PolicyLeet {
			r = simplifyRune(r)
			if isNoise(r) {
				continue
			}
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// simplifyRune maps common leet speak characters back to their standard alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters that should be ignored during the pattern matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

func isBoundary(runes []rune, i int) bool {
	return i < 0 || i >= len(runes) || !isWordRune(runes[i])
}
