//go:generate go run go.uber.org/mock/mockgen -source=filter.go -destination=../mocks/mock_filter.go -package=mocks
package moderation

import (
	"firechat/errors"
	"fmt"
	"unicode/utf8"
)

// Filter is the matching policy used by the pipeline.
// Implementations must be safe for concurrent use.
type Filter interface {
	IsProfane(text string) bool
	Clean(text string) string
}

// WordReporter is implemented by filters able to name what they matched.
type WordReporter interface {
	Matches(text string) []string
}

type Verdict struct {
	IsProfane bool
	Cleaned   string
	Words     []string
}

// Evaluate applies the filter to text without any side effect.
// Cleaned equals text when nothing is profane.
func Evaluate(filter Filter, text string) (verdict Verdict, err error) {
	if !utf8.ValidString(text) {
		return Verdict{}, errors.ErrMalformedText
	}

	defer func() {
		if r := recover(); r != nil {
			verdict = Verdict{}
			err = fmt.Errorf("%w: %v", errors.ErrLexiconCheck, r)
		}
	}()

	if !filter.IsProfane(text) {
		return Verdict{IsProfane: false, Cleaned: text}, nil
	}

	verdict = Verdict{IsProfane: true, Cleaned: filter.Clean(text)}
	if reporter, ok := filter.(WordReporter); ok {
		verdict.Words = reporter.Matches(text)
	}
	return verdict, nil
}
