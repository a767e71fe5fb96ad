package moderation

import (
	"firechat/errors"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"firechat/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newStrictModerator(t *testing.T, words ...string) *Moderator {
	t.Helper()
	mod, err := NewModerator(words, replacementChar, PolicyStrict, logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	return mod
}

func TestEvaluate_Clean_Text_Is_Not_Profane(t *testing.T) {
	req := require.New(t)
	mod := newStrictModerator(t, "badword")

	// Given a text without any lexicon token
	verdict, err := Evaluate(mod, "hello world")

	// Then nothing is flagged and the text is untouched
	req.NoError(err)
	req.False(verdict.IsProfane)
	req.Equal("hello world", verdict.Cleaned)
	req.Empty(verdict.Words)
}

func TestEvaluate_Profane_Text_Is_Masked(t *testing.T) {
	req := require.New(t)
	mod := newStrictModerator(t, "badword")

	verdict, err := Evaluate(mod, "you are a badword today")

	req.NoError(err)
	req.True(verdict.IsProfane)
	req.Equal("you are a ******* today", verdict.Cleaned)
	req.Equal([]string{"badword"}, verdict.Words)
}

func TestEvaluate_Properties(t *testing.T) {
	req := require.New(t)
	mod := newStrictModerator(t, "badword", "snake", "mushroom")

	inputs := []string{
		"badword",
		"BADWORD!",
		"a snake, a mushroom; a badword?",
		"...badword...",
		"badword\tsnake\nmushroom",
		"émoji 🍄 mushroom 🍄",
		"snake-badword-snake",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			verdict, err := Evaluate(mod, input)
			req.NoError(err)
			req.True(verdict.IsProfane)

			// Same length, rune for rune
			in, out := []rune(input), []rune(verdict.Cleaned)
			req.Len(out, len(in))

			// Only masked runes differ from the input
			for i := range in {
				if in[i] != out[i] {
					req.Equal(replacementChar, out[i])
				}
			}

			// Cleaning is idempotent
			again, err := Evaluate(mod, verdict.Cleaned)
			req.NoError(err)
			req.False(again.IsProfane)
			req.Equal(verdict.Cleaned, again.Cleaned)
		})
	}
}

func TestEvaluate_Non_Interference(t *testing.T) {
	req := require.New(t)
	mod := newStrictModerator(t, "badword")

	verdict, err := Evaluate(mod, "Hey, badword! (really)")
	req.NoError(err)
	req.Equal("Hey, *******! (really)", verdict.Cleaned)
	req.True(strings.HasPrefix(verdict.Cleaned, "Hey, "))
	req.True(strings.HasSuffix(verdict.Cleaned, "! (really)"))
}

func TestEvaluate_Is_Deterministic(t *testing.T) {
	req := require.New(t)
	mod := newStrictModerator(t, "badword")

	first, err := Evaluate(mod, "badword badword")
	req.NoError(err)
	second, err := Evaluate(mod, "badword badword")
	req.NoError(err)
	req.Equal(first, second)
}

func TestEvaluate_Malformed_Text(t *testing.T) {
	req := require.New(t)
	mod := newStrictModerator(t, "badword")

	invalid := string([]byte{0xff, 0xfe, 'b'})
	req.False(utf8.ValidString(invalid))

	_, err := Evaluate(mod, invalid)
	req.ErrorIs(err, errors.ErrMalformedText)
}

func TestEvaluate_Filter_Panic_Becomes_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	filter := mocks.NewMockFilter(ctrl)

	// Given a strategy that blows up
	filter.EXPECT().IsProfane("anything").DoAndReturn(func(string) bool {
		panic("broken lexicon")
	})

	// Then the failure is reported, never swallowed
	_, err := Evaluate(filter, "anything")
	req.ErrorIs(err, errors.ErrLexiconCheck)
}

func TestEvaluate_Pluggable_Filter(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	filter := mocks.NewMockFilter(ctrl)

	// Given a custom policy
	filter.EXPECT().IsProfane("custom").Return(true)
	filter.EXPECT().Clean("custom").Return("######")

	verdict, err := Evaluate(filter, "custom")
	req.NoError(err)
	req.True(verdict.IsProfane)
	req.Equal("######", verdict.Cleaned)
	// A filter without WordReporter reports no words
	req.Nil(verdict.Words)
}
