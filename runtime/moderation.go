package runtime

import (
	"firechat/lexicon"
	"firechat/moderation"
	"firechat/repositories"
	"fmt"
	"log/slog"
	"strings"
)

// PrepareModerator loads the embedded word lists and the operator words, then
// builds the matching automaton once. The lexicon is not reloaded afterwards.
func PrepareModerator(loader *lexicon.Loader, extra repositories.ILexiconRepository,
	charReplacement rune, policy moderation.Policy, log *slog.Logger) (*moderation.Moderator, error) {
	data, err := loader.LoadAll(lexicon.DefaultPath)
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))

	var stored []string
	if extra != nil {
		if stored, err = extra.All(); err != nil {
			return nil, fmt.Errorf("load operator lexicon: %w", err)
		}
	}

	words := lexicon.Merge(data.Words, stored)
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(words)),
		"embedded", len(data.Words), "operator", len(stored), "policy", policy)

	return moderation.NewModerator(words, charReplacement, policy, log)
}
