package lexicon

import (
	"firechat/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoader_LoadAll(t *testing.T) {
	req := require.New(t)
	fsys := fstest.MapFS{
		"words/en.txt":       {Data: []byte("Badger\nsnake\n\n  mushroom  \n")},
		"words/fr.txt":       {Data: []byte("blaireau\r\nserpent\r\nbadger\r\n")},
		"words/README.md":    {Data: []byte("not a list")},
		"words/nested/x.txt": {Data: []byte("ignored")},
	}

	data, err := NewLoader(fsys).LoadAll("words")
	req.NoError(err)
	req.Equal([]string{"badger", "blaireau", "mushroom", "serpent", "snake"}, data.Words)
	req.Equal([]string{"en", "fr"}, data.Languages)
}

func TestLoader_Empty(t *testing.T) {
	fsys := fstest.MapFS{
		"words/en.txt": {Data: []byte("\n\r\n   \n")},
	}
	_, err := NewLoader(fsys).LoadAll("words")
	require.ErrorIs(t, err, errors.ErrEmptyWords)
}

func TestLoader_MissingDirectory(t *testing.T) {
	_, err := NewLoader(fstest.MapFS{}).LoadAll("words")
	require.Error(t, err)
}

func TestLoader_Embedded(t *testing.T) {
	req := require.New(t)
	data, err := NewEmbeddedLoader().LoadAll(DefaultPath)
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.Contains(data.Languages, "en")
	req.Contains(data.Languages, "fr")
	req.Contains(data.Words, "merde")
	for _, w := range data.Words {
		req.NotContains(w, "\r")
	}
}

func TestMerge(t *testing.T) {
	got := Merge([]string{"Snake", "badger"}, []string{" BADGER ", ""}, nil)
	require.Equal(t, []string{"badger", "snake"}, got)
}
