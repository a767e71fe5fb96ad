package repositories

import (
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const lexiconPrefix = "lexicon:"

type ILexiconRepository interface {
	Add(words ...string) (int, error)
	Remove(word string) error
	All() ([]string, error)
}

// LexiconRepository keeps the operator-managed words on top of the embedded lists.
// Words live in the keys, values are empty.
type LexiconRepository struct {
	db *badger.DB
}

func NewLexiconRepository(db *badger.DB) *LexiconRepository {
	return &LexiconRepository{db: db}
}

// Add stores the given words lowercased and returns how many were usable.
func (l *LexiconRepository) Add(words ...string) (int, error) {
	wb := l.db.NewWriteBatch()

	added := 0
	for _, w := range words {
		w = normalizeLexiconWord(w)
		if w == "" {
			continue
		}
		if err := wb.Set([]byte(lexiconPrefix+w), nil); err != nil {
			wb.Cancel()
			return 0, err
		}
		added++
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return added, nil
}

func (l *LexiconRepository) Remove(word string) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(lexiconPrefix + normalizeLexiconWord(word)))
	})
}

func (l *LexiconRepository) All() ([]string, error) {
	var words []string
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // words are in the keys
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(lexiconPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			words = append(words, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return words, err
}

func normalizeLexiconWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
