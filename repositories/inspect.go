package repositories

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Record is a decoded view of one raw key, for operator tooling only.
type Record struct {
	Key    string
	Kind   string
	Detail string
}

// Describe decodes a raw key/value pair whatever its record kind.
// Undecodable values are reported, not returned as errors.
func Describe(key string, value []byte) Record {
	record := Record{Key: key, Kind: "RAW", Detail: fmt.Sprintf("Size: %d bytes", len(value))}
	switch {
	case strings.HasPrefix(key, messagePrefix):
		record.Kind = "MESSAGE"
		if m, err := unmarshalMessage(value); err == nil {
			record.Detail = fmt.Sprintf("%s: %s", m.AuthorDisplayName, m.Text)
		}
	case strings.HasPrefix(key, messageIndex):
		record.Kind = "INDEX"
		record.Detail = string(value)
	case strings.HasPrefix(key, pendingPrefix):
		record.Kind = "PENDING"
		record.Detail = "attempts: " + string(value)
	case strings.HasPrefix(key, deadLetterPrefix):
		record.Kind = "DEADLETTER"
		if d, err := unmarshalDeadLetter(value); err == nil {
			record.Detail = fmt.Sprintf("%d attempts: %s", d.Attempts, d.Reason)
		}
	case strings.HasPrefix(key, userPrefix):
		record.Kind = "USER"
		if u, err := unmarshalUser(value); err == nil {
			record.Detail = u.DisplayName + " <" + u.Email + ">"
		}
	case strings.HasPrefix(key, revokedPrefix):
		record.Kind = "REVOKED"
		record.Detail = ""
	case strings.HasPrefix(key, lexiconPrefix):
		record.Kind = "LEXICON"
		record.Detail = strings.TrimPrefix(key, lexiconPrefix)
	}
	return record
}

// Scan decodes every record whose key starts with prefix, in key order.
func Scan(db *badger.DB, prefix string) ([]Record, error) {
	var records []Record
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if err := item.Value(func(v []byte) error {
				records = append(records, Describe(key, v))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return records, err
}
