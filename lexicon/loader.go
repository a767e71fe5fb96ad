// Package lexicon provides the words the moderation filter looks for.
package lexicon

import (
	"bufio"
	"bytes"
	"embed"
	"firechat/errors"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// DefaultPath is the directory of the embedded word lists.
const DefaultPath = "censored"

//go:embed censored/*.txt
var censoredFolder embed.FS

// Data carries the result of the loading process including metadata for logging.
type Data struct {
	Words     []string
	Languages []string
}

// Loader reads one word per line from every .txt file of a directory.
type Loader struct {
	fs fs.FS
}

func NewLoader(f fs.FS) *Loader {
	return &Loader{fs: f}
}

// NewEmbeddedLoader reads the word lists shipped with the binary.
func NewEmbeddedLoader() *Loader {
	return NewLoader(censoredFolder)
}

// LoadAll parses every .txt file under dir, the file name being the language ("fr.txt" -> "fr").
// Words are lowercased and de-duplicated. ErrEmptyWords is returned when nothing was found.
func (l *Loader) LoadAll(dir string) (*Data, error) {
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(l.fs, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		// Scanner handles \n and \r\n alike
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if w := normalize(scanner.Text()); w != "" {
				unique[w] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return &Data{Words: sortedKeys(unique), Languages: languages}, nil
}

// Merge returns the lowercased, de-duplicated and sorted union of the given word lists.
func Merge(lists ...[]string) []string {
	unique := make(map[string]struct{})
	for _, list := range lists {
		for _, w := range list {
			if w = normalize(w); w != "" {
				unique[w] = struct{}{}
			}
		}
	}
	return sortedKeys(unique)
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
