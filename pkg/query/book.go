package query

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NamedQuery is one entry in the query book.
type NamedQuery struct {
	Name        string `yaml:"name"`
	SQL         string `yaml:"sql"`
	Description string `yaml:"description,omitempty"`
}

// Book is an ordered set of named queries loaded from a YAML file.
type Book struct {
	queries []NamedQuery
	byName  map[string]NamedQuery
}

type bookFile struct {
	Queries []NamedQuery `yaml:"queries"`
}

// LoadBook reads a query book from a YAML file. An empty path yields an
// empty book.
func LoadBook(path string) (*Book, error) {
	book := &Book{byName: map[string]NamedQuery{}}
	if path == "" {
		return book, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query book: %w", err)
	}

	var file bookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse query book: %w", err)
	}

	for _, q := range file.Queries {
		if q.Name == "" {
			return nil, fmt.Errorf("query book entry without a name")
		}
		if q.SQL == "" {
			return nil, fmt.Errorf("query %q has no sql", q.Name)
		}
		if _, dup := book.byName[q.Name]; dup {
			return nil, fmt.Errorf("duplicate query name %q", q.Name)
		}
		book.queries = append(book.queries, q)
		book.byName[q.Name] = q
	}

	return book, nil
}

// Lookup returns the query registered under name.
func (b *Book) Lookup(name string) (NamedQuery, bool) {
	q, ok := b.byName[name]
	return q, ok
}

// Names returns the query names in file order.
func (b *Book) Names() []string {
	names := make([]string, 0, len(b.queries))
	for _, q := range b.queries {
		names = append(names, q.Name)
	}
	return names
}

// Len returns the number of registered queries.
func (b *Book) Len() int {
	return len(b.queries)
}
