// Package quotes holds the immutable quote collection served by the API.
package quotes

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed quotes.txt
var defaultQuotes string

var ErrEmpty = errors.New("quotes: collection is empty")

// Source picks an index in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource uses the package level generator, which is safe for
// concurrent use unlike a *rand.Rand.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Book is an ordered, read-only list of quotes.
type Book struct {
	quotes []string
	src    Source
}

type Option func(*Book)

// WithSource replaces the randomness source, mostly for tests. A nil source
// keeps the default.
func WithSource(src Source) Option {
	return func(b *Book) {
		if src != nil {
			b.src = src
		}
	}
}

// New copies quotes into a Book. Blank entries are dropped.
func New(quotes []string, opts ...Option) (*Book, error) {
	b := &Book{src: globalSource{}}
	for _, q := range quotes {
		if q = strings.TrimSpace(q); q != "" {
			b.quotes = append(b.quotes, q)
		}
	}
	if len(b.quotes) == 0 {
		return nil, ErrEmpty
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Default returns the embedded collection.
func Default(opts ...Option) (*Book, error) {
	return Parse(strings.NewReader(defaultQuotes), opts...)
}

// Parse reads one quote per line. Lines starting with '#' are comments.
func Parse(r io.Reader, opts ...Option) (*Book, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	return New(lines, opts...)
}

// Load reads the collection from path, or the embedded one when path is empty.
func Load(path string, opts ...Option) (*Book, error) {
	if path == "" {
		return Default(opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quotes file: %w", err)
	}
	defer f.Close()

	b, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func (b *Book) Len() int { return len(b.quotes) }

// All returns a copy of the collection in order.
func (b *Book) All() []string {
	return append([]string(nil), b.quotes...)
}

// Contains reports whether q is part of the collection.
func (b *Book) Contains(q string) bool {
	for _, v := range b.quotes {
		if v == q {
			return true
		}
	}
	return false
}

// Random draws one quote uniformly.
func (b *Book) Random() string {
	return b.quotes[b.src.IntN(len(b.quotes))]
}
