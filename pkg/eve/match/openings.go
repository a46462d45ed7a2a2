// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package match

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// LoadBook reads an opening book with one fen per line.
func LoadBook(name string) (*Book, error) {
	file, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}

	book := NewBook(strings.Split(string(file), "\n"))
	if book.Len() == 0 {
		return nil, fmt.Errorf("load book: %s has no openings", name)
	}

	return book, nil
}

// NewBook creates a book from the given lines, trimming them and
// dropping the blank ones.
func NewBook(lines []string) *Book {
	var book Book
	for _, line := range lines {
		if line = strings.Trim(line, "\n\r\t "); line != "" {
			book.entries = append(book.entries, line)
		}
	}

	return &book
}

// Book is a list of openings which is cycled through in order.
type Book struct {
	entries []string
	current int
}

func (book *Book) Len() int {
	return len(book.entries)
}

// Shuffle randomly reorders the book's openings.
func (book *Book) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(book.entries), func(i, j int) {
		book.entries[i], book.entries[j] = book.entries[j], book.entries[i]
	})
}

// Split partitions the book into n contiguous books. The first
// Len() % n books get one opening more than the rest.
func (book *Book) Split(n int) ([]*Book, error) {
	if n <= 0 {
		return nil, fmt.Errorf("split book: %d partitions", n)
	}

	if len(book.entries) < n {
		return nil, fmt.Errorf("split book: %d openings for %d partitions", len(book.entries), n)
	}

	size, extra := len(book.entries)/n, len(book.entries)%n
	books := make([]*Book, n)

	start := 0
	for i := range books {
		end := start + size
		if i < extra {
			end++
		}

		books[i] = &Book{entries: book.entries[start:end:end]}
		start = end
	}

	return books, nil
}

// Next returns the next opening, wrapping around at the end.
func (book *Book) Next() string {
	entry := book.entries[book.current]
	book.current = (book.current + 1) % len(book.entries)
	return entry
}

// SideToMove reads the side to move from an opening's third-from-last
// field: x or r for red, o or b for blue.
func SideToMove(fen string) (Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 3 {
		return Red, fmt.Errorf("side to move: malformed fen %q", fen)
	}

	switch stm := fields[len(fields)-3]; stm {
	case "x", "r":
		return Red, nil
	case "o", "b":
		return Blue, nil
	default:
		return Red, fmt.Errorf("side to move: unknown token %q in %q", stm, fen)
	}
}
