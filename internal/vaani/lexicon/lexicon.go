// Package lexicon holds the language-tagged phrase table that maps trigger
// phrases to action keys, together with the language detector.
//
// A Lexicon is immutable once built. The reverse index (phrase → key) spans
// both languages; when the same phrase is registered more than once the last
// registration wins. Candidate phrases are kept sorted longest first so that
// a specific phrase ("search file") is always tried before a generic phrase
// it contains ("search").
package lexicon

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

// ErrUnknownAction is returned when an entry names an undeclared action key.
var ErrUnknownAction = errors.New("lexicon: unknown action key")

// Entry lists the trigger phrases for one action key in one language.
type Entry struct {
	Language lang.Language
	Key      action.Key
	Phrases  []string
}

// Lexicon is the compiled phrase table.
type Lexicon struct {
	entries    []Entry
	index      map[string]action.Key
	candidates []string
}

// Normalize applies the canonical form used for both phrases and input:
// Unicode NFC, lower case, single spaces, no surrounding whitespace.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// New compiles entries into a Lexicon. Phrases are normalised and
// deduplicated per (language, key); empty phrases are dropped. Entries with
// undeclared keys are rejected.
func New(entries ...Entry) (*Lexicon, error) {
	type slot struct {
		lang lang.Language
		key  action.Key
	}
	order := make([]slot, 0, len(entries))
	merged := make(map[slot][]string)
	seen := make(map[slot]map[string]struct{})

	for _, e := range entries {
		if !e.Key.Known() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, e.Key)
		}
		s := slot{lang: e.Language.Or(lang.English), key: e.Key}
		if _, ok := seen[s]; !ok {
			seen[s] = make(map[string]struct{})
			order = append(order, s)
		}
		for _, p := range e.Phrases {
			p = Normalize(p)
			if p == "" {
				continue
			}
			if _, dup := seen[s][p]; dup {
				continue
			}
			seen[s][p] = struct{}{}
			merged[s] = append(merged[s], p)
		}
	}

	lx := &Lexicon{index: make(map[string]action.Key)}
	for _, s := range order {
		lx.entries = append(lx.entries, Entry{Language: s.lang, Key: s.key, Phrases: merged[s]})
	}
	// Registration order decides same-phrase conflicts: the later entry wins.
	for _, e := range entries {
		for _, p := range e.Phrases {
			if p = Normalize(p); p != "" {
				lx.index[p] = e.Key
			}
		}
	}
	for p := range lx.index {
		lx.candidates = append(lx.candidates, p)
	}
	sort.Slice(lx.candidates, func(i, j int) bool {
		a, b := lx.candidates[i], lx.candidates[j]
		la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
		if la != lb {
			return la > lb
		}
		return a < b
	})
	return lx, nil
}

// MustNew is New for static tables; it panics on error.
func MustNew(entries ...Entry) *Lexicon {
	lx, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return lx
}

// Candidates returns every registered phrase, longest first. Phrases of equal
// rune length are ordered lexically. The returned slice must not be modified.
func (l *Lexicon) Candidates() []string { return l.candidates }

// Lookup returns the action key a phrase resolves to.
func (l *Lexicon) Lookup(phrase string) (action.Key, bool) {
	k, ok := l.index[Normalize(phrase)]
	return k, ok
}

// Entries returns a copy of the compiled entries in registration order.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = Entry{Language: e.Language, Key: e.Key, Phrases: append([]string(nil), e.Phrases...)}
	}
	return out
}

// Extend returns a new Lexicon containing l's entries followed by extra.
// Phrases in extra override identical phrases already in l.
func (l *Lexicon) Extend(extra ...Entry) (*Lexicon, error) {
	return New(append(l.Entries(), extra...)...)
}

// Len returns the number of distinct phrases in the reverse index.
func (l *Lexicon) Len() int { return len(l.index) }
