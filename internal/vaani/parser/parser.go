// Package parser reduces free-form bilingual text to an action key, the
// detected language and the leftover parameter text.
//
// Resolution is deterministic:
//
//  1. text is normalised and its language detected;
//  2. text equal to an action key literal ("show_desktop") resolves directly;
//  3. lexicon phrases are tried longest first, first whole-word
//     containment wins;
//  4. the text around the phrase becomes the parameters (before+after for
//     Hindi, after for English), with connector words trimmed from the edges;
//  5. "open browser" followed by a search cue is reclassified as a search;
//  6. otherwise ordered keyword rules apply, then the unknown sentinel.
//
// A Parser holds no mutable state, so Parse is safe for concurrent use and
// returns identical results for identical input.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/lexicon"
)

// maxCleanPasses bounds connector stripping so pathological repeats such as
// "ko ko ko ko ..." cannot loop for long.
const maxCleanPasses = 3

// ParsedCommand is the outcome of one Parse call.
type ParsedCommand struct {
	Key      action.Key    `json:"command_key"`
	Language lang.Language `json:"language"`
	// Params is the residual parameter text; empty means none.
	Params string `json:"params,omitempty"`
	// Phrase is the lexicon phrase that matched, if any.
	Phrase string `json:"phrase,omitempty"`
}

// Parser resolves text against a Lexicon.
type Parser struct {
	lex        *lexicon.Lexicon
	connectors map[string]struct{}
	searchCues map[string]struct{}
	rules      []Rule
}

// Option customises a Parser.
type Option func(*Parser)

// WithSearchCues replaces the words that turn "open browser ..." into a
// web search.
func WithSearchCues(words ...string) Option {
	return func(p *Parser) { p.searchCues = wordSet(words) }
}

// WithConnectors replaces the connector words trimmed from parameter edges.
func WithConnectors(words ...string) Option {
	return func(p *Parser) { p.connectors = wordSet(words) }
}

// WithRules replaces the keyword fallback rules.
func WithRules(rules ...Rule) Option {
	return func(p *Parser) { p.rules = rules }
}

// New returns a Parser over lex. A nil lexicon selects lexicon.Default().
func New(lex *lexicon.Lexicon, opts ...Option) *Parser {
	if lex == nil {
		lex = lexicon.Default()
	}
	p := &Parser{
		lex:        lex,
		connectors: wordSet(defaultConnectors),
		searchCues: wordSet(defaultSearchCues),
		rules:      DefaultRules(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lexicon returns the lexicon the parser resolves against.
func (p *Parser) Lexicon() *lexicon.Lexicon { return p.lex }

// Parse resolves text. It never fails: no match yields action.Unknown.
func (p *Parser) Parse(text string) ParsedCommand {
	norm := lexicon.Normalize(text)
	language := lexicon.Detect(norm)

	if k, ok := action.ParseKey(norm); ok {
		return ParsedCommand{Key: k, Language: language}
	}

	for _, phrase := range p.lex.Candidates() {
		idx := indexWord(norm, phrase)
		if idx < 0 {
			continue
		}
		key, _ := p.lex.Lookup(phrase)
		before := strings.TrimSpace(norm[:idx])
		after := p.clean(norm[idx+len(phrase):])

		params := after
		if language == lang.Hindi {
			params = p.clean(joinNonEmpty(before, after))
		}

		if key == action.OpenBrowser {
			if query, ok := p.searchQuery(params); ok {
				return ParsedCommand{Key: action.GoogleSearch, Language: language, Params: query, Phrase: phrase}
			}
		}
		return ParsedCommand{Key: key, Language: language, Params: params, Phrase: phrase}
	}

	for _, r := range p.rules {
		if r.Matches(norm) {
			return ParsedCommand{Key: r.Key, Language: language}
		}
	}
	return ParsedCommand{Key: action.Unknown, Language: language}
}

// clean trims connector words from both edges of s, repeating up to
// maxCleanPasses times.
func (p *Parser) clean(s string) string {
	words := strings.Fields(s)
	for pass := 0; pass < maxCleanPasses && len(words) > 0; pass++ {
		n := len(words)
		for len(words) > 0 && p.isConnector(words[0]) {
			words = words[1:]
		}
		for len(words) > 0 && p.isConnector(words[len(words)-1]) {
			words = words[:len(words)-1]
		}
		if len(words) == n {
			break
		}
	}
	return strings.Join(words, " ")
}

func (p *Parser) isConnector(w string) bool {
	_, ok := p.connectors[strings.Trim(w, ".,!?।")]
	return ok
}

// searchQuery reports whether params carries a search cue and, if so,
// returns params with cue and connector words removed. An empty remainder
// means there is nothing to search for and no reclassification happens.
func (p *Parser) searchQuery(params string) (string, bool) {
	words := strings.Fields(params)
	var kept []string
	cued := false
	for _, w := range words {
		if _, ok := p.searchCues[w]; ok {
			cued = true
			continue
		}
		kept = append(kept, w)
	}
	if !cued {
		return "", false
	}
	query := p.clean(strings.Join(kept, " "))
	return query, query != ""
}

// indexWord returns the index of the first occurrence of phrase in s that
// starts and ends on a word boundary, or -1. "home" does not occur in
// "open chrome"; "खोलो" does not occur in "खोलोगे".
func indexWord(s, phrase string) int {
	for off := 0; off <= len(s)-len(phrase); {
		i := strings.Index(s[off:], phrase)
		if i < 0 {
			return -1
		}
		i += off
		end := i + len(phrase)
		if boundaryBefore(s, i) && boundaryAfter(s, end) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		off = i + size
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[lexicon.Normalize(w)] = struct{}{}
	}
	return set
}
