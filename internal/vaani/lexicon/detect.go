package lexicon

import (
	"strings"
	"unicode"

	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

// romanHindi is the vocabulary that marks Latin-script input as Hindi.
// English homographs ("me", "sun") are left out so that ordinary English
// sentences are not misdetected.
var romanHindi = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		kholo band karo chalao bhejo kaun kya hai samay tareekh din aaj kal
		suno raha mujhe tum aap namaste shukriya dhanyavad kaise madad sakte
		ho btao batao dekhna ruko dheere tez badhao kam aawaz awaz par ko se
		ka ki aur kahan kab kyu mausam tapman garmi sardi hisab jodo ghatao
		guna bhag dhoondo dhundo khojo dikhao banao hatao badlo nikalo lo`) {
		romanHindi[w] = struct{}{}
	}
}

// IsDevanagari reports whether r belongs to the Devanagari block.
func IsDevanagari(r rune) bool {
	return unicode.Is(unicode.Devanagari, r)
}

// Detect returns Hindi when text contains any Devanagari character or any
// whitespace-separated token from the romanised Hindi vocabulary, and
// English otherwise. Text is expected to be normalised already.
func Detect(text string) lang.Language {
	for _, r := range text {
		if IsDevanagari(r) {
			return lang.Hindi
		}
	}
	for _, tok := range strings.Fields(text) {
		if _, ok := romanHindi[tok]; ok {
			return lang.Hindi
		}
	}
	return lang.English
}
