package parser_test

import (
	"testing"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/lexicon"
	"github.com/bdobrica/Vaani/internal/vaani/parser"
)

func TestParse(t *testing.T) {
	p := parser.New(nil)

	tests := []struct {
		input      string
		wantKey    action.Key
		wantLang   lang.Language
		wantParams string
	}{
		{"shutdown", action.Shutdown, lang.English, ""},
		{"Open Chrome", action.OpenApp, lang.English, "chrome"},
		{"open the chrome please", action.OpenApp, lang.English, "chrome"},
		{"chrome kholo", action.OpenApp, lang.Hindi, "chrome"},
		{"notepad ko kholo", action.OpenApp, lang.Hindi, "notepad"},
		{"क्रोम खोलो", action.OpenApp, lang.Hindi, "क्रोम"},
		{"search file report.pdf", action.SearchFiles, lang.English, "report.pdf"},
		{"what time is it", action.Time, lang.English, "is it"},
		{"कंप्यूटर बंद करो", action.Shutdown, lang.Hindi, ""},
		{"volume up", action.VolumeUp, lang.English, ""},
		{"show_desktop", action.ShowDesktop, lang.English, ""},
		{"open browser", action.OpenBrowser, lang.English, ""},
		{"xyzzy plugh", action.Unknown, lang.English, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input)
			if got.Key != tt.wantKey {
				t.Errorf("Key: got %q, want %q", got.Key, tt.wantKey)
			}
			if got.Language != tt.wantLang {
				t.Errorf("Language: got %q, want %q", got.Language, tt.wantLang)
			}
			if got.Params != tt.wantParams {
				t.Errorf("Params: got %q, want %q", got.Params, tt.wantParams)
			}
		})
	}
}

func TestParse_EveryRegisteredPhraseResolvesToItsKey(t *testing.T) {
	lx := lexicon.Default()
	p := parser.New(lx)
	for _, e := range lx.Entries() {
		for _, phrase := range e.Phrases {
			want, _ := lx.Lookup(phrase)
			if got := p.Parse(phrase); got.Key != want {
				t.Errorf("Parse(%q): got %q, want %q", phrase, got.Key, want)
			}
		}
	}
}

func TestParse_LongestMatchWins(t *testing.T) {
	lx := lexicon.MustNew(
		lexicon.Entry{Language: lang.English, Key: action.GoogleSearch, Phrases: []string{"search"}},
		lexicon.Entry{Language: lang.English, Key: action.SearchFiles, Phrases: []string{"search file"}},
	)
	p := parser.New(lx)

	if got := p.Parse("please search file taxes"); got.Key != action.SearchFiles {
		t.Errorf("got %q, want %q", got.Key, action.SearchFiles)
	}
	if got := p.Parse("search cats"); got.Key != action.GoogleSearch || got.Params != "cats" {
		t.Errorf("got %+v, want google_search with params cats", got)
	}
}

func TestParse_BrowserReclassifiedAsSearch(t *testing.T) {
	p := parser.New(nil)

	tests := []struct {
		input      string
		wantKey    action.Key
		wantParams string
	}{
		{"open browser and search golang tutorials", action.GoogleSearch, "golang tutorials"},
		{"open browser google the weather", action.GoogleSearch, "weather"},
		{"browser kholo aur cricket score khojo", action.GoogleSearch, "cricket score"},
		{"open browser and search", action.OpenBrowser, "search"},
		{"open browser to example.com", action.OpenBrowser, "example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input)
			if got.Key != tt.wantKey || got.Params != tt.wantParams {
				t.Errorf("got (%q, %q), want (%q, %q)", got.Key, got.Params, tt.wantKey, tt.wantParams)
			}
		})
	}
}

func TestParse_CustomSearchCues(t *testing.T) {
	p := parser.New(nil, parser.WithSearchCues("lookup"))
	if got := p.Parse("open browser search cats"); got.Key != action.OpenBrowser {
		t.Errorf("default cue still active: got %q", got.Key)
	}
	if got := p.Parse("open browser lookup cats"); got.Key != action.GoogleSearch || got.Params != "cats" {
		t.Errorf("custom cue: got %+v", got)
	}
}

func TestParse_KeywordRules(t *testing.T) {
	// A lexicon that cannot match any of these inputs forces the rule path.
	lx := lexicon.MustNew(lexicon.Entry{Language: lang.English, Key: action.OpenApp, Phrases: []string{"launch"}})
	p := parser.New(lx)

	tests := []struct {
		input string
		want  action.Key
	}{
		{"please turn off the machine", action.Shutdown},
		{"reboot now", action.Restart},
		{"increase volume a bit", action.VolumeUp},
		{"what's today", action.Date},
		{"status check please", action.SystemStatus},
		{"shutdown and reboot", action.Shutdown}, // first rule wins
		{"nothing to see", action.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input)
			if got.Key != tt.want {
				t.Errorf("Key: got %q, want %q", got.Key, tt.want)
			}
			if got.Params != "" {
				t.Errorf("Params: got %q, want empty", got.Params)
			}
		})
	}
}

func TestParse_PhrasesMatchWholeWords(t *testing.T) {
	p := parser.New(nil)

	tests := []struct {
		input   string
		wantKey action.Key
		notKey  action.Key
	}{
		{"open chrome", action.OpenApp, action.OpenHome},
		{"open desktops", action.OpenApp, action.OpenDesktop},
		{"homework", action.Unknown, action.OpenHome},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := p.Parse(tt.input)
			if got.Key == tt.notKey {
				t.Fatalf("Parse(%q) matched inside a word: %q", tt.input, got.Key)
			}
			if got.Key != tt.wantKey {
				t.Errorf("Key: got %q, want %q", got.Key, tt.wantKey)
			}
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	p := parser.New(nil)
	for _, input := range []string{"chrome kholo", "open browser and search cats", "xyzzy", "ko ko ko kholo ko ko"} {
		a, b := p.Parse(input), p.Parse(input)
		if a != b {
			t.Errorf("Parse(%q) not idempotent: %+v vs %+v", input, a, b)
		}
	}
}

func TestParse_ConnectorOnlyParamsAreEmpty(t *testing.T) {
	p := parser.New(nil)
	got := p.Parse("ko ko ko kholo ko ko ko ko")
	if got.Key != action.OpenApp {
		t.Fatalf("Key: got %q, want %q", got.Key, action.OpenApp)
	}
	if got.Params != "" {
		t.Errorf("Params: got %q, want empty", got.Params)
	}
}
