package lang_test

import (
	"testing"

	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   lang.Language
		wantOK bool
	}{
		{"en", lang.English, true},
		{" HI ", lang.Hindi, true},
		{"hindi", lang.Hindi, true},
		{"English", lang.English, true},
		{"fr", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := lang.Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOr(t *testing.T) {
	if got := lang.Language("xx").Or(lang.English); got != lang.English {
		t.Errorf("invalid falls back: got %q", got)
	}
	if got := lang.Hindi.Or(lang.English); got != lang.Hindi {
		t.Errorf("valid kept: got %q", got)
	}
}
