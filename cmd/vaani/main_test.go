package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/parser"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("vaani %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestParseCmd(t *testing.T) {
	var got parser.ParsedCommand
	if err := json.Unmarshal([]byte(run(t, "parse", "chrome", "kholo")), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Key != action.OpenApp || got.Params != "chrome" {
		t.Errorf("got %+v, want open_app with params chrome", got)
	}
}

func TestAutomationCmd_SeedThenList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "vaani.db")
	if out := run(t, "automation", "seed", "--db", db); !strings.Contains(out, "Seeded 3 tasks and 2 macros") {
		t.Errorf("seed: got %q", out)
	}
	out := run(t, "automation", "list", "--db", db)
	for _, want := range []string{"Good Morning", "Work Mode", `voice "work mode"`} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestLogCmd_Empty(t *testing.T) {
	out := run(t, "log", "--db", filepath.Join(t.TempDir(), "vaani.db"))
	if !strings.HasPrefix(out, "TIME") {
		t.Errorf("got %q, want header only", out)
	}
}

func TestExecCmd_RecordsInLog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "vaani.db")
	t.Setenv("VAANI_DB_PATH", db)
	t.Setenv("FALLBACK_API_KEY", "")
	t.Setenv("MATRIX_HOMESERVER", "")

	var res action.Result
	if err := json.Unmarshal([]byte(run(t, "exec", "volume", "up")), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success || res.Key != action.VolumeUp {
		t.Errorf("exec: got %+v", res)
	}
	if out := run(t, "log", "--db", db); !strings.Contains(out, "volume up") {
		t.Errorf("log missing the command:\n%s", out)
	}
}
