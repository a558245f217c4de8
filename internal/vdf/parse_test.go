package vdf

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseAppState(t *testing.T) {
	root, err := Parse([]byte(`"AppState"{"appid" "10"  "name" "Half-Life"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	app, ok := root.Child("AppState")
	if !ok {
		t.Fatal("AppState block missing")
	}
	if got := app.String("appid"); got != "10" {
		t.Errorf("appid = %q, want %q", got, "10")
	}
	if got := app.String("name"); got != "Half-Life" {
		t.Errorf("name = %q, want %q", got, "Half-Life")
	}
}

func TestParseManifestLayout(t *testing.T) {
	src := `// written by steam
"AppState"
{
	"appid"		"620"
	"name"		"Portal 2"
	"installdir"		"Portal 2"
	"LastPlayed"		"1700000000"
	"PlaytimeForever"	"95"
	"UserConfig"
	{
		"language"		"english"
	}
}
`
	root, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	app, _ := root.Child("appstate")
	if app.Int("LastPlayed") != 1700000000 {
		t.Errorf("LastPlayed = %d", app.Int("LastPlayed"))
	}
	if app.Int("PlaytimeForever") != 95 {
		t.Errorf("PlaytimeForever = %d", app.Int("PlaytimeForever"))
	}
	cfg, ok := app.Child("UserConfig")
	if !ok || cfg.IsLeaf() {
		t.Fatal("UserConfig should be a block")
	}
	if cfg.String("language") != "english" {
		t.Errorf("language = %q", cfg.String("language"))
	}
	if app.Int("missing") != 0 || app.Int("name") != 0 {
		t.Error("missing or non-numeric values must read as 0")
	}
}

func TestParseEscapes(t *testing.T) {
	root, err := Parse([]byte(`"a" "say \"hi\"" "path" "D:\\Steam\\Library" "raw" "C:\dir"`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := root.String("a"); got != `say "hi"` {
		t.Errorf("a = %q", got)
	}
	if got := root.String("path"); got != `D:\Steam\Library` {
		t.Errorf("path = %q", got)
	}
	if got := root.String("raw"); got != `C:\dir` {
		t.Errorf("raw = %q", got)
	}
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	root, err := Parse([]byte(`"k" "1" "other" "x" "k" "2"`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := root.String("k"); got != "2" {
		t.Errorf("k = %q, want 2", got)
	}
	if !reflect.DeepEqual(root.Keys(), []string{"k", "other"}) {
		t.Errorf("keys = %v", root.Keys())
	}
}

func TestParseBareTokensAndConditionals(t *testing.T) {
	root, err := Parse([]byte("key value [$WIN32]\nblock [$LINUX] { inner 5 }"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if root.String("key") != "value" {
		t.Errorf("key = %q", root.String("key"))
	}
	b, ok := root.Child("block")
	if !ok || b.Int("inner") != 5 {
		t.Errorf("block = %+v", b)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
	}{
		{"unterminated quote", `"a" "bc`, 4},
		{"unclosed block", `"a" {  "b" "c"`, 4},
		{"stray close", `"a" "b" }`, 8},
		{"missing value", `"a" { "b" }`, 6},
		{"block without key", `{ "a" "b" }`, 0},
		{"key at eof", `"a"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v does not match ErrMalformed", err)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error %T is not *SyntaxError", err)
			}
			if se.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", se.Offset, tt.offset)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	docs := []string{
		`"AppState"{"appid" "10"  "name" "Half-Life"}`,
		`"libraryfolders" { "0" { "path" "C:\\Program Files (x86)\\Steam" "apps" { "10" "123" } } "1" "E:\\Games" }`,
		`"q" "with \"quotes\" and \\ slash" "empty" ""`,
	}

	for _, doc := range docs {
		first, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", doc, err)
		}

		second, err := Parse(Marshal(first))
		if err != nil {
			t.Fatalf("re-parse error = %v\n%s", err, Marshal(first))
		}

		if !reflect.DeepEqual(first.Leaves(), second.Leaves()) {
			t.Errorf("leaves differ:\n%v\n%v", first.Leaves(), second.Leaves())
		}
	}
}
