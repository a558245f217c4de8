package vars

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	saved := Commit
	defer func() { Commit = saved }()

	Commit = "da15c174cd2ada1ad247906536c101e8f6799def"
	i := Info()
	if i.CommitShort != "da15c17" || i.Commit != Commit {
		t.Errorf("commit = %q / %q", i.Commit, i.CommitShort)
	}
	if i.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("platform = %q", i.Platform)
	}

	Commit = "abc"
	if got := Info().CommitShort; got != "abc" {
		t.Errorf("short commit of short sha = %q", got)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf)

	out := buf.String()
	for _, want := range []string{"name:     " + Name, "version:  " + Version, "platform: " + runtime.GOOS, "license:  " + License} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
