package launcher

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/steamdex/internal/models"
)

type recorder struct {
	cmds []*exec.Cmd
	err  error
}

func (r *recorder) start(cmd *exec.Cmd) error {
	r.cmds = append(r.cmds, cmd)
	return r.err
}

func TestLaunchNative(t *testing.T) {
	rec := &recorder{}
	err := Exec{Start: rec.start}.Launch(models.Game{ID: "440", Title: "TF2", IsNative: true})
	if err != nil {
		t.Fatal(err)
	}

	if len(rec.cmds) != 1 {
		t.Fatalf("started %d commands", len(rec.cmds))
	}
	args := rec.cmds[0].Args
	if args[len(args)-1] != "steam://rungameid/440" {
		t.Fatalf("args = %v", args)
	}
}

func TestLaunchShortcut(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "game.exe")
	if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	if err := (Exec{Start: rec.start}).Launch(models.Game{ID: "nonsteam_1", Title: "Emu", InstallPath: exe}); err != nil {
		t.Fatal(err)
	}

	cmd := rec.cmds[0]
	if cmd.Path != exe || cmd.Dir != dir {
		t.Fatalf("cmd path=%q dir=%q", cmd.Path, cmd.Dir)
	}
}

func TestLaunchFailures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		game models.Game
		err  error
	}{
		{"missing exe", models.Game{Title: "Gone", InstallPath: filepath.Join(dir, "gone.exe")}, nil},
		{"empty path", models.Game{Title: "Empty"}, nil},
		{"directory", models.Game{Title: "Dir", InstallPath: dir}, nil},
		{"start error", models.Game{Title: "Native", ID: "1", IsNative: true}, errors.New("no handler")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{err: tt.err}
			err := Exec{Start: rec.start}.Launch(tt.game)
			if !errors.Is(err, ErrLaunchFailed) {
				t.Fatalf("err = %v", err)
			}
			if !strings.Contains(err.Error(), tt.game.Title) {
				t.Errorf("error %q does not name the game", err)
			}
		})
	}
}
