// Package launcher starts games: Steam titles through the client URI handler,
// shortcuts by running their executable directly.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/models"
)

// ErrLaunchFailed wraps every launch failure.
var ErrLaunchFailed = errors.New("could not launch")

// Launcher starts a game without waiting for it to exit.
type Launcher interface {
	Launch(g models.Game) error
}

// Exec launches through the operating system.
type Exec struct {
	// Start runs cmd without waiting; defaults to (*exec.Cmd).Start followed
	// by a detached Wait so the child is reaped.
	Start func(cmd *exec.Cmd) error
}

// Launch implements Launcher.
func (e Exec) Launch(g models.Game) error {
	cmd, err := command(g)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrLaunchFailed, g.Title, err)
	}

	start := e.Start
	if start == nil {
		start = startDetached
	}

	if err := start(cmd); err != nil {
		return fmt.Errorf("%w %s: %w", ErrLaunchFailed, g.Title, err)
	}

	log.Info().
		Str("id", g.ID).
		Str("title", g.Title).
		Str("target", g.LaunchTarget()).
		Msg("Game launched")

	return nil
}

// command builds the process that starts g.
func command(g models.Game) (*exec.Cmd, error) {
	if g.IsNative {
		return openURI(g.LaunchTarget()), nil
	}

	exe := g.InstallPath
	if exe == "" {
		return nil, errors.New("no executable path")
	}
	if info, err := os.Stat(exe); err != nil {
		return nil, err
	} else if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", exe)
	}

	cmd := exec.Command(exe)
	cmd.Dir = filepath.Dir(exe)
	return cmd, nil
}

// openURI hands uri to the desktop URI handler of the current OS.
func openURI(uri string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		// empty title argument, otherwise start treats the URI as the window title
		return exec.Command("cmd", "/c", "start", "", uri)
	case "darwin":
		return exec.Command("open", uri)
	default:
		return exec.Command("xdg-open", uri)
	}
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() { _ = cmd.Wait() }()
	return nil
}
