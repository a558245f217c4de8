// Package steam finds the Steam installation and the library folders it manages.
package steam

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// AppsDir is the library subdirectory holding manifests; GamesDir sits below it.
const (
	AppsDir  = "steamapps"
	GamesDir = "common"
)

// ErrNotFound is returned when no Steam installation could be located.
var ErrNotFound = errors.New("steam installation not found")

// Locator resolves the Steam installation root.
type Locator interface {
	Locate() (string, error)
}

// PathLocator checks an explicit override, the registry on Windows and
// finally the usual per-OS install locations.
type PathLocator struct {
	// Override is used as-is when set; it still has to hold a steamapps directory.
	Override string

	// Candidates replaces the built-in list of common paths when non-nil.
	Candidates []string
}

// Locate returns the first directory that looks like a Steam installation.
func (l PathLocator) Locate() (string, error) {
	if l.Override != "" {
		if IsInstall(l.Override) {
			return l.Override, nil
		}
		log.Warn().Str("path", l.Override).Msg("Configured Steam path has no steamapps directory")
		return "", ErrNotFound
	}

	if path, ok := registryInstallPath(); ok && IsInstall(path) {
		return path, nil
	}

	candidates := l.Candidates
	if candidates == nil {
		candidates = commonPaths()
	}

	for _, path := range candidates {
		if path != "" && IsInstall(path) {
			return path, nil
		}
	}

	return "", ErrNotFound
}

// IsInstall reports whether root holds a steamapps directory.
func IsInstall(root string) bool {
	return isDir(filepath.Join(root, AppsDir))
}

func commonPaths() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Steam"),
			filepath.Join(os.Getenv("ProgramFiles"), "Steam"),
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		}
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Steam"),
		}
	default:
		return []string{
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
