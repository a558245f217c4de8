// Package icon finds an icon image for a game and optionally produces a downscaled copy.
package icon

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxDepth is how deep below the install directory images are searched.
const DefaultMaxDepth = 2

var (
	imageExts = []string{".ico", ".png", ".jpg", ".jpeg"}

	// file names the Steam client drops into appcache/librarycache/<appid>
	cacheNames = []string{"logo.png", "icon.png", "header.jpg", "library_600x900.jpg"}
)

// Optimizer turns a source image into a display-ready copy.
// Implementations return src unchanged on any failure.
type Optimizer interface {
	Optimize(src, id string) string
}

// Resolver probes the known icon locations for a game.
type Resolver struct {
	// Optimizer is optional; without it the found file is returned as is.
	Optimizer Optimizer

	// SteamRoot enables the librarycache probe.
	SteamRoot string

	MaxDepth int
}

// Resolve returns the first icon found for id, or "" when every probe misses.
// Probes run in a fixed order: <library>/<id>.ico, well-known names inside the
// install dir followed by a bounded search of it, files in the library prefixed
// by id, and finally the Steam librarycache entry for id.
func (r *Resolver) Resolve(id, libraryPath, installPath string) string {
	path := r.find(id, libraryPath, installPath)
	if path == "" || r.Optimizer == nil {
		return path
	}

	return r.Optimizer.Optimize(path, id)
}

func (r *Resolver) find(id, libraryPath, installPath string) string {
	if libraryPath != "" && id != "" {
		if p := filepath.Join(libraryPath, id+".ico"); isFile(p) {
			return p
		}
	}

	if installPath != "" && isDir(installPath) {
		names := []string{"icon.ico", "game.ico", filepath.Base(installPath) + ".ico"}
		for _, name := range names {
			if p := filepath.Join(installPath, name); isFile(p) {
				return p
			}
		}

		if p := r.searchImages(installPath); p != "" {
			return p
		}
	}

	if libraryPath != "" && id != "" {
		if p := prefixedImage(libraryPath, id); p != "" {
			return p
		}
	}

	if r.SteamRoot != "" && id != "" {
		if p := cachedImage(filepath.Join(r.SteamRoot, "appcache", "librarycache", id)); p != "" {
			return p
		}
	}

	return ""
}

// searchImages walks root breadth-first, at most MaxDepth levels below it,
// and returns the first image file found.
func (r *Resolver) searchImages(root string) string {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	level := []string{root}
	for depth := 0; depth <= maxDepth && len(level) > 0; depth++ {
		var next []string
		for _, dir := range level {
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}

			for _, e := range entries {
				p := filepath.Join(dir, e.Name())
				if e.IsDir() {
					next = append(next, p)
					continue
				}
				if isImage(e.Name()) {
					return p
				}
			}
		}
		level = next
	}

	return ""
}

func prefixedImage(dir, id string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), id) && isImage(e.Name()) {
			return filepath.Join(dir, e.Name())
		}
	}

	return ""
}

// cachedImage checks dir and its direct subdirectories for the librarycache file names.
func cachedImage(dir string) string {
	if !isDir(dir) {
		return ""
	}

	dirs := []string{dir}
	if entries, err := os.ReadDir(dir); err == nil {
		var subs []string
		for _, e := range entries {
			if e.IsDir() {
				subs = append(subs, filepath.Join(dir, e.Name()))
			}
		}
		sort.Strings(subs)
		dirs = append(dirs, subs...)
	}

	for _, d := range dirs {
		for _, name := range cacheNames {
			if p := filepath.Join(d, name); isFile(p) {
				return p
			}
		}
	}

	return ""
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}

	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
