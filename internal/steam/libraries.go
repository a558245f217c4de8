package steam

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/vdf"
)

// LibraryIndexFile lists additional library folders.
const LibraryIndexFile = "libraryfolders.vdf"

// Libraries returns the library directories (each a .../steamapps folder)
// managed by the installation at root, the root library first.
// A missing or malformed index yields the root library only.
func Libraries(root string) []string {
	if root == "" {
		return nil
	}

	var (
		libs []string
		seen = make(map[string]struct{})
	)

	add := func(lib string) {
		key := pathKey(lib)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		libs = append(libs, lib)
	}

	rootLib := filepath.Join(root, AppsDir)
	if !isDir(rootLib) {
		return nil
	}
	add(rootLib)

	indexPath := filepath.Join(rootLib, LibraryIndexFile)
	doc, err := vdf.ParseFile(indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", indexPath).Msg("Failed to read library index")
		}
		return libs
	}

	for _, candidate := range libraryCandidates(doc) {
		lib := filepath.Join(candidate, AppsDir)
		if !isDir(lib) {
			log.Debug().Str("path", candidate).Msg("Skipping library without steamapps")
			continue
		}
		add(lib)
	}

	return libs
}

// libraryCandidates collects library roots from both index layouts:
// the legacy one with plain `"1" "D:\\Games"` leaves and the current one
// with nested blocks carrying a "path" entry.
func libraryCandidates(doc *vdf.Node) []string {
	block, ok := doc.Child("libraryfolders")
	if !ok || block.IsLeaf() {
		return nil
	}

	var out []string
	for _, key := range block.Keys() {
		entry, _ := block.Child(key)
		if entry.IsLeaf() {
			// TimeNextStatsReport and ContentStatsID share this level
			if v := entry.Value(); filepath.IsAbs(v) {
				out = append(out, v)
			}
			continue
		}

		if p := entry.String("path"); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func pathKey(p string) string {
	p = filepath.Clean(p)
	if runtime.GOOS == "windows" {
		return strings.ToLower(p)
	}

	return p
}
