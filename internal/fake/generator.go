// Package fake writes a synthetic Steam installation tree for development and tests.
package fake

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/shortcuts"
	"github.com/woozymasta/steamdex/internal/steam"
	"github.com/woozymasta/steamdex/internal/vdf"
)

// SecondLibrary is the directory, relative to the root, of the extra library folder.
const SecondLibrary = "SteamLibrary"

// UserID is the userdata account folder holding the generated shortcuts.
const UserID = "12345678"

var titles = []string{
	"Half-Life", "Half-Life 2", "Portal", "Portal 2", "Halo: The Master Chief Collection",
	"Left 4 Dead 2", "Team Fortress 2", "DayZ", "Arma 3", "Counter-Strike 2",
	"Stardew Valley", "Terraria", "Hades", "Celeste", "Factorio",
	"Rimworld", "Subnautica", "Hollow Knight", "Dota 2", "Garry's Mod",
}

var nonSteam = []string{"Emulator Station", "Retro Arcade", "Indie Jam Build"}

// Summary describes what GenerateLibrary wrote.
type Summary struct {
	Root      string
	Libraries []string
	Manifests int
	Shortcuts int
}

// GenerateLibrary populates root with count app manifests spread over two
// library folders, a libraryfolders.vdf index and a per-user shortcuts.vdf
// whose executables exist on disk. A fixed seed keeps the output stable.
func GenerateLibrary(root string, count int) (Summary, error) {
	rnd := rand.New(rand.NewSource(int64(count)))
	now := time.Now()

	libs := []string{
		filepath.Join(root, steam.AppsDir),
		filepath.Join(root, SecondLibrary, steam.AppsDir),
	}
	for _, lib := range libs {
		if err := os.MkdirAll(filepath.Join(lib, steam.GamesDir), 0o755); err != nil {
			return Summary{}, err
		}
	}

	index := vdf.NewBlock()
	folders := vdf.NewBlock()
	for i, lib := range libs {
		entry := vdf.NewBlock()
		entry.SetValue("path", filepath.Dir(lib))
		entry.SetValue("label", "")
		folders.Set(strconv.Itoa(i), entry)
	}
	index.Set("libraryfolders", folders)
	if err := os.WriteFile(filepath.Join(libs[0], steam.LibraryIndexFile), vdf.Marshal(index), 0o644); err != nil {
		return Summary{}, err
	}

	for i := 0; i < count; i++ {
		appID := 10 + i*10
		title := titles[i%len(titles)]
		if i >= len(titles) {
			title = fmt.Sprintf("%s #%d", title, i/len(titles)+1)
		}

		lib := libs[i%len(libs)]
		installDir := strings.NewReplacer(":", "", "'", "").Replace(title)

		// 1 in 4 never played, others within the last 60 days
		var lastPlayed int64
		if rnd.Intn(4) != 0 {
			lastPlayed = now.Add(-time.Duration(rnd.Intn(60*24)) * time.Hour).Unix()
		}

		app := vdf.NewBlock()
		app.SetValue("appid", strconv.Itoa(appID))
		app.SetValue("Universe", "1")
		app.SetValue("name", title)
		app.SetValue("StateFlags", "4")
		app.SetValue("installdir", installDir)
		app.SetValue("LastPlayed", strconv.FormatInt(lastPlayed, 10))
		app.SetValue("PlaytimeForever", strconv.Itoa(rnd.Intn(6000)))
		doc := vdf.NewBlock()
		doc.Set("AppState", app)

		manifest := filepath.Join(lib, fmt.Sprintf("appmanifest_%d.acf", appID))
		if err := os.WriteFile(manifest, vdf.Marshal(doc), 0o644); err != nil {
			return Summary{}, err
		}

		if err := os.MkdirAll(filepath.Join(lib, steam.GamesDir, installDir), 0o755); err != nil {
			return Summary{}, err
		}
	}

	var list []shortcuts.Shortcut
	for _, name := range nonSteam {
		dir := filepath.Join(root, "nonsteam", strings.ReplaceAll(name, " ", ""))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, err
		}

		exe := filepath.Join(dir, "game.exe")
		if err := os.WriteFile(exe, []byte("MZ"), 0o755); err != nil {
			return Summary{}, err
		}
		list = append(list, shortcuts.Shortcut{Name: name, Exe: exe})
	}

	cfgDir := filepath.Join(root, "userdata", UserID, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return Summary{}, err
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "shortcuts.vdf"), shortcuts.Encode(list), 0o644); err != nil {
		return Summary{}, err
	}

	log.Info().
		Str("root", root).
		Int("manifests", count).
		Int("shortcuts", len(list)).
		Msg("Fake Steam library generated")

	return Summary{Root: root, Libraries: libs, Manifests: count, Shortcuts: len(list)}, nil
}
