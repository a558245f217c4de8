// Package models defines the data structures shared by the scanner, the catalog and the adapters.
package models

import "fmt"

// SteamURIPrefix is the URI used by the Steam client to start a title by its app id.
const SteamURIPrefix = "steam://rungameid/"

// Game represents one launchable title found on the host.
// Values are immutable once the scanner produced them; a refresh replaces them wholesale.
type Game struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	InstallPath     string `json:"install_path"`
	IconPath        string `json:"icon_path"`
	LibraryPath     string `json:"library_path"`
	LastPlayed      int64  `json:"last_played"`
	PlaytimeMinutes int64  `json:"playtime_minutes"`
	IsNative        bool   `json:"is_native"`
}

// UnknownTitle returns the display title used when a manifest carries no name.
func UnknownTitle(id string) string {
	return fmt.Sprintf("Unknown Game (%s)", id)
}

// LaunchTarget returns what the process launcher has to open:
// the Steam URI for native titles or the executable path for shortcuts.
func (g Game) LaunchTarget() string {
	if g.IsNative {
		return SteamURIPrefix + g.ID
	}

	return g.InstallPath
}

// Kind returns a short human readable origin label.
func (g Game) Kind() string {
	if g.IsNative {
		return "Steam Game"
	}

	return "Non-Steam Game"
}
