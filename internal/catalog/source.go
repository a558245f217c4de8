package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/steamdex/internal/models"
	"github.com/woozymasta/steamdex/internal/scanner"
	"github.com/woozymasta/steamdex/internal/steam"
)

// SteamSource returns a ScanFunc that locates the installation, lists its
// libraries and scans them. A missing installation is reported as an error
// wrapping steam.ErrNotFound, an interrupted scan as the context error.
func SteamSource(locator steam.Locator, s *scanner.Scanner) ScanFunc {
	return func(ctx context.Context) ([]models.Game, error) {
		root, err := locator.Locate()
		if err != nil {
			return nil, fmt.Errorf("locate steam: %w", err)
		}

		libs := steam.Libraries(root)
		log.Debug().Str("root", root).Strs("libraries", libs).Msg("Scanning Steam libraries")

		games := s.Scan(ctx, root, libs)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan libraries: %w", err)
		}

		return games, nil
	}
}
