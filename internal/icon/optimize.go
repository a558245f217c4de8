package icon

import (
	"fmt"
	"image"
	_ "image/gif"  // decoder
	_ "image/jpeg" // decoder
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
	_ "github.com/sergeymakinen/go-ico" // decoder
	_ "golang.org/x/image/bmp"          // decoder
	_ "golang.org/x/image/webp" // decoder
)

// DefaultMaxSize bounds the longest side of optimized icons, in pixels.
const DefaultMaxSize = 384

// OptimizedPrefix starts the file name of every optimized copy.
const OptimizedPrefix = "optimized_"

// ResizeOptimizer writes downscaled PNG copies of icons into Dir.
type ResizeOptimizer struct {
	Dir     string
	MaxSize uint
}

// Optimize returns the path of a PNG copy of src bounded to MaxSize on both
// sides with the aspect ratio kept. The copy is named after id and reused
// while it is newer than src. On any failure src is returned.
func (o *ResizeOptimizer) Optimize(src, id string) string {
	if src == "" || o.Dir == "" {
		return src
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return src
	}

	dst := o.Path(src, id)
	if info, err := os.Stat(dst); err == nil && info.ModTime().After(srcInfo.ModTime()) {
		return dst
	}

	if err := o.write(src, dst); err != nil {
		log.Debug().Err(err).Str("src", src).Msg("Icon optimization skipped")
		return src
	}

	return dst
}

// Path returns where the optimized copy for id (or src when id is empty) lives.
func (o *ResizeOptimizer) Path(src, id string) string {
	name := id
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}

	return filepath.Join(o.Dir, OptimizedPrefix+sanitize(name)+".png")
}

func (o *ResizeOptimizer) write(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	size := o.MaxSize
	if size == 0 {
		size = DefaultMaxSize
	}

	b := img.Bounds()
	if uint(b.Dx()) > size || uint(b.Dy()) > size {
		img = resize.Thumbnail(size, size, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return err
	}

	// one temp file per writer, the same id may be optimized concurrently
	out, err := os.CreateTemp(o.Dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	tmp := out.Name()

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(out, img); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
