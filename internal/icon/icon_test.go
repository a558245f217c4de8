package icon

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sergeymakinen/go-ico"
)

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestResolveNothingFound(t *testing.T) {
	r := &Resolver{SteamRoot: t.TempDir()}
	if got := r.Resolve("10", t.TempDir(), filepath.Join(t.TempDir(), "missing")); got != "" {
		t.Fatalf("Resolve() = %q, want empty", got)
	}
	if got := r.Resolve("", "", ""); got != "" {
		t.Fatalf("Resolve() with empty inputs = %q", got)
	}
}

func TestResolvePriority(t *testing.T) {
	lib := t.TempDir()
	install := filepath.Join(lib, "common", "Game")
	root := t.TempDir()
	r := &Resolver{SteamRoot: root}

	cache := touch(t, root, "appcache", "librarycache", "10", "abc", "header.jpg")
	if got := r.Resolve("10", lib, install); got != cache {
		t.Fatalf("librarycache probe: got %q, want %q", got, cache)
	}

	prefixed := touch(t, lib, "10_hero.png")
	if got := r.Resolve("10", lib, install); got != prefixed {
		t.Fatalf("prefixed probe: got %q, want %q", got, prefixed)
	}

	deep := touch(t, install, "data", "ui", "logo.png")
	if got := r.Resolve("10", lib, install); got != deep {
		t.Fatalf("install search: got %q, want %q", got, deep)
	}

	named := touch(t, install, "Game.ico")
	if got := r.Resolve("10", lib, install); got != named {
		t.Fatalf("install name probe: got %q, want %q", got, named)
	}

	direct := touch(t, lib, "10.ico")
	if got := r.Resolve("10", lib, install); got != direct {
		t.Fatalf("library probe: got %q, want %q", got, direct)
	}
}

func TestResolveDepthBound(t *testing.T) {
	install := t.TempDir()
	touch(t, install, "a", "b", "c", "too-deep.png")

	r := &Resolver{}
	if got := r.Resolve("1", "", install); got != "" {
		t.Fatalf("image below depth cap found: %q", got)
	}

	within := touch(t, install, "a", "b", "ok.ico")
	if got := r.Resolve("1", "", install); got != within {
		t.Fatalf("got %q, want %q", got, within)
	}
}

func TestResizeOptimizer(t *testing.T) {
	src := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, src, 800, 400)

	o := &ResizeOptimizer{Dir: filepath.Join(t.TempDir(), "icons"), MaxSize: 384}
	dst := o.Optimize(src, "nonsteam_00ff")
	if dst != filepath.Join(o.Dir, "optimized_nonsteam_00ff.png") {
		t.Fatalf("Optimize() = %q", dst)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(f)
	_ = f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 384 || cfg.Height != 192 {
		t.Fatalf("optimized size = %dx%d, want 384x192", cfg.Width, cfg.Height)
	}

	// cached copy is reused while newer than the source
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, old, old); err != nil {
		t.Fatal(err)
	}
	before, _ := os.Stat(dst)
	if again := o.Optimize(src, "nonsteam_00ff"); again != dst {
		t.Fatalf("second Optimize() = %q", again)
	}
	after, _ := os.Stat(dst)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("cached copy was rewritten")
	}
}

func TestResizeOptimizerFallback(t *testing.T) {
	src := touch(t, t.TempDir(), "broken.ico")
	o := &ResizeOptimizer{Dir: t.TempDir()}

	if got := o.Optimize(src, "10"); got != src {
		t.Fatalf("undecodable source: got %q, want original", got)
	}
	if got := o.Optimize("/does/not/exist.png", "10"); got != "/does/not/exist.png" {
		t.Fatalf("missing source: got %q", got)
	}
}

func TestResolverUsesOptimizer(t *testing.T) {
	lib := t.TempDir()
	writePNG(t, filepath.Join(lib, "42_cover.png"), 64, 64)

	o := &ResizeOptimizer{Dir: t.TempDir()}
	r := &Resolver{Optimizer: o}

	got := r.Resolve("42", lib, "")
	if got != o.Path("", "42") {
		t.Fatalf("Resolve() = %q, want optimized copy", got)
	}
}

func TestResizeOptimizerICO(t *testing.T) {
	src := filepath.Join(t.TempDir(), "70.ico")
	img := image.NewNRGBA(image.Rect(0, 0, 256, 256))
	for x := 0; x < 256; x++ {
		img.Set(x, x, color.NRGBA{G: 180, A: 255})
	}

	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := ico.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	o := &ResizeOptimizer{Dir: t.TempDir(), MaxSize: 64}
	dst := o.Optimize(src, "70")
	if dst != o.Path(src, "70") {
		t.Fatalf("Optimize() = %q, want optimized copy", dst)
	}

	out, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(out)
	_ = out.Close()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Fatalf("optimized size = %dx%d, want 64x64", cfg.Width, cfg.Height)
	}
}

func TestResizeOptimizerConcurrent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "cover.png")
	writePNG(t, src, 512, 512)

	o := &ResizeOptimizer{Dir: t.TempDir()}
	want := o.Path(src, "220")

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.Optimize(src, "220")
		}()
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("writer %d got %q", i, got)
		}
	}

	entries, err := os.ReadDir(o.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(want) {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("icon dir holds %v", names)
	}
}
