package raster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func openBoth(t *testing.T, ref FontRef, size float64) map[string]Face {
	t.Helper()
	res := NewResolver(WithSystemFonts(false))
	faces := map[string]Face{}
	for name, src := range map[string]Source{"ximage": NewXImage(res), "gotext": NewGoText(res)} {
		f, err := src.Open(ref, size)
		if err != nil {
			t.Fatalf("%s: Open(%v) failed: %v", name, ref, err)
		}
		t.Cleanup(func() { _ = f.Close() })
		faces[name] = f
	}
	return faces
}

func TestRasterizeLetter(t *testing.T) {
	for name, face := range openBoth(t, Family("Go"), 32) {
		g, err := face.Rasterize('H')
		if err != nil {
			t.Fatalf("%s: Rasterize('H') failed: %v", name, err)
		}
		if g.Width() <= 0 || g.Height() <= 0 {
			t.Errorf("%s: expected non-empty mask, got %dx%d", name, g.Width(), g.Height())
		}
		if g.Advance <= 0 {
			t.Errorf("%s: expected positive advance, got %v", name, g.Advance)
		}
		if g.BearingY <= 0 || g.BearingY > 32 {
			t.Errorf("%s: expected cap height bearing in (0, 32], got %d", name, g.BearingY)
		}
		covered := 0
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				if g.Covered(x, y) {
					covered++
				}
			}
		}
		if covered == 0 {
			t.Errorf("%s: mask has no covered pixels", name)
		}
	}
}

func TestRasterizeSpace(t *testing.T) {
	for name, face := range openBoth(t, Family("Go"), 24) {
		g, err := face.Rasterize(' ')
		if err != nil {
			t.Fatalf("%s: Rasterize(' ') failed: %v", name, err)
		}
		if g.Width() != 0 || g.Height() != 0 {
			t.Errorf("%s: expected empty mask for space, got %dx%d", name, g.Width(), g.Height())
		}
		if g.Advance <= 0 {
			t.Errorf("%s: expected space to advance, got %v", name, g.Advance)
		}
	}
}

func TestRasterizeMissingGlyph(t *testing.T) {
	for name, face := range openBoth(t, Family("Go"), 24) {
		// Private use area; the Go fonts do not map it.
		_, err := face.Rasterize('\uE000')
		if !errors.Is(err, ErrGlyphNotFound) {
			t.Errorf("%s: expected ErrGlyphNotFound, got %v", name, err)
		}
	}
}

func TestBackendsAgreeOnAdvance(t *testing.T) {
	faces := openBoth(t, Family("Go Mono"), 20)
	for _, r := range "AbgW1" {
		a, err := faces["ximage"].Rasterize(r)
		if err != nil {
			t.Fatal(err)
		}
		b, err := faces["gotext"].Rasterize(r)
		if err != nil {
			t.Fatal(err)
		}
		// Hinting rounds x/image advances to whole pixels.
		if d := a.Advance - b.Advance; d > 1 || d < -1 {
			t.Errorf("%q: advances differ: ximage %v, gotext %v", r, a.Advance, b.Advance)
		}
	}
}

func TestFaceMetrics(t *testing.T) {
	for name, face := range openBoth(t, Family("Go"), 40) {
		m := face.Metrics()
		if m.Ascender <= 0 {
			t.Errorf("%s: expected positive ascender, got %v", name, m.Ascender)
		}
		if m.Descender >= 0 {
			t.Errorf("%s: expected negative descender, got %v", name, m.Descender)
		}
		if m.LineHeight < m.Ascender-m.Descender-1 {
			t.Errorf("%s: line height %v smaller than ascender-descender %v", name, m.LineHeight, m.Ascender-m.Descender)
		}
	}
}

func TestResolverFamilies(t *testing.T) {
	res := NewResolver(WithSystemFonts(false))
	for _, fam := range []string{"Go", "go mono", "GO-MONO-BOLD", "Go_Smallcaps"} {
		if _, err := res.Load(Family(fam)); err != nil {
			t.Errorf("Load(%q) failed: %v", fam, err)
		}
	}
	for _, fam := range BuiltinFamilies() {
		if _, err := res.Load(Family(fam)); err != nil {
			t.Errorf("builtin family %q did not resolve: %v", fam, err)
		}
	}
}

func TestResolverNotFound(t *testing.T) {
	res := NewResolver(WithSystemFonts(false))

	_, err := res.Load(Family("No Such Family"))
	var fle *FontLoadError
	if !errors.As(err, &fle) {
		t.Fatalf("expected *FontLoadError, got %T (%v)", err, err)
	}
	if !errors.Is(err, ErrFontNotFound) {
		t.Errorf("expected ErrFontNotFound, got %v", err)
	}

	_, err = res.Load(File(filepath.Join(t.TempDir(), "missing.ttf")))
	if !errors.Is(err, ErrFontNotFound) {
		t.Errorf("expected ErrFontNotFound for missing file, got %v", err)
	}
}

func TestOpenFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goregular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o600); err != nil {
		t.Fatal(err)
	}
	face, err := NewXImage(NewResolver()).Open(File(path), 16)
	if err != nil {
		t.Fatalf("Open from file failed: %v", err)
	}
	defer face.Close()
	if face.Family() != "Go" {
		t.Errorf("expected family Go, got %q", face.Family())
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o600); err != nil {
		t.Fatal(err)
	}
	for name, src := range map[string]Source{"ximage": NewXImage(NewResolver()), "gotext": NewGoText(NewResolver())} {
		_, err := src.Open(File(path), 16)
		var fle *FontLoadError
		if !errors.As(err, &fle) {
			t.Errorf("%s: expected *FontLoadError, got %v", name, err)
		}
	}
}

func TestOpenInvalidSize(t *testing.T) {
	if _, err := Default().Open(Family("Go"), 0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	names := Sources()
	if len(names) < 2 || names[0] != "gotext" || names[1] != "ximage" {
		t.Errorf("unexpected registered sources %v", names)
	}
	if _, err := LookupSource("nope"); err == nil {
		t.Error("expected error for unknown source")
	}
	if Default() == nil {
		t.Error("Default() returned nil")
	}
}
