package raster

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-text/typesetting/fontscan"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/text/cases"
)

// FontRef identifies a font by family name or by file path.
// Exactly one of Family and Path is set.
type FontRef struct {
	Family string
	Path   string
}

// Family returns a reference to an installed or built-in font family.
func Family(name string) FontRef {
	return FontRef{Family: name}
}

// File returns a reference to a font file on disk.
func File(path string) FontRef {
	return FontRef{Path: path}
}

// IsFile reports whether the reference names a file.
func (r FontRef) IsFile() bool {
	return r.Path != ""
}

func (r FontRef) String() string {
	if r.IsFile() {
		return r.Path
	}
	return fmt.Sprintf("%q", r.Family)
}

// key is the cache key of the reference.
func (r FontRef) key() string {
	if r.IsFile() {
		return "file:" + r.Path
	}
	return "family:" + foldFamily(r.Family)
}

// builtinFonts holds the Go font family, available without any system fonts.
var builtinFonts = map[string][]byte{
	foldFamily("Go"):           goregular.TTF,
	foldFamily("Go Regular"):   goregular.TTF,
	foldFamily("Go Bold"):      gobold.TTF,
	foldFamily("Go Italic"):    goitalic.TTF,
	foldFamily("Go Medium"):    gomedium.TTF,
	foldFamily("Go Mono"):      gomono.TTF,
	foldFamily("Go Mono Bold"): gomonobold.TTF,
	foldFamily("Go Smallcaps"): gosmallcaps.TTF,
}

// foldFamily normalizes a family name for matching: case folded, with
// spaces, hyphens and underscores removed.
func foldFamily(name string) string {
	name = cases.Fold().String(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, name)
}

// Resolver loads font file bytes for a FontRef. Built-in Go fonts are
// matched first, then installed system fonts. Loaded data is kept in an
// LRU cache.
//
// Resolver is safe for concurrent use.
type Resolver struct {
	cache *lru.Cache[string, []byte]

	useSystem  bool
	systemOnce sync.Once
	system     map[string]string // folded family -> file
	systemErr  error
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSystemFonts enables or disables lookup of installed system fonts.
// Enabled by default.
func WithSystemFonts(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.useSystem = enabled
	}
}

// defaultCacheSize is the number of font files kept in memory.
const defaultCacheSize = 16

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	cache, _ := lru.New[string, []byte](defaultCacheSize) // only fails for size <= 0
	r := &Resolver{cache: cache, useSystem: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	defaultResolverOnce sync.Once
	defaultResolver     *Resolver
)

// DefaultResolver returns the process-wide Resolver used by the built-in
// sources.
func DefaultResolver() *Resolver {
	defaultResolverOnce.Do(func() {
		defaultResolver = NewResolver()
	})
	return defaultResolver
}

// Load returns the raw font file for ref. Failures are *FontLoadError.
func (r *Resolver) Load(ref FontRef) ([]byte, error) {
	key := ref.key()
	if data, ok := r.cache.Get(key); ok {
		return data, nil
	}

	data, err := r.load(ref)
	if err != nil {
		return nil, &FontLoadError{Ref: ref, Err: err}
	}
	if len(data) == 0 {
		return nil, &FontLoadError{Ref: ref, Err: ErrEmptyFontData}
	}
	r.cache.Add(key, data)
	return data, nil
}

func (r *Resolver) load(ref FontRef) ([]byte, error) {
	if ref.IsFile() {
		data, err := os.ReadFile(ref.Path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", ErrFontNotFound, err)
		}
		return data, err
	}
	if ref.Family == "" {
		return nil, ErrFontNotFound
	}

	folded := foldFamily(ref.Family)
	if data, ok := builtinFonts[folded]; ok {
		return data, nil
	}
	if !r.useSystem {
		return nil, ErrFontNotFound
	}

	r.systemOnce.Do(r.scanSystem)
	if r.systemErr != nil {
		return nil, fmt.Errorf("%w: scan system fonts: %v", ErrFontNotFound, r.systemErr)
	}
	path, ok := r.system[folded]
	if !ok {
		return nil, ErrFontNotFound
	}
	return os.ReadFile(path)
}

// scanSystem indexes installed fonts by folded family name. The first
// file seen for a family wins.
func (r *Resolver) scanSystem() {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	footprints, err := fontscan.SystemFonts(nil, cacheDir)
	if err != nil {
		r.systemErr = err
		return
	}
	r.system = make(map[string]string, len(footprints))
	for _, fp := range footprints {
		k := foldFamily(fp.Family)
		if _, dup := r.system[k]; !dup {
			r.system[k] = fp.Location.File
		}
	}
}

// BuiltinFamilies lists the family names that resolve without system fonts.
func BuiltinFamilies() []string {
	return []string{"Go", "Go Bold", "Go Italic", "Go Medium", "Go Mono", "Go Mono Bold", "Go Smallcaps"}
}
