package atlas

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion is bumped whenever the cell layout or encoding changes.
const cacheVersion = 1

// cacheExt is the file extension of cache entries.
const cacheExt = ".sdfatlas.msgpack.zst"

// DiskCache stores generated atlases so identical requests skip
// rasterization and distance field computation.
//
// Entries are keyed by the font bytes, the rasterizer backend and the
// effective configuration; they are msgpack encoded and zstd compressed.
type DiskCache struct {
	dir string
}

// NewDiskCache returns a cache rooted at dir. The directory is created
// on first store.
func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

// DefaultCacheDir returns the per-user cache directory for atlases.
func DefaultCacheDir() (string, error) {
	cd, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, "sdftext", "atlas"), nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

// cacheEntry is the serialized form of a FontAtlas.
type cacheEntry struct {
	Version    int                 `msgpack:"version"`
	Family     string              `msgpack:"family"`
	PixelSize  float64             `msgpack:"pixel_size"`
	Size       int                 `msgpack:"size"`
	Spread     int                 `msgpack:"spread"`
	LineHeight float32             `msgpack:"line_height"`
	Ascender   float32             `msgpack:"ascender"`
	Descender  float32             `msgpack:"descender"`
	Runes      []rune              `msgpack:"runes"`
	Glyphs     map[int32]GlyphInfo `msgpack:"glyphs"`
	Pixels     []byte              `msgpack:"pixels"`
}

// key derives the cache key of an atlas request.
func cacheKey(fontData []byte, source string, cfg Config, charset []rune) string {
	h := xxhash.New()
	_, _ = h.Write(fontData)
	_, _ = h.WriteString(source)

	var buf [8]byte
	writeInt := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	writeInt(cacheVersion)
	writeInt(math.Float64bits(cfg.PixelSize))
	writeInt(uint64(cfg.AtlasSize)) //nolint:gosec // validated positive
	writeInt(uint64(cfg.Spread))    //nolint:gosec // validated positive
	writeInt(uint64(cfg.Padding))   //nolint:gosec // validated non-negative
	for _, r := range charset {
		writeInt(uint64(r)) //nolint:gosec // codepoints are non-negative
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+cacheExt)
}

// Load returns the atlas stored under key, or ErrCacheMiss. The returned
// atlas has no texture.
func (c *DiskCache) Load(key string) (*FontAtlas, error) {
	f, err := os.Open(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("atlas: cache reader: %w", err)
	}
	defer zr.Close()

	var e cacheEntry
	if err := msgpack.NewDecoder(zr).Decode(&e); err != nil {
		return nil, fmt.Errorf("atlas: decode cache entry: %w", err)
	}
	if e.Version != cacheVersion || e.Size <= 0 || len(e.Pixels) != e.Size*e.Size {
		return nil, ErrCacheMiss
	}

	a := &FontAtlas{
		family:     e.Family,
		pixelSize:  e.PixelSize,
		size:       e.Size,
		spread:     e.Spread,
		pixels:     e.Pixels,
		glyphs:     make(map[rune]GlyphInfo, len(e.Glyphs)),
		runes:      e.Runes,
		lineHeight: e.LineHeight,
		ascender:   e.Ascender,
		descender:  e.Descender,
	}
	for r, g := range e.Glyphs {
		a.glyphs[r] = g
	}
	return a, nil
}

// Store writes a under key. The entry is written to a temporary file and
// renamed into place so readers never see a partial entry.
func (c *DiskCache) Store(key string, a *FontAtlas) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	e := cacheEntry{
		Version:    cacheVersion,
		Family:     a.family,
		PixelSize:  a.pixelSize,
		Size:       a.size,
		Spread:     a.spread,
		LineHeight: a.lineHeight,
		Ascender:   a.ascender,
		Descender:  a.descender,
		Runes:      a.runes,
		Glyphs:     make(map[int32]GlyphInfo, len(a.glyphs)),
		Pixels:     a.pixels,
	}
	for r, g := range a.glyphs {
		e.Glyphs[r] = g
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	zw, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("atlas: cache writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(&e); err != nil {
		zw.Close()
		tmp.Close()
		return fmt.Errorf("atlas: encode cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}
