package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/export"
	"github.com/gogpu/sdftext/text"
)

// sceneFile is the TOML layout of a scene.
type sceneFile struct {
	Output outputSection `toml:"output"`
	Fonts  []fontSection `toml:"font"`
	Texts  []textSection `toml:"text"`
}

type outputSection struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	FPS        float64 `toml:"fps"`
	Duration   float64 `toml:"duration"`
	Dir        string  `toml:"dir"`
	Prefix     string  `toml:"prefix"`
	Format     string  `toml:"format"`
	Digits     int     `toml:"digits"`
	Background string  `toml:"background"`
}

type fontSection struct {
	Alias     string  `toml:"alias"`
	Family    string  `toml:"family"`
	File      string  `toml:"file"`
	Size      float64 `toml:"size"`
	AtlasSize int     `toml:"atlas_size"`
}

type textSection struct {
	Text  string `toml:"text"`
	Font  string `toml:"font"`
	Style string `toml:"style"`
	Align string `toml:"align"`

	// X and Y are fractions of the frame size; Y is the baseline.
	X float32 `toml:"x"`
	Y float32 `toml:"y"`

	Color         string   `toml:"color"`
	GlowColor     string   `toml:"glow_color"`
	OutlineColor  string   `toml:"outline_color"`
	GlowIntensity *float32 `toml:"glow_intensity"`
	GlowRadius    *float32 `toml:"glow_radius"`
	OutlineWidth  *float32 `toml:"outline_width"`
	Softness      *float32 `toml:"softness"`
	Light         *float32 `toml:"light"`
	Scale         *float32 `toml:"scale"`

	// Start and End bound the visible interval in seconds; End 0 keeps
	// the item until the last frame.
	Start   float64 `toml:"start"`
	End     float64 `toml:"end"`
	FadeIn  float64 `toml:"fade_in"`
	FadeOut float64 `toml:"fade_out"`
}

// scene is a parsed, validated scene.
type scene struct {
	output outputSection
	fonts  []fontSection
	items  []item
}

// item is one text with its resolved render state.
type item struct {
	text  string
	font  string
	x, y  float32
	state text.State

	start, end      float64
	fadeIn, fadeOut float64
}

func loadScene(path string) (*scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := parseScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func parseScene(r io.Reader) (*scene, error) {
	var sf sceneFile
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&sf); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return nil, err
	}
	if len(sf.Fonts) == 0 {
		return nil, errors.New("scene has no [[font]]")
	}

	s := &scene{output: sf.Output, fonts: sf.Fonts}
	aliases := make(map[string]bool)
	for i := range s.fonts {
		fs := &s.fonts[i]
		if fs.Alias == "" {
			fs.Alias = text.DefaultAlias
		}
		if aliases[fs.Alias] {
			return nil, fmt.Errorf("font %q defined twice", fs.Alias)
		}
		if (fs.Family == "") == (fs.File == "") {
			return nil, fmt.Errorf("font %q: exactly one of family and file must be set", fs.Alias)
		}
		if fs.Size <= 0 {
			return nil, fmt.Errorf("font %q: size must be positive", fs.Alias)
		}
		aliases[fs.Alias] = true
	}

	for i, ts := range sf.Texts {
		it, err := newItem(ts)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i+1, err)
		}
		if !aliases[it.font] {
			return nil, fmt.Errorf("text %d: unknown font %q", i+1, it.font)
		}
		s.items = append(s.items, it)
	}
	return s, nil
}

func newItem(ts textSection) (item, error) {
	it := item{
		text:    ts.Text,
		font:    ts.Font,
		x:       ts.X,
		y:       ts.Y,
		state:   text.DefaultState(),
		start:   ts.Start,
		end:     ts.End,
		fadeIn:  ts.FadeIn,
		fadeOut: ts.FadeOut,
	}
	if it.font == "" {
		it.font = text.DefaultAlias
	}
	if it.end != 0 && it.end < it.start {
		return it, fmt.Errorf("end %v before start %v", it.end, it.start)
	}
	if it.fadeIn < 0 || it.fadeOut < 0 {
		return it, errors.New("fades must not be negative")
	}

	st := &it.state
	var err error
	if ts.Style != "" {
		if st.Style, err = text.ParseStyle(ts.Style); err != nil {
			return it, err
		}
	}
	if ts.Align != "" {
		if st.Align, err = text.ParseAlign(ts.Align); err != nil {
			return it, err
		}
	}
	for _, c := range []struct {
		hex string
		dst *sdftext.Color
	}{
		{ts.Color, &st.Color},
		{ts.GlowColor, &st.GlowColor},
		{ts.OutlineColor, &st.OutlineColor},
	} {
		if c.hex == "" {
			continue
		}
		if *c.dst, err = sdftext.ParseHex(c.hex); err != nil {
			return it, err
		}
	}
	for _, f := range []struct {
		src *float32
		dst *float32
	}{
		{ts.GlowIntensity, &st.GlowIntensity},
		{ts.GlowRadius, &st.GlowRadius},
		{ts.OutlineWidth, &st.OutlineWidth},
		{ts.Softness, &st.Softness},
		{ts.Light, &st.LightIntensity},
		{ts.Scale, &st.Scale},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return it, nil
}

// opacity returns the fade factor of it at time t, 0 when hidden.
func (it *item) opacity(t float64) float64 {
	if t < it.start || (it.end != 0 && t >= it.end) {
		return 0
	}
	a := 1.0
	if it.fadeIn > 0 {
		a = min(a, (t-it.start)/it.fadeIn)
	}
	if it.end != 0 && it.fadeOut > 0 {
		a = min(a, (it.end-t)/it.fadeOut)
	}
	return max(0, min(a, 1))
}

// apply overrides cfg with the [output] section.
func (s *scene) apply(cfg *export.Config) error {
	o := s.output
	if o.Width > 0 {
		cfg.Width = o.Width
	}
	if o.Height > 0 {
		cfg.Height = o.Height
	}
	if o.FPS > 0 {
		cfg.FPS = o.FPS
	}
	if o.Duration > 0 {
		cfg.Duration = time.Duration(o.Duration * float64(time.Second))
	}
	if o.Dir != "" {
		cfg.OutputDir = o.Dir
	}
	if o.Prefix != "" {
		cfg.FilenamePrefix = o.Prefix
	}
	if o.Format != "" {
		f, err := export.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		cfg.Format = f
	}
	if o.Digits > 0 {
		cfg.Digits = o.Digits
	}
	if o.Background != "" {
		c, err := sdftext.ParseHex(o.Background)
		if err != nil {
			return err
		}
		cfg.Background = c
	}
	return nil
}

// load loads every font of the scene into r.
func (s *scene) load(r *text.Renderer) error {
	for _, f := range s.fonts {
		var err error
		if f.File != "" {
			err = r.LoadFontFromFile(f.File, f.Size, f.Alias, f.AtlasSize)
		} else {
			err = r.LoadFont(f.Family, f.Size, f.Alias)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// draw draws the items visible at time t into the current frame of r.
func (s *scene) draw(r *text.Renderer, t float64, width, height int) error {
	for i := range s.items {
		it := &s.items[i]
		a := float32(it.opacity(t))
		if a <= 0 {
			continue
		}
		st := it.state
		st.Time = float32(t)
		st.Color.A *= a
		st.GlowColor.A *= a
		st.OutlineColor.A *= a
		r.SetState(st)
		if err := r.DrawText(it.text, it.x*float32(width), it.y*float32(height), it.font); err != nil {
			return err
		}
	}
	return nil
}
