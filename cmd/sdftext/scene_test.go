package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/export"
	"github.com/gogpu/sdftext/text"
)

const testScene = `
[output]
width = 320
height = 180
fps = 10
duration = 1.5
format = "bmp"
background = "#102030"

[[font]]
alias = "title"
family = "Go Bold"
size = 32

[[font]]
family = "Go"
size = 16

[[text]]
text = "HELLO"
font = "title"
x = 0.5
y = 0.5
style = "neon"
align = "center"
glow_intensity = 1.2
fade_in = 1.0

[[text]]
text = "world"
start = 0.5
end = 1.5
fade_out = 0.5
color = "#ff0000"
`

func TestParseScene(t *testing.T) {
	s, err := parseScene(strings.NewReader(testScene))
	if err != nil {
		t.Fatalf("parseScene failed: %v", err)
	}
	if len(s.fonts) != 2 || s.fonts[1].Alias != text.DefaultAlias {
		t.Fatalf("unexpected fonts %+v", s.fonts)
	}
	if len(s.items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.items))
	}

	title := s.items[0]
	if title.state.Style != text.Neon || title.state.Align != text.AlignCenter {
		t.Errorf("unexpected style %v align %v", title.state.Style, title.state.Align)
	}
	if title.state.GlowIntensity != 1.2 {
		t.Errorf("expected glow intensity 1.2, got %v", title.state.GlowIntensity)
	}
	if title.state.GlowRadius != text.DefaultState().GlowRadius {
		t.Errorf("expected default glow radius, got %v", title.state.GlowRadius)
	}

	world := s.items[1]
	if world.font != text.DefaultAlias {
		t.Errorf("expected default font, got %q", world.font)
	}
	if world.state.Color != sdftext.RGB(1, 0, 0) {
		t.Errorf("expected red, got %+v", world.state.Color)
	}

	cfg := export.DefaultConfig()
	if err := s.apply(&cfg); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 180 || cfg.FPS != 10 || cfg.Format != export.FormatBMP {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Duration != 1500*time.Millisecond || cfg.TotalFrames() != 15 {
		t.Errorf("expected 1.5s / 15 frames, got %v / %d", cfg.Duration, cfg.TotalFrames())
	}
}

func TestParseSceneErrors(t *testing.T) {
	tests := []struct {
		name  string
		scene string
		want  string
	}{
		{"no fonts", `[[text]]
text = "a"`, "no [[font]]"},
		{"unknown font", `[[font]]
family = "Go"
size = 12
[[text]]
text = "a"
font = "nope"`, "unknown font"},
		{"family and file", `[[font]]
family = "Go"
file = "a.ttf"
size = 12`, "exactly one"},
		{"duplicate alias", `[[font]]
family = "Go"
size = 12
[[font]]
family = "Go Mono"
size = 12`, "defined twice"},
		{"bad style", `[[font]]
family = "Go"
size = 12
[[text]]
style = "bold"`, "unknown style"},
		{"bad color", `[[font]]
family = "Go"
size = 12
[[text]]
color = "#zzz"`, "text 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScene(strings.NewReader(tt.scene))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseSceneUnknownField(t *testing.T) {
	_, err := parseScene(strings.NewReader(`[[font]]
family = "Go"
size = 12
colour = "red"`))
	if err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestOpacity(t *testing.T) {
	it := item{start: 1, end: 3, fadeIn: 0.5, fadeOut: 1}
	tests := []struct {
		t    float64
		want float64
	}{
		{0.5, 0},
		{1, 0},
		{1.25, 0.5},
		{1.5, 1},
		{2, 1},
		{2.5, 0.5},
		{3, 0},
	}
	for _, tt := range tests {
		if got := it.opacity(tt.t); got != tt.want {
			t.Errorf("opacity(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}

	forever := item{}
	if got := forever.opacity(100); got != 1 {
		t.Errorf("expected item without end visible, got %v", got)
	}
}

func TestConfigFlagsOverrideScene(t *testing.T) {
	s, err := parseScene(strings.NewReader(testScene))
	if err != nil {
		t.Fatalf("parseScene failed: %v", err)
	}
	o, set, err := parseFlags([]string{"-scene", "x.toml", "-fps", "24", "-out", "frames", "-digits", "4"}, &strings.Builder{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	cfg, err := o.config(s, set)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if cfg.FPS != 24 || cfg.OutputDir != "frames" || cfg.Digits != 4 {
		t.Errorf("expected flags applied, got %+v", cfg)
	}
	if cfg.Width != 320 {
		t.Errorf("expected scene width kept, got %d", cfg.Width)
	}
	if got := cfg.FileName(3); got != "frame_0003.bmp" {
		t.Errorf("expected frame_0003.bmp, got %s", got)
	}
}

func TestParseFlagsRequiresScene(t *testing.T) {
	if _, _, err := parseFlags(nil, &strings.Builder{}); err == nil {
		t.Error("expected error without -scene")
	}
}
