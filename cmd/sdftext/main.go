// Command sdftext pre-renders a TOML text scene to an image sequence.
//
// Usage:
//
//	sdftext -scene intro.toml -out frames -fps 30 -duration 5s
//
// A scene declares fonts and timed text items:
//
//	[output]
//	width = 1920
//	height = 1080
//
//	[[font]]
//	alias = "title"
//	family = "Go Bold"
//	size = 96
//
//	[[text]]
//	text = "HELLO"
//	font = "title"
//	x = 0.5
//	y = 0.55
//	style = "neon"
//	align = "center"
//	glow_color = "#40a0ff"
//	fade_in = 1.0
//
// Interrupting the command stops after the frame in progress; frames
// already written are kept.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gogpu/sdftext"
	"github.com/gogpu/sdftext/atlas"
	"github.com/gogpu/sdftext/export"
	"github.com/gogpu/sdftext/gpu"
	"github.com/gogpu/sdftext/render"
	"github.com/gogpu/sdftext/text"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "sdftext:", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	scene     string
	out       string
	width     int
	height    int
	fps       float64
	duration  time.Duration
	format    string
	digits    int
	prefix    string
	logFile   string
	verbose   bool
	useGPU    bool
	cacheDir  string
	dumpAtlas string
}

func parseFlags(args []string, stderr io.Writer) (options, map[string]bool, error) {
	var o options
	fs := flag.NewFlagSet("sdftext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.scene, "scene", "", "scene file (TOML)")
	fs.StringVar(&o.out, "out", "", "output directory")
	fs.IntVar(&o.width, "width", 0, "frame width")
	fs.IntVar(&o.height, "height", 0, "frame height")
	fs.Float64Var(&o.fps, "fps", 0, "frames per second")
	fs.DurationVar(&o.duration, "duration", 0, "sequence duration")
	fs.StringVar(&o.format, "format", "", "image format: png, bmp or tiff")
	fs.IntVar(&o.digits, "digits", 0, "zero-pad frame numbers to this many digits")
	fs.StringVar(&o.prefix, "prefix", "", "file name prefix")
	fs.StringVar(&o.logFile, "log-file", "", "write JSON logs to this rotated file")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.BoolVar(&o.useGPU, "gpu", false, "render on the GPU when available")
	fs.StringVar(&o.cacheDir, "cache", "", "atlas cache directory")
	fs.StringVar(&o.dumpAtlas, "dump-atlas", "", "write font atlases and metadata to this directory and exit")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	if o.scene == "" {
		return o, nil, fmt.Errorf("-scene is required")
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

// config builds the export configuration: defaults, then the scene,
// then explicitly set flags.
func (o *options) config(s *scene, set map[string]bool) (export.Config, error) {
	cfg := export.DefaultConfig()
	if err := s.apply(&cfg); err != nil {
		return cfg, err
	}
	if set["out"] {
		cfg.OutputDir = o.out
	}
	if set["width"] {
		cfg.Width = o.width
	}
	if set["height"] {
		cfg.Height = o.height
	}
	if set["fps"] {
		cfg.FPS = o.fps
	}
	if set["duration"] {
		cfg.Duration = o.duration
	}
	if set["digits"] {
		cfg.Digits = o.digits
	}
	if set["prefix"] {
		cfg.FilenamePrefix = o.prefix
	}
	if set["format"] {
		f, err := export.ParseFormat(o.format)
		if err != nil {
			return cfg, err
		}
		cfg.Format = f
	}
	return cfg, cfg.Validate()
}

func newLogger(o *options, stderr io.Writer) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	if o.logFile == "" {
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})), func() {}
	}
	w := &lumberjack.Logger{
		Filename:   o.logFile,
		MaxSize:    32, // MB
		MaxBackups: 3,
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), func() { _ = w.Close() }
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger, closeLog := newLogger(&o, stderr)
	defer closeLog()
	sdftext.SetLogger(logger)
	defer sdftext.SetLogger(nil)

	s, err := loadScene(o.scene)
	if err != nil {
		return err
	}
	cfg, err := o.config(s, set)
	if err != nil {
		return err
	}

	var dev render.Device
	if o.useGPU {
		dev = gpu.NewStandalone()
	} else {
		dev = render.NewSoftwareDevice()
	}
	defer dev.Destroy()

	r, err := newTextRenderer(dev, &o)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := s.load(r); err != nil {
		return err
	}
	if o.dumpAtlas != "" {
		return dumpAtlases(r, o.dumpAtlas)
	}

	// An interrupt cancels ctx, which Render observes at the next frame.
	p, err := export.New(dev,
		export.WithTextRenderer(r),
		export.WithRenderFunc(func(t float64, _ render.RenderTarget, w, h int) error {
			return s.draw(r, t, w, h)
		}))
	if err != nil {
		return err
	}

	last := time.Now()
	res, err := p.Render(ctx, cfg, func(frame, total int, elapsed time.Duration) {
		if frame == total || time.Since(last) > time.Second {
			last = time.Now()
			fmt.Fprintf(stderr, "\rframe %d/%d  %s", frame, total, elapsed.Round(time.Millisecond))
		}
	})
	fmt.Fprintln(stderr)
	if err != nil {
		return err
	}
	if res.Status == export.Cancelled {
		return fmt.Errorf("cancelled after %d of %d frames", res.Frames, res.Total)
	}
	fmt.Fprintf(stderr, "wrote %d frames to %s in %s\n", res.Frames, cfg.OutputDir, res.Elapsed.Round(time.Millisecond))
	return nil
}

func newTextRenderer(dev render.Device, o *options) (*text.Renderer, error) {
	var opts []text.Option
	if o.cacheDir != "" {
		opts = append(opts, text.WithAtlasOptions(atlas.WithCacheDir(o.cacheDir)))
	}
	return text.NewRenderer(dev, opts...)
}

// dumpAtlases writes alias.png and alias.json for every loaded font.
func dumpAtlases(r *text.Renderer, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, alias := range r.Fonts() {
		a, _ := r.Atlas(alias)
		if err := writeFile(filepath.Join(dir, alias+".png"), func(w io.Writer) error {
			return export.Encode(w, a.Image(), export.FormatPNG)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, alias+".json"), a.WriteMetadata); err != nil {
			return err
		}
		sdftext.Logger().Info("atlas written", "alias", alias, "dir", dir, "glyphs", a.Len())
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
