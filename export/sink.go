package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Sink receives rendered frames in order. The image is only valid during
// the call; implementations that keep it must copy it.
type Sink interface {
	WriteFrame(index int, img *image.NRGBA) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(index int, img *image.NRGBA) error

// WriteFrame calls f.
func (f SinkFunc) WriteFrame(index int, img *image.NRGBA) error {
	return f(index, img)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("export: unknown format %q", f)
}

// FileSink writes each frame to its own file in a directory.
type FileSink struct {
	cfg Config
}

// NewFileSink creates cfg.OutputDir if needed and returns a sink writing
// the file names of cfg.
func NewFileSink(cfg Config) (*FileSink, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}
	return &FileSink{cfg: cfg}, nil
}

// Path returns the file path of frame index.
func (s *FileSink) Path(index int) string {
	return filepath.Join(s.cfg.OutputDir, s.cfg.FileName(index))
}

// WriteFrame encodes img into a temporary file next to the target and
// renames it into place, so a failed write leaves no partial frame.
func (s *FileSink) WriteFrame(index int, img *image.NRGBA) (err error) {
	f, err := os.CreateTemp(s.cfg.OutputDir, ".frame-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := Encode(f, img, s.cfg.Format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path(index))
}
