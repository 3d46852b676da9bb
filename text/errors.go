package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrNoDevice is returned by NewRenderer when no device is given.
	ErrNoDevice = errors.New("text: nil render device")

	// ErrUnknownFont is returned when an alias has no loaded font.
	ErrUnknownFont = errors.New("text: unknown font alias")

	// ErrUnknownStyle is returned by DrawText for a style with no
	// shading pipeline.
	ErrUnknownStyle = errors.New("text: unknown style")

	// ErrNotInFrame is returned when drawing outside BeginFrame/EndFrame.
	ErrNotInFrame = errors.New("text: not in a frame")

	// ErrFrameInProgress is returned by BeginFrame before the previous
	// frame has ended.
	ErrFrameInProgress = errors.New("text: frame already in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("text: renderer closed")
)
