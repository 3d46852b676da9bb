// Package sdftext renders styled text with signed distance field glyph atlases.
//
// # Overview
//
// sdftext turns vector fonts into single-channel distance field atlases and
// draws text from them in batches, with three shading styles: Standard
// (clean edges with a soft glow), Neon (strong glow around the outline
// color) and Title (glow plus a crisp outline for cinematic captions).
// A frame export pipeline drives the renderer offscreen and writes a
// numbered image sequence.
//
// # Packages
//
//   - raster: font resolution and glyph coverage rasterization
//   - atlas: distance field generation, shelf packing, atlas metadata
//   - render: device boundary, vertex and uniform layouts, software device
//   - gpu: wgpu-backed device
//   - text: batch renderer, styles and alignment
//   - export: cancellable frame sequence export
//   - cmd/sdftext: TOML scene pre-renderer
//
// # Quick Start
//
//	dev := render.NewSoftwareDevice()
//	r, err := text.NewRenderer(dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	if err := r.LoadFont("Go", 64, "default"); err != nil {
//	    log.Fatal(err)
//	}
//
//	pre, err := export.New(dev,
//	    export.WithTextRenderer(r),
//	    export.WithRenderFunc(func(t float64, target render.RenderTarget, w, h int) error {
//	        r.SetStyle(text.Neon)
//	        return r.DrawText("Hello", 100, 200, "default")
//	    }))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := pre.Render(ctx, export.DefaultConfig(), nil)
//
// # Coordinate System
//
// Text is positioned in target pixels:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down; the y passed to DrawText is the baseline
//
// # Logging
//
// By default nothing is logged. Use [SetLogger] to route diagnostics to a
// [log/slog] handler.
package sdftext

// Version is the current version of the library.
const Version = "0.1.0"
