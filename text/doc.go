// Package text draws styled distance field text in batches.
//
// A Renderer holds one or more font atlases under caller-chosen aliases,
// turns strings into textured quads and submits them to a render.Device.
// Quads accumulate across DrawText calls and are submitted as one draw
// call until the alias, the resolved style or the batch capacity changes:
//
//	r, err := text.NewRenderer(dev)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	if err := r.LoadFont("Go", 64, "title"); err != nil {
//	    return err
//	}
//
//	if err := r.BeginFrame(target, w, h); err != nil {
//	    return err
//	}
//	r.SetStyle(text.Neon)
//	r.SetAlignment(text.AlignCenter)
//	r.DrawText("HELLO", float32(w)/2, float32(h)/2, "title")
//	err = r.EndFrame()
//
// # Resolved style
//
// The resolved style of a glyph is its shader variant together with every
// uniform value: glow and outline colors, glow intensity and radius,
// outline width, softness, light intensity and time. Changing any of them
// ends the current batch, so a change never affects glyphs already drawn.
// Text color is a vertex attribute; scale and alignment only move
// geometry. None of the three end a batch.
//
// # Coordinates
//
// Positions are target pixels with the origin at the top-left and y
// growing down. The y passed to DrawText is the baseline.
//
// Strings are drawn codepoint by codepoint as given. Codepoints missing
// from the atlas are skipped and advance nothing. WithNormalization
// composes text to NFC first.
package text
