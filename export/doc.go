// Package export renders numbered image sequences offscreen.
//
// A PreRenderer drives a caller-supplied draw function once per frame,
// reads the offscreen target back and hands every frame to a Sink,
// by default a FileSink writing outputDir/prefix{index}.{format}.
//
//	p, err := export.New(dev, export.WithTextRenderer(r), export.WithRenderFunc(draw))
//	if err != nil {
//	    return err
//	}
//	res, err := p.Render(ctx, cfg, nil)
//
// Frames are strictly sequential: frame i+1 is not drawn before frame i
// has been read back and written. Cancel, or cancellation of the
// context, is observed before each frame; frames already written stay
// on disk and the result status is Cancelled.
package export
