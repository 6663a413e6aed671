// Package imaging normalizes fetched logo bytes into uniform square
// PNG artifacts: validate, flatten, resize, pad, save, verify.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mat/besticon/v3/ico"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Standardizer converts raw source bytes into an opaque RGB PNG of
// exactly OutputSize by OutputSize pixels.
type Standardizer struct {
	// OutputSize is the square output dimension in pixels.
	OutputSize int
	// MinSourceSize rejects sources unless at least one dimension
	// reaches it. An OR check, a wide banner still qualifies.
	MinSourceSize int
	// MaxUpscale rejects sources that would need more than this
	// upscaling ratio to fill the canvas. Zero means unlimited.
	MaxUpscale float64
}

// Standardize runs the full pipeline on data and writes the result to
// outputPath. On failure it returns a ProcessError naming the stage and
// removes any partially written file.
func (s *Standardizer) Standardize(data []byte, outputPath string) error {
	if s == nil {
		return errors.New("standardizer is not configured")
	}

	src, err := s.load(data, outputPath)
	if err != nil {
		return err
	}

	flat, err := s.flatten(src, outputPath)
	if err != nil {
		return err
	}

	canvas, err := s.resize(flat, outputPath)
	if err != nil {
		return err
	}

	if err := s.save(canvas, outputPath); err != nil {
		// Never leave a partial artifact behind.
		_ = os.Remove(outputPath)
		return err
	}
	return nil
}

func (s *Standardizer) load(data []byte, outputPath string) (image.Image, error) {
	if len(data) == 0 {
		return nil, stageError(KindInvalidData, outputPath, errors.New("empty image data"))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Icon containers hold multiple resolutions; the ico decoder
		// picks the best embedded one.
		icoImg, icoErr := ico.Decode(bytes.NewReader(data))
		if icoErr != nil {
			return nil, stageError(KindInvalidData, outputPath, err)
		}
		src = icoImg
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, stageError(KindInvalidData, outputPath, errors.New("image has no pixels"))
	}
	if s.MinSourceSize > 0 && width < s.MinSourceSize && height < s.MinSourceSize {
		return nil, stageError(KindTooSmall, outputPath,
			fmt.Errorf("%dx%d below minimum source size %d", width, height, s.MinSourceSize))
	}
	return src, nil
}

// flatten composites the source over an opaque white background so
// transparency never survives into the output.
func (s *Standardizer) flatten(src image.Image, outputPath string) (image.Image, error) {
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, stageError(KindConversion, outputPath, errors.New("empty source bounds"))
	}

	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(flat, flat.Bounds(), src, bounds.Min, xdraw.Over)
	return flat, nil
}

// resize scales the source to fit the output canvas preserving aspect
// ratio, then centers it on an opaque white square.
func (s *Standardizer) resize(src image.Image, outputPath string) (image.Image, error) {
	outputSize := s.OutputSize
	if outputSize <= 0 {
		return nil, stageError(KindResizing, outputPath, fmt.Errorf("invalid output size %d", outputSize))
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	ratio := min(float64(outputSize)/float64(width), float64(outputSize)/float64(height))
	if s.MaxUpscale > 0 && ratio > s.MaxUpscale {
		return nil, stageError(KindResizing, outputPath,
			fmt.Errorf("upscale ratio %.1f exceeds cap %.1f", ratio, s.MaxUpscale))
	}

	scaledW := int(float64(width) * ratio)
	scaledH := int(float64(height) * ratio)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Src, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, outputSize, outputSize))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	offset := image.Pt((outputSize-scaledW)/2, (outputSize-scaledH)/2)
	xdraw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(scaledW, scaledH))},
		scaled, image.Point{}, xdraw.Over)
	return canvas, nil
}

// save writes the canvas as PNG, then reopens the file to verify the
// artifact decodes as PNG.
func (s *Standardizer) save(canvas image.Image, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return stageError(KindSave, outputPath, err)
	}

	if err := png.Encode(out, canvas); err != nil {
		out.Close() // nolint:errcheck
		return stageError(KindSave, outputPath, err)
	}
	if err := out.Close(); err != nil {
		return stageError(KindSave, outputPath, err)
	}

	verify, err := os.Open(outputPath)
	if err != nil {
		return stageError(KindSave, outputPath, err)
	}
	defer verify.Close() // nolint:errcheck // read-only verification handle

	_, format, err := image.Decode(verify)
	if err != nil {
		return stageError(KindSave, outputPath, err)
	}
	if format != "png" {
		return stageError(KindSave, outputPath, fmt.Errorf("verification decoded %q, want png", format))
	}
	return nil
}
