package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// palette holds the professional background tones a synthetic logo can
// use; one is drawn at random per render.
var palette = []color.RGBA{
	{R: 52, G: 152, B: 219, A: 255},
	{R: 46, G: 204, B: 113, A: 255},
	{R: 155, G: 89, B: 182, A: 255},
	{R: 52, G: 73, B: 94, A: 255},
	{R: 41, G: 128, B: 185, A: 255},
	{R: 39, G: 174, B: 96, A: 255},
	{R: 142, G: 68, B: 173, A: 255},
	{R: 41, G: 58, B: 74, A: 255},
	{R: 44, G: 62, B: 80, A: 255},
	{R: 19, G: 106, B: 138, A: 255},
}

// Renderer draws a placeholder logo from a display name. Render never
// fails for a non-empty name; a missing platform font degrades to the
// built-in bitmap face instead of erroring.
type Renderer struct {
	// Size is the square canvas dimension in pixels.
	Size int
	// Rand drives the background color choice. Nil uses the global
	// source; tests seed this for deterministic output.
	Rand *rand.Rand
}

// Render produces PNG bytes for displayName.
func (r *Renderer) Render(displayName string) ([]byte, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, errors.New("display name is required")
	}

	size := 256
	if r != nil && r.Size > 0 {
		size = r.Size
	}

	script := ClassifyScript(name)
	src := newFaceSource(script)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.backgroundColor()), image.Point{}, draw.Src)

	margin := int(float64(size) * 0.04)
	maxTextWidth := size - 2*margin
	maxTextHeight := size - 2*margin
	maxFontSize := int(float64(size) * 0.4)
	minFontSize := int(float64(size) * 0.06)

	if fontSize := fitSingleLine(src, name, maxTextWidth, maxTextHeight, maxFontSize, minFontSize); fontSize > 0 {
		drawCentered(img, src.face(fontSize), name, size)
	} else {
		lines := layoutLines(name, script)
		if fontSize := fitLines(src, lines, maxTextWidth, maxTextHeight, maxFontSize, minFontSize); fontSize > 0 {
			drawLines(img, src.face(fontSize), lines, size)
		} else {
			abbrev := abbreviate(name, script)
			drawCentered(img, src.face(int(float64(size)*0.35)), abbrev, size)
		}
	}

	drawBorder(img, size, 2)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) backgroundColor() color.RGBA {
	if r != nil && r.Rand != nil {
		return palette[r.Rand.Intn(len(palette))]
	}
	return palette[rand.Intn(len(palette))]
}

// layoutLines picks character grouping for scripts without word
// boundaries, single-word names, and names with wide glyphs; everything
// else wraps by words.
func layoutLines(name string, script Script) []string {
	words := strings.Fields(name)
	if characterBlock(script) || len(words) <= 1 || hasWideChars(name) {
		return splitChars(name)
	}
	return splitWords(name, lineCountFor(name))
}

// drawCentered draws one line horizontally centered, vertically
// centered with a 7% upward shift for visual balance.
func drawCentered(dst draw.Image, face font.Face, text string, size int) {
	w, h := measure(face, text)
	metrics := face.Metrics()

	x := (size - w) / 2
	y := (size-h)/2 - int(float64(size)*0.07)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, y+metrics.Ascent.Ceil()),
	}
	drawer.DrawString(text)
}

// drawLines stacks lines with 15% spacing, centered as a block with the
// same 7% upward shift.
func drawLines(dst draw.Image, face font.Face, lines []string, size int) {
	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil()
	spacing := int(float64(lineHeight) * 0.15)
	total := lineHeight*len(lines) + spacing*(len(lines)-1)

	y := (size-total)/2 - int(float64(size)*0.07)
	for _, line := range lines {
		w, _ := measure(face, line)
		drawer := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot:  fixed.P((size-w)/2, y+metrics.Ascent.Ceil()),
		}
		drawer.DrawString(line)
		y += lineHeight + spacing
	}
}

func drawBorder(dst draw.Image, size, thickness int) {
	black := image.NewUniform(color.Black)
	draw.Draw(dst, image.Rect(0, 0, size, thickness), black, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, size-thickness, size, size), black, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, 0, thickness, size), black, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(size-thickness, 0, size, size), black, image.Point{}, draw.Src)
}
