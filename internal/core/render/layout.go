package render

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/text/width"
)

const fontSizeStep = 4

// measure returns the pixel width and height of text at face.
func measure(face font.Face, text string) (int, int) {
	advance := font.MeasureString(face, text)
	metrics := face.Metrics()
	return advance.Ceil(), (metrics.Ascent + metrics.Descent).Ceil()
}

// fitSingleLine searches downward from maxSize to minSize in fixed
// steps for the largest size at which text fits the box. Returns zero
// when nothing fits.
func fitSingleLine(src *faceSource, text string, maxWidth, maxHeight, maxSize, minSize int) int {
	for size := maxSize; size >= minSize; size -= fontSizeStep {
		w, h := measure(src.face(size), text)
		if w <= maxWidth && h <= maxHeight {
			return size
		}
		if !src.scalable() {
			// The basicfont fallback has one size; searching is moot.
			return 0
		}
	}
	return 0
}

// fitLines finds the largest size at which every line fits maxWidth and
// the stacked lines, with 15% inter-line spacing, fit maxHeight.
func fitLines(src *faceSource, lines []string, maxWidth, maxHeight, maxSize, minSize int) int {
	for size := maxSize; size >= minSize; size -= fontSizeStep {
		face := src.face(size)
		fits := true
		total := 0
		lineHeight := 0
		for _, line := range lines {
			w, h := measure(face, line)
			if w > maxWidth {
				fits = false
				break
			}
			total += h
			lineHeight = h
		}
		if fits {
			total += int(float64(lineHeight) * 0.15 * float64(len(lines)-1))
			if total <= maxHeight {
				return size
			}
		}
		if !src.scalable() {
			return 0
		}
	}
	return 0
}

// hasWideChars reports whether text contains East Asian wide or
// fullwidth characters.
func hasWideChars(text string) bool {
	for _, r := range text {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			return true
		}
	}
	return false
}

// splitChars wraps text by characters for scripts without word
// boundaries. Group size depends on total length, capped at 4 lines.
func splitChars(text string) []string {
	chars := []rune(text)
	perLine := 0
	if len(chars) <= 8 {
		perLine = min(4, len(chars))
	} else {
		perLine = min(5, max(3, len(chars)/3))
	}
	if perLine < 1 {
		perLine = 1
	}

	var lines []string
	for i := 0; i < len(chars); i += perLine {
		end := min(i+perLine, len(chars))
		lines = append(lines, string(chars[i:end]))
	}
	if len(lines) > 4 {
		lines = lines[:4]
	}
	return lines
}

// splitWords packs words into at most maxLines lines of roughly equal
// character count.
func splitWords(text string, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) <= maxLines {
		return words
	}

	charsPerLine := len(text) / maxLines
	var lines []string
	var current []string
	currentLen := 0

	for _, word := range words {
		// A word longer than the target width still starts a line;
		// flushing an empty group would emit a blank leading line.
		if currentLen+len(word) > charsPerLine && len(current) > 0 && len(lines) < maxLines-1 {
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			currentLen = len(word)
		} else {
			current = append(current, word)
			currentLen += len(word)
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// lineCountFor picks 2 to 4 lines based on total text length.
func lineCountFor(text string) int {
	switch n := utf8.RuneCountInString(text); {
	case n <= 20:
		return 2
	case n <= 40:
		return 3
	default:
		return 4
	}
}

// abbreviate shortens a name that cannot fit even across lines:
// the first 1-2 characters for character-block scripts, otherwise
// uppercased initials of up to 4 words, otherwise the first 4
// characters of a single long word.
func abbreviate(text string, script Script) string {
	chars := []rune(text)
	if characterBlock(script) {
		return string(chars[:min(2, len(chars))])
	}

	words := strings.Fields(text)
	if len(words) > 1 {
		var initials []rune
		for _, word := range words[:min(4, len(words))] {
			initials = append(initials, []rune(word)[0])
		}
		return strings.ToUpper(string(initials))
	}
	return strings.ToUpper(string(chars[:min(4, len(chars))]))
}
