// Package render produces synthetic placeholder logos from display
// names: script detection, font fallback, text layout, PNG output.
package render

import "unicode"

// Script is the dominant writing system detected in a display name.
type Script string

const (
	ScriptLatin      Script = "latin"
	ScriptCyrillic   Script = "cyrillic"
	ScriptKorean     Script = "korean"
	ScriptCJK        Script = "cjk"
	ScriptArabic     Script = "arabic"
	ScriptDevanagari Script = "devanagari"
	ScriptThai       Script = "thai"
	ScriptHebrew     Script = "hebrew"
	ScriptGreek      Script = "greek"
	ScriptTurkish    Script = "turkish"
	ScriptOther      Script = "other"
)

// turkishMarkers are the dotted/dotless and cedilla characters that
// distinguish Turkish text from plain Latin.
var turkishMarkers = map[rune]bool{
	'ı': true, 'İ': true,
	'ğ': true, 'Ğ': true,
	'ü': true, 'Ü': true,
	'ş': true, 'Ş': true,
	'ö': true, 'Ö': true,
	'ç': true, 'Ç': true,
}

var scriptRanges = []struct {
	script Script
	tables []*unicode.RangeTable
}{
	{ScriptKorean, []*unicode.RangeTable{unicode.Hangul}},
	{ScriptCJK, []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Bopomofo}},
	{ScriptCyrillic, []*unicode.RangeTable{unicode.Cyrillic}},
	{ScriptArabic, []*unicode.RangeTable{unicode.Arabic}},
	{ScriptDevanagari, []*unicode.RangeTable{unicode.Devanagari}},
	{ScriptThai, []*unicode.RangeTable{unicode.Thai}},
	{ScriptHebrew, []*unicode.RangeTable{unicode.Hebrew}},
	{ScriptGreek, []*unicode.RangeTable{unicode.Greek}},
}

// nonLatinOrder fixes the tie-break order when picking the dominant
// non-Latin script.
var nonLatinOrder = []Script{
	ScriptCyrillic, ScriptCJK, ScriptArabic, ScriptDevanagari,
	ScriptThai, ScriptHebrew, ScriptGreek, ScriptTurkish, ScriptOther,
}

// ClassifyScript detects the dominant writing system of text, ignoring
// whitespace and punctuation. The thresholds are empirical: any Hangul
// classifies as Korean outright, more than one Turkish marker wins
// Turkish, a non-Latin script needs over 20% of the characters, Latin
// needs over 60%, anything else is "other".
func ClassifyScript(text string) Script {
	if text == "" {
		return ScriptLatin
	}

	counts := map[Script]int{}
	total := 0

	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		total++

		if turkishMarkers[r] {
			counts[ScriptTurkish]++
			continue
		}

		matched := false
		for _, entry := range scriptRanges {
			if unicode.In(r, entry.tables...) {
				counts[entry.script]++
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if r < 128 || unicode.In(r, unicode.Latin) {
			counts[ScriptLatin]++
		} else {
			counts[ScriptOther]++
		}
	}

	if total == 0 {
		return ScriptLatin
	}
	if counts[ScriptKorean] > 0 {
		return ScriptKorean
	}
	if counts[ScriptTurkish] > 1 {
		return ScriptTurkish
	}

	dominant := ScriptLatin
	dominantCount := counts[ScriptLatin]
	for _, script := range nonLatinOrder {
		if counts[script] > dominantCount {
			dominant = script
			dominantCount = counts[script]
		}
	}
	if dominant != ScriptLatin && float64(dominantCount)/float64(total) > 0.2 {
		return dominant
	}
	if float64(counts[ScriptLatin])/float64(total) > 0.6 {
		return ScriptLatin
	}
	return ScriptOther
}

// characterBlock reports whether a script lacks word boundaries and
// should be line-wrapped by characters instead of words.
func characterBlock(script Script) bool {
	switch script {
	case ScriptCJK, ScriptKorean, ScriptThai:
		return true
	}
	return false
}
