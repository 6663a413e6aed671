package render

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// generalFonts are broad-coverage candidates per platform, tried after
// any script-specific preference.
var generalFonts = map[string][]string{
	"windows": {
		"arialuni.ttf",
		"seguisym.ttf",
		"malgun.ttf",
		"meiryo.ttc",
		"msyh.ttf",
		"tahoma.ttf",
		"segoeui.ttf",
		"arial.ttf",
		"times.ttf",
		"simsun.ttc",
		"nirmala.ttf",
		"leelawad.ttf",
		"calibri.ttf",
		"verdana.ttf",
	},
	"darwin": {
		"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
		"/Library/Fonts/Arial Unicode.ttf",
		"/System/Library/Fonts/PingFang.ttc",
		"/System/Library/Fonts/Hiragino Sans GB.ttc",
		"/System/Library/Fonts/AppleSDGothicNeo.ttc",
		"/System/Library/Fonts/HiraginoSans.ttc",
		"/System/Library/Fonts/AppleGothic.ttf",
		"/System/Library/Fonts/Thonburi.ttc",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
	},
	"linux": {
		"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/truetype/noto/NotoSansArabic-Regular.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansDevanagari-Regular.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansHebrew-Regular.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansThai-Regular.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	},
}

// scriptFonts are preferred font file names per script, resolved
// against the platform font directory on Windows.
var scriptFonts = map[Script][]string{
	ScriptCyrillic:   {"arial.ttf", "tahoma.ttf", "verdana.ttf", "times.ttf", "arialuni.ttf"},
	ScriptKorean:     {"malgun.ttf", "gulim.ttc", "batang.ttc", "arialuni.ttf"},
	ScriptCJK:        {"msyh.ttf", "meiryo.ttc", "msgothic.ttc", "simhei.ttf", "arialuni.ttf"},
	ScriptArabic:     {"arial.ttf", "tahoma.ttf", "segoeui.ttf", "arialuni.ttf"},
	ScriptDevanagari: {"mangal.ttf", "nirmala.ttf", "arialuni.ttf"},
	ScriptThai:       {"leelawad.ttf", "tahoma.ttf", "arialuni.ttf"},
	ScriptHebrew:     {"david.ttf", "arial.ttf", "tahoma.ttf", "arialuni.ttf"},
	ScriptGreek:      {"arial.ttf", "tahoma.ttf", "times.ttf", "arialuni.ttf"},
	ScriptTurkish:    {"tahoma.ttf", "arial.ttf", "verdana.ttf", "calibri.ttf", "arialuni.ttf"},
}

// faceSource parses one font file once and derives faces per size. A
// nil parsed font means every candidate was missing and faces fall
// back to the fixed-size basicfont.
type faceSource struct {
	parsed *opentype.Font
}

// newFaceSource walks the font fallback chain for script: preferred
// script fonts first, then the general platform list. A missing font
// is never fatal.
func newFaceSource(script Script) *faceSource {
	src := &faceSource{}
	for _, candidate := range fontCandidates(script) {
		parsed, err := parseFontFile(candidate)
		if err != nil {
			continue
		}
		src.parsed = parsed
		break
	}
	return src
}

// face returns a face at the requested pixel size, or the guaranteed
// basicfont fallback when no platform font loaded.
func (s *faceSource) face(size int) font.Face {
	if s == nil || s.parsed == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(s.parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

func (s *faceSource) scalable() bool {
	return s != nil && s.parsed != nil
}

func fontCandidates(script Script) []string {
	goos := runtime.GOOS
	fontDir := systemFontDir(goos)

	var candidates []string
	for _, name := range scriptFonts[script] {
		candidates = append(candidates, resolveFontPath(name, fontDir))
	}
	general, ok := generalFonts[goos]
	if !ok {
		general = generalFonts["linux"]
	}
	for _, name := range general {
		candidates = append(candidates, resolveFontPath(name, fontDir))
	}
	return candidates
}

func resolveFontPath(name, fontDir string) string {
	if filepath.IsAbs(name) || fontDir == "" {
		return name
	}
	return filepath.Join(fontDir, name)
}

func systemFontDir(goos string) string {
	switch goos {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return filepath.Join(windir, "Fonts")
	case "darwin":
		return "/System/Library/Fonts"
	default:
		return "/usr/share/fonts"
	}
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		collection, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		return collection.Font(0)
	}
	return opentype.Parse(data)
}
