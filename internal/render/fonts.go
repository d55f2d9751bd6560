package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts resolves CSS-like family names to the embedded Go fonts. It
// implements element.TextMeasurer.
//
// Parsed fonts are shared; faces are not safe for concurrent use, so every
// renderer builds its own with NewFace and MeasureText keeps a private cache
// behind mu.
type Fonts struct {
	fonts map[string]*truetype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// maxMeasureFaces bounds the measuring cache; it is emptied when full.
const maxMeasureFaces = 64

type faceKey struct {
	family string
	size   float64
}

func NewFonts() (*Fonts, error) {
	f := &Fonts{
		fonts: make(map[string]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
	for name, ttf := range map[string][]byte{
		"sans-serif": goregular.TTF,
		"monospace":  gomono.TTF,
		"bold":       gobold.TTF,
	} {
		parsed, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		f.fonts[name] = parsed
	}
	return f, nil
}

// MustFonts is NewFonts for callers that cannot continue without text.
func MustFonts() *Fonts {
	f, err := NewFonts()
	if err != nil {
		panic(err)
	}
	return f
}

func familyName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(name, "mono"), strings.Contains(name, "courier"):
		return "monospace"
	case strings.Contains(name, "bold"):
		return "bold"
	default:
		return "sans-serif"
	}
}

// NewFace returns a face for family at size points (72 DPI, so one point is
// one document unit). The caller owns it.
func (f *Fonts) NewFace(family string, size float64) font.Face {
	return truetype.NewFace(f.fonts[familyName(family)], &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// MeasureText returns the advance width of text in document units.
func (f *Fonts) MeasureText(text, family string, size float64) float64 {
	if size <= 0 || text == "" {
		return 0
	}
	key := faceKey{family: familyName(family), size: size}

	f.mu.Lock()
	defer f.mu.Unlock()
	face, ok := f.faces[key]
	if !ok {
		if len(f.faces) >= maxMeasureFaces {
			clear(f.faces)
		}
		face = f.NewFace(family, size)
		f.faces[key] = face
	}
	return float64(font.MeasureString(face, text)) / 64
}

// faceSet caches the faces of a single render call.
type faceSet struct {
	fonts *Fonts
	faces map[faceKey]font.Face
}

func newFaceSet(f *Fonts) *faceSet {
	return &faceSet{fonts: f, faces: make(map[faceKey]font.Face)}
}

func (s *faceSet) face(family string, size float64) font.Face {
	if s == nil || s.fonts == nil {
		return nil
	}
	key := faceKey{family: familyName(family), size: size}
	if face, ok := s.faces[key]; ok {
		return face
	}
	face := s.fonts.NewFace(family, size)
	s.faces[key] = face
	return face
}
