package text

import (
	"fmt"

	"github.com/fzipp/bmfont"
	"golang.org/x/image/font/basicfont"
)

/**
 * @brief Placement of a glyph in the font atlas and relative to the pen, in
 * atlas pixels.
 */
type Glyph struct {
	X, Y          int
	Width, Height int
	XOffset       int
	YOffset       int
	XAdvance      int
	Page          int
}

/** @brief A bitmap font the overlay can lay text out with. */
type Font interface {
	Name() string
	// LineHeight is the distance between two baselines.
	LineHeight() int
	Baseline() int
	// AtlasSize is the size of the glyph atlas texture.
	AtlasSize() (width, height int)
	Glyph(r rune) (Glyph, bool)
	Kerning(first, second rune) int
}

// BuiltinFont is the 7x13 fixed face shipped with x/image. It needs no files
// on disk.
type BuiltinFont struct {
	face *basicfont.Face
}

func NewBuiltinFont() *BuiltinFont {
	return &BuiltinFont{face: basicfont.Face7x13}
}

func (f *BuiltinFont) Name() string {
	return "basic 7x13"
}

func (f *BuiltinFont) LineHeight() int {
	return f.face.Height
}

func (f *BuiltinFont) Baseline() int {
	return f.face.Ascent
}

func (f *BuiltinFont) AtlasSize() (int, int) {
	b := f.face.Mask.Bounds()
	return b.Dx(), b.Dy()
}

func (f *BuiltinFont) Glyph(r rune) (Glyph, bool) {
	for _, rr := range f.face.Ranges {
		if r < rr.Low || r >= rr.High {
			continue
		}
		index := int(r-rr.Low) + rr.Offset
		return Glyph{
			X:        0,
			Y:        index * f.face.Height,
			Width:    f.face.Width,
			Height:   f.face.Height,
			XOffset:  f.face.Left,
			XAdvance: f.face.Advance,
		}, true
	}
	return Glyph{}, false
}

func (f *BuiltinFont) Kerning(first, second rune) int {
	return 0
}

type kerningPair struct {
	first, second rune
}

// BitmapFont is an AngelCode BMFont loaded from a .fnt descriptor and its
// page images.
type BitmapFont struct {
	name       string
	lineHeight int
	baseline   int
	atlasW     int
	atlasH     int
	pages      []string
	glyphs     map[rune]Glyph
	kernings   map[kerningPair]int
}

// LoadBitmapFont reads a text .fnt file. The page images referenced by it
// must be next to it.
func LoadBitmapFont(path string) (*BitmapFont, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load bitmap font '%s': %w", path, err)
	}
	d := font.Descriptor

	f := &BitmapFont{
		name:       d.Info.Face,
		lineHeight: int(d.Common.LineHeight),
		baseline:   int(d.Common.Base),
		atlasW:     int(d.Common.ScaleW),
		atlasH:     int(d.Common.ScaleH),
		pages:      make([]string, len(d.Pages)),
		glyphs:     make(map[rune]Glyph, len(d.Chars)),
		kernings:   make(map[kerningPair]int, len(d.Kerning)),
	}
	for _, p := range d.Pages {
		if int(p.ID) >= len(f.pages) {
			return nil, fmt.Errorf("bitmap font '%s' page id %d out of range", path, p.ID)
		}
		f.pages[p.ID] = p.File
	}
	for _, g := range d.Chars {
		f.glyphs[rune(g.ID)] = Glyph{
			X:        int(g.X),
			Y:        int(g.Y),
			Width:    int(g.Width),
			Height:   int(g.Height),
			XOffset:  int(g.XOffset),
			YOffset:  int(g.YOffset),
			XAdvance: int(g.XAdvance),
			Page:     int(g.Page),
		}
	}
	for p, k := range d.Kerning {
		f.kernings[kerningPair{rune(p.First), rune(p.Second)}] = int(k.Amount)
	}
	return f, nil
}

func (f *BitmapFont) Name() string {
	return f.name
}

func (f *BitmapFont) LineHeight() int {
	return f.lineHeight
}

func (f *BitmapFont) Baseline() int {
	return f.baseline
}

func (f *BitmapFont) AtlasSize() (int, int) {
	return f.atlasW, f.atlasH
}

// Pages returns the page image file names indexed by page id.
func (f *BitmapFont) Pages() []string {
	return f.pages
}

func (f *BitmapFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

func (f *BitmapFont) Kerning(first, second rune) int {
	return f.kernings[kerningPair{first, second}]
}
