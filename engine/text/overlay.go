package text

import (
	"github.com/spaghettifunk/immediate/engine/math"
	"github.com/spaghettifunk/immediate/engine/renderer"
	"github.com/spaghettifunk/immediate/engine/renderer/immediate"
	"github.com/spaghettifunk/immediate/engine/renderer/metadata"
)

// Replacement runes tried, in order, for runes the font has no glyph for.
var fallbackRunes = []rune{'?', '�'}

/**
 * @brief Lays text out as textured quads in an immediate geometry buffer.
 * Positions are in pixels with y growing downwards, then transformed by the
 * matrix given to DrawString. Each glyph is two triangles.
 */
type Overlay struct {
	font     Font
	geometry *immediate.ImmediateGeometry
}

func NewOverlay(font Font, geometry *immediate.ImmediateGeometry) *Overlay {
	geometry.SetPrimitiveType(metadata.PrimitiveTopologyTriangleList)
	return &Overlay{
		font:     font,
		geometry: geometry,
	}
}

func (o *Overlay) Font() Font {
	return o.font
}

func (o *Overlay) Geometry() *immediate.ImmediateGeometry {
	return o.geometry
}

// Begin discards the text of the previous frame.
func (o *Overlay) Begin() {
	o.geometry.Reset()
}

func (o *Overlay) glyph(r rune) (Glyph, bool) {
	if g, ok := o.font.Glyph(r); ok {
		return g, true
	}
	for _, f := range fallbackRunes {
		if g, ok := o.font.Glyph(f); ok {
			return g, true
		}
	}
	return Glyph{}, false
}

/**
 * @brief Appends the quads of text. Returns the number of glyphs emitted;
 * glyphs that do not fit in the geometry buffer are dropped by it.
 */
func (o *Overlay) DrawString(text string, transform math.Mat4, color math.Vec4) int {
	atlasW, atlasH := o.font.AtlasSize()
	fw, fh := float32(atlasW), float32(atlasH)

	emitted := 0
	penX, penY := 0, 0
	var previous rune
	for _, r := range text {
		if r == '\n' {
			penX = 0
			penY += o.font.LineHeight()
			previous = 0
			continue
		}
		g, ok := o.glyph(r)
		if !ok {
			continue
		}
		if previous != 0 {
			penX += o.font.Kerning(previous, r)
		}
		previous = r

		if g.Width > 0 && g.Height > 0 {
			x0 := float32(penX + g.XOffset)
			y0 := float32(penY + g.YOffset)
			x1 := x0 + float32(g.Width)
			y1 := y0 + float32(g.Height)

			u0 := float32(g.X) / fw
			v0 := float32(g.Y) / fh
			u1 := float32(g.X+g.Width) / fw
			v1 := float32(g.Y+g.Height) / fh

			o.quad(transform, color,
				math.NewVec3(x0, y0, 0), math.NewVec3(x1, y1, 0),
				math.NewVec2(u0, v0), math.NewVec2(u1, v1))
			emitted++
		}
		penX += g.XAdvance
	}
	return emitted
}

func (o *Overlay) quad(transform math.Mat4, color math.Vec4, lo, hi math.Vec3, uvMin, uvMax math.Vec2) {
	topLeft := lo.Transform(transform)
	topRight := math.NewVec3(hi.X, lo.Y, 0).Transform(transform)
	bottomLeft := math.NewVec3(lo.X, hi.Y, 0).Transform(transform)
	bottomRight := hi.Transform(transform)

	o.geometry.AddPositionColorTexCoords(topLeft, color, uvMin)
	o.geometry.AddPositionColorTexCoords(topRight, color, math.NewVec2(uvMax.X, uvMin.Y))
	o.geometry.AddPositionColorTexCoords(bottomLeft, color, math.NewVec2(uvMin.X, uvMax.Y))

	o.geometry.AddPositionColorTexCoords(topRight, color, math.NewVec2(uvMax.X, uvMin.Y))
	o.geometry.AddPositionColorTexCoords(bottomRight, color, uvMax)
	o.geometry.AddPositionColorTexCoords(bottomLeft, color, math.NewVec2(uvMin.X, uvMax.Y))
}

// Measure returns the pixel extents text would cover when drawn untransformed.
func (o *Overlay) Measure(text string) math.Extents2D {
	extents := math.Extents2D{}
	penX := 0
	width := 0
	lines := 1
	var previous rune
	for _, r := range text {
		if r == '\n' {
			penX = 0
			lines++
			previous = 0
			continue
		}
		g, ok := o.glyph(r)
		if !ok {
			continue
		}
		if previous != 0 {
			penX += o.font.Kerning(previous, r)
		}
		previous = r
		penX += g.XAdvance
		if penX > width {
			width = penX
		}
	}
	extents.Max = math.NewVec2(float32(width), float32(lines*o.font.LineHeight()))
	return extents
}

// Execute draws the text collected since Begin.
func (o *Overlay) Execute(pipeline renderer.Pipeline, params metadata.ParameterManager) error {
	return o.geometry.Execute(pipeline, params)
}
