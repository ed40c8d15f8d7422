// Package palette turns the configured layer colors into the tints the
// renderer draws each instance layer with.
package palette

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
)

// GlassAlpha is the opacity glass is drawn with; the other layers are opaque.
const GlassAlpha = 0.55

// Palette holds one color per instance layer plus the clear color.
type Palette struct {
	Layers     [memory.NumLayers]color.RGBA
	Background color.RGBA
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toRGBA(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(clamp(alpha, 0, 1)*255 + 0.5)}
}

// FromConfig parses the hex layer colors. The background is a pale,
// desaturated version of the glass color.
func FromConfig(c config.Colors) (Palette, error) {
	var p Palette
	hexes := [memory.NumLayers]string{
		memory.LayerGlass:    c.Glass,
		memory.LayerFrame:    c.Frame,
		memory.LayerOverhang: c.Overhang,
	}
	var glass colorful.Color
	for l, hex := range hexes {
		col, err := colorful.Hex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("%s color %q: %w", memory.Layer(l), hex, err)
		}
		alpha := 1.0
		if memory.Layer(l) == memory.LayerGlass {
			alpha = GlassAlpha
			glass = col
		}
		p.Layers[l] = toRGBA(col, alpha)
	}

	h, s, v := glass.Hsv()
	p.Background = toRGBA(colorful.Hsv(h, clamp(s*0.2, 0, 1), clamp(v+0.4, 0, 0.97)), 1)
	return p, nil
}

// Tint returns the layer color as normalized RGBA for a shader uniform.
func (p Palette) Tint(l memory.Layer) [4]float32 {
	return normalized(p.Layers[l])
}

// Clear returns the background as normalized RGBA.
func (p Palette) Clear() [4]float32 {
	return normalized(p.Background)
}

func normalized(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}
