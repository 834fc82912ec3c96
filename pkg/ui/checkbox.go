package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox toggles a boolean. Clicking the box or its label both work.
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64
}

func NewCheckbox(label string, value bool) *Checkbox {
	return &Checkbox{Label: label, Value: value, Size: 16}
}

func (c *Checkbox) Place(x, y float64) { c.X, c.Y = x, y }

func (c *Checkbox) GetHeight() float64 { return c.Size + 5 }

// labelX is where the label starts, right of the box.
func (c *Checkbox) labelX() float64 { return c.X + c.Size + 8 }

func (c *Checkbox) Update() {
	w := c.labelX() - c.X + float64(len(c.Label)*debugGlyphWidth)
	if cursorIn(c.X, c.Y, w, c.Size) && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		c.Value = !c.Value
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen, float32(c.X), float32(c.Y), float32(c.Size), float32(c.Size),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	if c.Value {
		vector.FillRect(screen, float32(c.X+4), float32(c.Y+4), float32(c.Size-8), float32(c.Size-8),
			color.RGBA{R: 100, G: 200, B: 100, A: 255}, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.labelX()), int(c.Y))
}
