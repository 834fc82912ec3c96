package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// debugGlyphWidth is the advance of ebitenutil's debug font.
const debugGlyphWidth = 6

// Button runs OnClick once per left click, on press.
type Button struct {
	Label         string
	X, Y          float64
	Width, Height float64
	OnClick       func()

	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a button, call Place to move it.
func NewButton(width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		Width:      width,
		Height:     height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Place(x, y float64) { b.X, b.Y = x, y }

func (b *Button) GetHeight() float64 { return b.Height + 8 }

func (b *Button) hovered() bool {
	return cursorIn(b.X, b.Y, b.Width, b.Height)
}

func (b *Button) Update() {
	if b.OnClick != nil && b.hovered() && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		b.OnClick()
	}
}

// Draw renders the button with its label centered.
func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if b.hovered() {
		bg = b.HoverColor
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	textX := b.X + (b.Width-float64(len(b.Label)*debugGlyphWidth))/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(max(textX, b.X+4)), int(b.Y+b.Height/2-8))
}

// cursorIn reports whether the mouse is over the given rectangle.
func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	return float64(mx) >= x && float64(mx) <= x+w &&
		float64(my) >= y && float64(my) <= y+h
}
