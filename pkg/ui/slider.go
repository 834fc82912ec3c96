package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// sliderLabelHeight is the room left above the bar for the label.
const sliderLabelHeight = 15.0

// Slider is a simple UI widget for a value in [Min, Max].
// The label and value are drawn above the bar.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	// Step rounds the value, 0 keeps it continuous. Use 1 for counts.
	Step float64
	X, Y float64 // top left, label included
	W, H float64 // bar size

	changed bool
}

// NewSlider creates a new slider instance, call Place to move it.
func NewSlider(w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		W:     w,
		H:     12,
	}
	s.Set(value)
	s.changed = false
	return s
}

func (s *Slider) Place(x, y float64) { s.X, s.Y = x, y }

func (s *Slider) GetHeight() float64 { return sliderLabelHeight + s.H + 10 }

func (s *Slider) barY() float64 { return s.Y + sliderLabelHeight }

// Set clamps and rounds v then stores it.
func (s *Slider) Set(v float64) {
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

// Pending is Changed without the reset.
func (s *Slider) Pending() bool { return s.changed }

// Update follows the mouse while the left button is held on the bar.
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || !cursorIn(s.X, s.barY(), s.W, s.H) {
		return
	}
	mx, _ := ebiten.CursorPosition()
	p := (float64(mx) - s.X) / s.W
	s.Set(s.Min + p*(s.Max-s.Min))
}

// Draw renders the label and the bar
func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, s.Text(), int(s.X), int(s.Y))

	y := float32(s.barY())
	vector.FillRect(screen, float32(s.X), y, float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), y, float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

// Text is the label with the current value.
func (s *Slider) Text() string {
	if s.Step >= 1 {
		return fmt.Sprintf("%s: %d", s.Label, int(s.Value))
	}
	return fmt.Sprintf("%s: %.3f", s.Label, s.Value)
}
