package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
)

// UIWidget is an interface for all UI widgets. Widgets draw their own label.
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
	// Place moves the widget to the given top left corner.
	Place(x, y float64)
}

var (
	_ UIWidget = (*Slider)(nil)
	_ UIWidget = (*Checkbox)(nil)
	_ UIWidget = (*Button)(nil)
)

// UIPanel manages a collection of UI widgets in a scrollable panel
// split in collapsible sections.
type UIPanel struct {
	X, Y          float64 // Panel position
	Width, Height float64 // Panel dimensions
	Title         string
	Widgets       []UIWidget
	ScrollOffset  float64 // Current scroll position
	Visible       bool

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []PanelSection
	tops     []float64 // placed y of each widget
}

// PanelSection represents a collapsible section in the panel
type PanelSection struct {
	Title      string
	StartIndex int // Widget index where this section starts
	EndIndex   int // Widget index where this section ends (exclusive)
	Collapsed  bool
	headerY    float64
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       "Configuration",
		Visible:     true,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a section, closing the previous one.
func (p *UIPanel) AddSection(title string) {
	p.EndSection()
	p.sections = append(p.sections, PanelSection{
		Title:      title,
		StartIndex: len(p.Widgets),
		EndIndex:   -1,
	})
}

// EndSection closes the current section
func (p *UIPanel) EndSection() {
	if n := len(p.sections); n > 0 && p.sections[n-1].EndIndex < 0 {
		p.sections[n-1].EndIndex = len(p.Widgets)
	}
}

// AddSlider adds a slider widget to the panel
func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	slider := NewSlider(p.Width-20, label, min, max, value)
	p.Add(slider)
	return slider
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	checkbox := NewCheckbox(label, value)
	p.Add(checkbox)
	return checkbox
}

// AddButton adds a full width button to the panel
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	button := NewButton(p.Width-20, 20, label, onClick)
	p.Add(button)
	return button
}

// Add appends any widget to the current section.
func (p *UIPanel) Add(w UIWidget) {
	p.Widgets = append(p.Widgets, w)
	p.tops = append(p.tops, 0)
	p.layout()
}

// layout places every visible widget and section header, taking the
// scroll offset and collapsed sections into account.
func (p *UIPanel) layout() {
	currentY := p.Y + titleHeight - p.ScrollOffset
	for i := range p.sections {
		s := &p.sections[i]
		s.headerY = currentY
		currentY += sectionHeight
		if s.Collapsed {
			continue
		}
		for idx := s.StartIndex; idx < p.sectionEnd(s); idx++ {
			p.Widgets[idx].Place(p.X+10, currentY)
			p.tops[idx] = currentY
			currentY += p.Widgets[idx].GetHeight()
		}
	}
}

func (p *UIPanel) sectionEnd(s *PanelSection) int {
	if s.EndIndex < 0 || s.EndIndex > len(p.Widgets) {
		return len(p.Widgets)
	}
	return s.EndIndex
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	if !p.Visible {
		return
	}

	// Handle scroll
	_, dy := ebiten.Wheel()
	if dy != 0 {
		p.ScrollOffset -= dy * 20

		maxScroll := p.calculateTotalHeight() - p.Height + 40
		if maxScroll < 0 {
			maxScroll = 0
		}
		if p.ScrollOffset < 0 {
			p.ScrollOffset = 0
		}
		if p.ScrollOffset > maxScroll {
			p.ScrollOffset = maxScroll
		}
	}
	p.layout()

	// Toggle sections by clicking their header
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for i := range p.sections {
			s := &p.sections[i]
			if p.isVisible(s.headerY) && cursorIn(p.X, s.headerY, p.Width, 20) {
				s.Collapsed = !s.Collapsed
				p.layout()
				break
			}
		}
	}

	// Update visible widgets only, hidden or scrolled out ones keep their values
	for i := range p.sections {
		s := &p.sections[i]
		if s.Collapsed {
			continue
		}
		for idx := s.StartIndex; idx < p.sectionEnd(s); idx++ {
			if p.isVisible(p.tops[idx]) {
				p.Widgets[idx].Update()
			}
		}
	}
}

func (p *UIPanel) isVisible(y float64) bool {
	return y >= p.Y+titleHeight-5 && y <= p.Y+p.Height-10
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	if !p.Visible {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	for i := range p.sections {
		s := &p.sections[i]
		if p.isVisible(s.headerY) {
			vector.FillRect(screen,
				float32(p.X+5), float32(s.headerY),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			marker := "- "
			if s.Collapsed {
				marker = "+ "
			}
			ebitenutil.DebugPrintAt(screen, marker+s.Title, int(p.X+10), int(s.headerY+3))
		}
		if s.Collapsed {
			continue
		}
		for idx := s.StartIndex; idx < p.sectionEnd(s); idx++ {
			if p.isVisible(p.tops[idx]) {
				p.Widgets[idx].Draw(screen)
			}
		}
	}
}

// calculateTotalHeight calculates the total content height
func (p *UIPanel) calculateTotalHeight() float64 {
	height := titleHeight + float64(len(p.sections))*sectionHeight
	for i := range p.sections {
		s := &p.sections[i]
		if s.Collapsed {
			continue
		}
		for idx := s.StartIndex; idx < p.sectionEnd(s); idx++ {
			height += p.Widgets[idx].GetHeight()
		}
	}
	return height
}
