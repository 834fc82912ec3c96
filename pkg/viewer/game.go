// Package viewer draws a running simulation with ebiten and exposes the
// boid settings on a panel so they can be tuned while the flocks swim.
package viewer

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/scene"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/ui"
)

const (
	panelWidth = 280

	// indices are uint16, flush before they overflow
	maxBatchVertices = 3 * 20000
)

// Driver is what the viewer needs from a simulation.
// Both *simulation.Aquarium and *simulation.World satisfy it.
type Driver interface {
	Update(dt float64)
	Snapshot() *simulation.Snapshot
	Settings() behavior.Settings
	TuneSettings(p simulation.SettingsPatch) error
	Scene() *scene.Scene
}

var (
	_ Driver = (*simulation.Aquarium)(nil)
	_ Driver = (*simulation.World)(nil)
)

// whiteImage is the source texture of every boid triangle.
var whiteImage = ebiten.NewImage(3, 3)

func init() {
	whiteImage.Fill(color.White)
}

// one color per flock, cycled
var palette = []color.RGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 170, B: 60, A: 255},
	{R: 130, G: 230, B: 120, A: 255},
	{R: 240, G: 110, B: 160, A: 255},
	{R: 200, G: 180, B: 255, A: 255},
	{R: 250, G: 240, B: 110, A: 255},
}

// tunable binds a panel slider to the settings key it edits.
type tunable struct {
	slider *ui.Slider
	key    string
}

type Game struct {
	driver   Driver
	cfg      *simulation.Config
	dt       float64
	lastSnap *simulation.Snapshot

	panel *ui.UIPanel

	widgetMinSpeed       *ui.Slider
	widgetMaxSpeed       *ui.Slider
	widgetSamples        *ui.Slider
	widgetCohesion       *ui.Slider
	widgetSeparation     *ui.Slider
	widgetAlignment      *ui.Slider
	widgetVisionRange    *ui.Slider
	widgetWander         *ui.Slider
	widgetZoom           *ui.Slider
	widgetShowBoundaries *ui.Checkbox
	widgetShowObstacles  *ui.Checkbox
	widgetSideView       *ui.Checkbox
	tunables             []tunable
	tuneErr              error // last rejected edit, shown until the next one

	// boid triangles, drawn in batches
	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame builds the viewer of driver, laid out according to cfg.
func NewGame(driver Driver, cfg *simulation.Config) *Game {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	g := &Game{
		driver:   driver,
		cfg:      cfg,
		dt:       1 / float64(tickRate),
		lastSnap: &simulation.Snapshot{},
		panel:    ui.NewUIPanel(10, 10, panelWidth, float64(cfg.ScreenHeight)-20),
	}
	s := driver.Settings()

	g.panel.AddSection("Boids")
	g.widgetMinSpeed = g.panel.AddSlider("Min Speed", 0.001, 0.2, s.MinSpeed)
	g.widgetMaxSpeed = g.panel.AddSlider("Max Speed", 0.001, 0.2, s.MaxSpeed)
	g.widgetSamples = g.panel.AddSlider("Smoothing Samples", 0, 20, float64(s.NumSamplesForSmoothing))
	g.widgetSamples.Step = 1
	g.widgetVisionRange = g.panel.AddSlider("Vision Range", 0.1, 5, s.VisionRange)
	g.panel.EndSection()

	g.panel.AddSection("Weights")
	g.widgetCohesion = g.panel.AddSlider("Cohesion", 0, 2, s.CohesionWeight)
	g.widgetSeparation = g.panel.AddSlider("Separation", 0, 2, s.SeparationWeight)
	g.widgetAlignment = g.panel.AddSlider("Alignment", 0, 2, s.AlignmentWeight)
	g.widgetWander = g.panel.AddSlider("Wander", 0, 2, s.WanderWeight)
	g.panel.AddButton("Reset Settings", g.resetSettings)
	g.panel.EndSection()

	g.panel.AddSection("Visualization")
	g.widgetZoom = g.panel.AddSlider("Zoom", 1, 30, cfg.Scale)
	g.widgetShowBoundaries = g.panel.AddCheckbox("Show Boundaries", cfg.ShowBoundaries)
	g.widgetShowObstacles = g.panel.AddCheckbox("Show Obstacles", true)
	g.widgetSideView = g.panel.AddCheckbox("Side View", false)
	g.panel.EndSection()

	g.tunables = []tunable{
		{g.widgetMinSpeed, "minSpeed"},
		{g.widgetMaxSpeed, "maxSpeed"},
		{g.widgetSamples, "numSamplesForSmoothing"},
		{g.widgetVisionRange, "visionRange"},
		{g.widgetCohesion, "cohesionWeight"},
		{g.widgetSeparation, "separationWeight"},
		{g.widgetAlignment, "alignmentWeight"},
		{g.widgetWander, "wanderWeight"},
	}
	return g
}

// resetSettings puts the configured settings back on every flock.
func (g *Game) resetSettings() {
	s := g.cfg.Settings
	g.widgetMinSpeed.Set(s.MinSpeed)
	g.widgetMaxSpeed.Set(s.MaxSpeed)
	g.widgetSamples.Set(float64(s.NumSamplesForSmoothing))
	g.widgetVisionRange.Set(s.VisionRange)
	g.widgetCohesion.Set(s.CohesionWeight)
	g.widgetSeparation.Set(s.SeparationWeight)
	g.widgetAlignment.Set(s.AlignmentWeight)
	g.widgetWander.Set(s.WanderWeight)
}

// applyPanel sends the values that moved, and only those, to every boid,
// so flocks keep their own value for everything else.
func (g *Game) applyPanel() {
	// keep the speed range ordered by dragging the other end along
	if g.widgetMinSpeed.Value > g.widgetMaxSpeed.Value {
		if g.widgetMaxSpeed.Pending() {
			g.widgetMinSpeed.Set(g.widgetMaxSpeed.Value)
		} else {
			g.widgetMaxSpeed.Set(g.widgetMinSpeed.Value)
		}
	}

	patch := simulation.SettingsPatch{}
	for _, t := range g.tunables {
		if !t.slider.Changed() {
			continue
		}
		if t.slider.Step >= 1 {
			patch[t.key] = int(t.slider.Value)
		} else {
			patch[t.key] = t.slider.Value
		}
	}
	if len(patch) == 0 {
		return
	}
	g.tuneErr = g.driver.TuneSettings(patch)
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	g.applyPanel()
	g.driver.Update(g.dt)
	if snap := g.driver.Snapshot(); snap != nil {
		g.lastSnap = snap
	}
	return nil
}

// project maps a world position to screen coordinates, looking down the Y
// axis or, in side view, along the Z axis.
func (g *Game) project(p geometry.Vector3D) (float32, float32) {
	cx := float64(g.cfg.ScreenWidth+panelWidth) / 2
	cy := float64(g.cfg.ScreenHeight) / 2
	scale := g.widgetZoom.Value
	if g.widgetSideView.Value {
		return float32(cx + p.X*scale), float32(cy - p.Y*scale)
	}
	return float32(cx + p.X*scale), float32(cy + p.Z*scale)
}

func (g *Game) planar(v geometry.Vector3D) (float64, float64) {
	if g.widgetSideView.Value {
		return v.X, -v.Y
	}
	return v.X, v.Z
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	if g.widgetShowObstacles.Value {
		g.drawObstacles(screen)
	}

	for i, f := range g.lastSnap.Flocks {
		clr := palette[i%len(palette)]
		if g.widgetShowBoundaries.Value {
			x, y := g.project(f.Center)
			bc := clr
			bc.A = 80
			vector.StrokeCircle(screen, x, y, float32(f.Radius*g.widgetZoom.Value), 1, bc, true)
		}
		for _, a := range f.Agents {
			if len(g.vertices) >= maxBatchVertices {
				g.flush(screen)
			}
			g.appendBoid(a, clr)
		}
	}
	g.flush(screen)

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nTick: %d\nBoids: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastSnap.Tick,
		g.lastSnap.Len(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.cfg.ScreenWidth-150, 10)
	if g.tuneErr != nil {
		ebitenutil.DebugPrintAt(screen, g.tuneErr.Error(), panelWidth+20, g.cfg.ScreenHeight-20)
	}
}

func (g *Game) drawObstacles(screen *ebiten.Image) {
	clr := color.RGBA{R: 150, G: 150, B: 160, A: 160}
	scale := float32(g.widgetZoom.Value)
	for _, shape := range g.driver.Scene().Obstacles() {
		switch o := shape.(type) {
		case *scene.SphereObstacle:
			x, y := g.project(o.Center())
			vector.StrokeCircle(screen, x, y, float32(o.Radius())*scale, 1.5, clr, true)
		default:
			x0, y0 := g.project(shape.Min())
			x1, y1 := g.project(shape.Max())
			vector.StrokeRect(screen, min(x0, x1), min(y0, y1), abs32(x1-x0), abs32(y1-y0), 1.5, clr, true)
		}
	}
}

// appendBoid adds the triangle of one boid, pointing along its heading.
func (g *Game) appendBoid(a simulation.AgentState, clr color.RGBA) {
	hx, hy := g.planar(a.Heading)
	if hx == 0 && hy == 0 {
		hx, hy = g.planar(a.Velocity)
	}
	angle := math.Atan2(hy, hx)
	x, y := g.project(a.Position)
	px, py := float64(x), float64(y)

	r, gr, b := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255
	vertex := func(vx, vy float64) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(vx), DstY: float32(vy),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
		}
	}

	base := uint16(len(g.vertices))
	g.vertices = append(g.vertices,
		vertex(px+math.Cos(angle)*6, py+math.Sin(angle)*6),
		vertex(px+math.Cos(angle+2.5)*4, py+math.Sin(angle+2.5)*4),
		vertex(px+math.Cos(angle-2.5)*4, py+math.Sin(angle-2.5)*4),
	)
	g.indices = append(g.indices, base, base+1, base+2)
}

func (g *Game) flush(screen *ebiten.Image) {
	if len(g.indices) > 0 {
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	}
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.ScreenWidth, g.cfg.ScreenHeight }
