package simulation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/scene"
	golog "github.com/tochemey/goakt/v3/log"
)

// Observer is called after every Aquarium update, in registration order.
// It replaces wrapping the update method of a flock to hook extra work.
type Observer interface {
	AfterUpdate(a *Aquarium, dt float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(a *Aquarium, dt float64)

func (f ObserverFunc) AfterUpdate(a *Aquarium, dt float64) { f(a, dt) }

type namedFlock struct {
	name  string
	flock *behavior.Flock
}

// Aquarium owns every flock of the world and the scene they avoid.
// It is synchronous: the caller drives Update from its own loop.
type Aquarium struct {
	logger     golog.Logger
	scene      *scene.Scene
	settings   behavior.Settings
	directions []geometry.Vector3D
	rng        *rand.Rand

	flocks    []namedFlock
	observers []Observer
	tick      uint64
}

// NewAquarium creates an empty aquarium. A nil scene means no obstacles,
// a seed of 0 picks a random one.
func NewAquarium(sc *scene.Scene, settings behavior.Settings, seed uint64, logger golog.Logger) *Aquarium {
	if sc == nil {
		sc = scene.New()
	}
	if logger == nil {
		logger = golog.DiscardLogger
	}
	return &Aquarium{
		logger:     logger,
		scene:      sc,
		settings:   settings,
		directions: geometry.SphereDirections(behavior.DefaultDirectionCount),
		rng:        newRand(seed),
	}
}

// NewAquariumFromConfig builds the scene and every configured flock.
func NewAquariumFromConfig(cfg *Config, logger golog.Logger) (*Aquarium, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc, err := NewScene(cfg.Obstacles)
	if err != nil {
		return nil, err
	}
	a := NewAquarium(sc, cfg.Settings, cfg.Seed, logger)
	a.directions = geometry.SphereDirections(cfg.AvoidanceDirections)
	for _, fc := range cfg.Flocks {
		if _, err := a.AddFlock(fc); err != nil {
			a.RemoveFlocks()
			return nil, err
		}
	}
	a.logger.Infof("aquarium ready: %d flocks, %d boids, %s", len(a.flocks), a.Len(), sc)
	return a, nil
}

// NewScene indexes the configured obstacles.
func NewScene(obstacles []ObstacleConfig) (*scene.Scene, error) {
	sc := scene.New()
	for _, o := range obstacles {
		var (
			shape scene.Shape
			err   error
		)
		switch o.Kind {
		case ObstacleSphere:
			shape, err = scene.NewSphereObstacle(o.Name, o.Center, o.Radius)
		case ObstacleBox:
			shape, err = scene.NewBoxObstacle(o.Name, o.Min, o.Max)
		default:
			err = fmt.Errorf("obstacle kind %q: %w", o.Kind, ErrInvalidConfig)
		}
		if err != nil {
			return nil, fmt.Errorf("obstacle %q: %w", o.Name, err)
		}
		sc.Add(shape)
	}
	return sc, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AddFlock creates a flock in the aquarium scene. Names must be unique.
func (a *Aquarium) AddFlock(fc FlockConfig) (*behavior.Flock, error) {
	if _, ok := a.Flock(fc.Name); ok {
		return nil, fmt.Errorf("add flock %q: %w", fc.Name, ErrDuplicateFlock)
	}
	settings := a.settings
	if fc.Settings != nil {
		settings = *fc.Settings
	}
	f, err := behavior.NewFlock(fc.Count, a.scene, fc.Radius, fc.Origin,
		behavior.WithSettings(settings),
		behavior.WithRand(a.rng),
		behavior.WithDirections(a.directions),
	)
	if err != nil {
		return nil, fmt.Errorf("add flock %q: %w", fc.Name, err)
	}
	a.flocks = append(a.flocks, namedFlock{name: fc.Name, flock: f})
	a.logger.Debugf("flock %s: %d boids around %s", fc.Name, f.Len(), f.Center())
	return f, nil
}

// RemoveFlock destroys one flock.
func (a *Aquarium) RemoveFlock(name string) error {
	for i, nf := range a.flocks {
		if nf.name == name {
			nf.flock.Destroy()
			a.flocks = append(a.flocks[:i], a.flocks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove flock %q: %w", name, ErrUnknownFlock)
}

// RemoveFlocks destroys every flock. The scene is kept.
func (a *Aquarium) RemoveFlocks() {
	for _, nf := range a.flocks {
		nf.flock.Destroy()
	}
	a.flocks = nil
}

// Update advances every flock by one tick then runs the observers.
func (a *Aquarium) Update(dt float64) {
	for _, nf := range a.flocks {
		nf.flock.Update(dt)
	}
	a.tick++
	for _, o := range a.observers {
		o.AfterUpdate(a, dt)
	}
}

// ApplySettings replaces the settings of every boid and of flocks added later.
func (a *Aquarium) ApplySettings(s behavior.Settings) {
	a.settings = s
	for _, nf := range a.flocks {
		nf.flock.ApplySettings(s)
	}
}

// Tune edits the settings of every boid in place.
func (a *Aquarium) Tune(edit func(*behavior.Settings)) {
	edit(&a.settings)
	for _, nf := range a.flocks {
		nf.flock.Tune(edit)
	}
}

// TuneSettings changes only the keys of p, on every boid and on the
// settings of flocks added later. Other keys keep their per flock value.
// A flock that rejects p is left as it was and reported in the error.
func (a *Aquarium) TuneSettings(p SettingsPatch) error {
	if err := p.Apply(&a.settings); err != nil {
		return err
	}
	var errs []error
	for _, nf := range a.flocks {
		if err := tuneFlock(nf.flock, p); err != nil {
			errs = append(errs, fmt.Errorf("flock %q: %w", nf.name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *Aquarium) Observe(o Observer) {
	a.observers = append(a.observers, o)
}

// Snapshot copies the state of every flock.
func (a *Aquarium) Snapshot() *Snapshot {
	s := &Snapshot{Tick: a.tick, Flocks: make([]FlockState, 0, len(a.flocks))}
	for _, nf := range a.flocks {
		s.Flocks = append(s.Flocks, NewFlockState(nf.name, a.tick, nf.flock))
	}
	return s
}

func (a *Aquarium) Flock(name string) (*behavior.Flock, bool) {
	for _, nf := range a.flocks {
		if nf.name == name {
			return nf.flock, true
		}
	}
	return nil, false
}

// FlockNames lists the flocks in creation order.
func (a *Aquarium) FlockNames() []string {
	names := make([]string, len(a.flocks))
	for i, nf := range a.flocks {
		names[i] = nf.name
	}
	return names
}

// Len is the total number of boids.
func (a *Aquarium) Len() int {
	n := 0
	for _, nf := range a.flocks {
		n += nf.flock.Len()
	}
	return n
}

func (a *Aquarium) Scene() *scene.Scene { return a.scene }

func (a *Aquarium) Settings() behavior.Settings { return a.settings }

func (a *Aquarium) Tick() uint64 { return a.tick }
