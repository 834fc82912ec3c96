package behavior

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// HandleFactory creates the visual handle of a new boid. reference is true
// for the first boid of a flock, the one placed at the sphere center.
type HandleFactory func(position geometry.Vector3D, reference bool) Handle

// DefaultHandleFactory creates bare Transforms.
func DefaultHandleFactory(position geometry.Vector3D, _ bool) Handle {
	return NewTransform(position, nil)
}

type flockOptions struct {
	settings   Settings
	rng        *rand.Rand
	directions []geometry.Vector3D
	forward    geometry.Vector3D
	newHandle  HandleFactory
}

// FlockOption customises NewFlock.
type FlockOption func(*flockOptions)

// WithSettings sets the initial Settings of every boid.
func WithSettings(s Settings) FlockOption {
	return func(o *flockOptions) { o.settings = s }
}

// WithRand sets the random source for seeding positions and velocities.
func WithRand(rng *rand.Rand) FlockOption {
	return func(o *flockOptions) { o.rng = rng }
}

// WithDirections sets the dodge direction set shared by every boid.
func WithDirections(dirs []geometry.Vector3D) FlockOption {
	return func(o *flockOptions) { o.directions = dirs }
}

// WithForward sets the local forward offset of the obstacle ray.
func WithForward(v geometry.Vector3D) FlockOption {
	return func(o *flockOptions) { o.forward = v }
}

// WithHandleFactory sets how boid handles are created.
func WithHandleFactory(f HandleFactory) FlockOption {
	return func(o *flockOptions) { o.newHandle = f }
}

// Flock owns a group of boids confined to a sphere and sharing one obstacle query.
type Flock struct {
	boids     []*Boid
	center    geometry.Vector3D
	radius    float64
	obstacles ObstacleQuery
}

// NewFlock creates count boids uniformly spread in the sphere of given
// radius resting on origin: the sphere center is origin + (0, radius, 0).
// The first boid is the reference boid placed exactly at the center.
func NewFlock(count int, obstacles ObstacleQuery, radius float64, origin geometry.Vector3D, opts ...FlockOption) (*Flock, error) {
	if count < 0 {
		return nil, fmt.Errorf("new flock with %d boids: %w", count, ErrInvalidCount)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("new flock with radius %v: %w", radius, ErrInvalidRadius)
	}

	o := flockOptions{
		settings:   DefaultSettings(),
		directions: defaultDirections,
		forward:    DefaultForward,
		newHandle:  DefaultHandleFactory,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f := &Flock{
		boids:     make([]*Boid, 0, count),
		center:    origin.Add(geometry.Vector3D{Y: radius}),
		radius:    radius,
		obstacles: obstacles,
	}
	for i := 0; i < count; i++ {
		position := f.center
		if i > 0 {
			position = geometry.RandomPointInSphere(o.rng, f.center, radius)
		}
		handle := o.newHandle(position, i == 0)
		f.boids = append(f.boids, NewBoid(handle, f.center, radius,
			WithBoidSettings(o.settings),
			WithBoidRand(o.rng),
			WithBoidDirections(o.directions),
			WithBoidForward(o.forward),
		))
	}
	return f, nil
}

// Update moves every boid one tick. Each boid sees the whole flock as
// neighbors, an O(n²) scan fine for tens of boids.
func (f *Flock) Update(dt float64) {
	for _, b := range f.boids {
		b.Update(dt, f.boids, f.obstacles)
	}
}

// ApplySettings gives every boid the same settings.
func (f *Flock) ApplySettings(s Settings) {
	for _, b := range f.boids {
		b.Settings = s
	}
}

// Tune edits the settings of every boid in place, e.g. to change a single value.
func (f *Flock) Tune(edit func(*Settings)) {
	for _, b := range f.boids {
		edit(&b.Settings)
	}
}

// Destroy releases every boid. Calling it twice is harmless.
func (f *Flock) Destroy() {
	for _, b := range f.boids {
		b.Destroy()
	}
	f.boids = nil
}

// Boids returns the members in iteration order. The slice must not be modified.
func (f *Flock) Boids() []*Boid { return f.boids }

func (f *Flock) Len() int { return len(f.boids) }

// Center is the center of the containment sphere.
func (f *Flock) Center() geometry.Vector3D { return f.center }

func (f *Flock) Radius() float64 { return f.radius }

func (f *Flock) Obstacles() ObstacleQuery { return f.obstacles }
