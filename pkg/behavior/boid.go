package behavior

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

const (
	// wanderReachDistance is how close a boid gets before picking a new wander target.
	wanderReachDistance = 5.0
	// wanderRetargetTicks forces a new wander target after this many ticks.
	wanderRetargetTicks = 500
)

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
//
// Each tick a boid sums steering forces (containment, alignment, cohesion,
// separation, obstacle avoidance) into its acceleration, integrates it and
// turns its Handle along a smoothed heading.
type Boid struct {
	Settings Settings

	handle       Handle
	position     geometry.Vector3D
	velocity     geometry.Vector3D
	acceleration geometry.Vector3D
	history      velocityHistory

	boundaryOrigin geometry.Vector3D
	boundaryRadius float64

	// forward is the local direction of the obstacle ray, rotated by the handle orientation.
	forward    geometry.Vector3D
	directions []geometry.Vector3D

	rng          *rand.Rand
	wanderTarget geometry.Vector3D
	wanderTicks  int

	velocitySet bool
}

// BoidOption customises a boid at creation.
type BoidOption func(*Boid)

// WithBoidSettings replaces DefaultSettings.
func WithBoidSettings(s Settings) BoidOption {
	return func(b *Boid) { b.Settings = s }
}

// WithBoidRand sets the random source used for the initial velocity and wandering.
func WithBoidRand(rng *rand.Rand) BoidOption {
	return func(b *Boid) { b.rng = rng }
}

// WithVelocity sets the initial velocity instead of a random one.
func WithVelocity(v geometry.Vector3D) BoidOption {
	return func(b *Boid) {
		b.velocity = v
		b.velocitySet = true
	}
}

// WithBoidDirections sets the directions cast to dodge an obstacle.
func WithBoidDirections(dirs []geometry.Vector3D) BoidOption {
	return func(b *Boid) { b.directions = dirs }
}

// WithBoidForward sets the local forward offset used for the obstacle ray.
func WithBoidForward(v geometry.Vector3D) BoidOption {
	return func(b *Boid) { b.forward = v }
}

// DefaultForward is the local axis a Handle faces after LookAt.
var DefaultForward = geometry.Vector3D{X: 0, Y: 0, Z: 1}

// DefaultDirectionCount is the size of the default dodge direction set.
const DefaultDirectionCount = 100

var defaultDirections = geometry.SphereDirections(DefaultDirectionCount)

// NewBoid creates a boid bound to handle, contained in the sphere of given
// origin and radius. Its position is read from the handle.
func NewBoid(handle Handle, origin geometry.Vector3D, radius float64, opts ...BoidOption) *Boid {
	b := &Boid{
		Settings:       DefaultSettings(),
		handle:         handle,
		position:       handle.Position(),
		boundaryOrigin: origin,
		boundaryRadius: radius,
		forward:        DefaultForward,
		directions:     defaultDirections,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if !b.velocitySet {
		b.velocity = geometry.RandomVectorInCube(b.rng, 1)
	}
	b.wanderTarget = b.randomWanderTarget()
	return b
}

// ID is the identifier of the boid's handle.
func (b *Boid) ID() string { return b.handle.ID() }

func (b *Boid) Handle() Handle { return b.handle }

func (b *Boid) Position() geometry.Vector3D { return b.position }

func (b *Boid) Velocity() geometry.Vector3D { return b.velocity }

// SetPosition moves the boid and its handle.
func (b *Boid) SetPosition(p geometry.Vector3D) {
	b.position = p
	b.handle.SetPosition(p)
}

// SetVelocity replaces the current velocity; it is clamped on the next tick.
func (b *Boid) SetVelocity(v geometry.Vector3D) {
	b.velocity = v
}

// BoundaryOrigin and BoundaryRadius define the containment sphere.
func (b *Boid) BoundaryOrigin() geometry.Vector3D { return b.boundaryOrigin }
func (b *Boid) BoundaryRadius() float64 { return b.boundaryRadius }

// Heading is the facing direction of the handle in world space.
func (b *Boid) Heading() geometry.Vector3D {
	return b.handle.Quaternion().Rotate(b.forward).Normalize()
}

// Update calculates the next position based on neighbors and obstacles.
// neighbors may contain the boid itself, it is skipped by identity.
// A nil obstacles query disables avoidance.
func (b *Boid) Update(dt float64, neighbors []*Boid, obstacles ObstacleQuery) {
	b.wanderTicks++

	b.acceleration = b.acceleration.Add(b.containment(dt))
	b.acceleration = b.acceleration.Add(b.alignment(dt, neighbors).Mul(b.Settings.AlignmentWeight))
	b.acceleration = b.acceleration.Add(b.cohesion(dt, neighbors).Mul(b.Settings.CohesionWeight))
	b.acceleration = b.acceleration.Add(b.separation(dt, neighbors).Mul(b.Settings.SeparationWeight))
	b.acceleration = b.acceleration.Add(b.avoidObstacles(dt, obstacles))
	if b.Settings.WanderWeight > 0 {
		b.acceleration = b.acceleration.Add(b.wander(dt).Mul(b.Settings.WanderWeight))
	}

	b.integrate()
	b.lookWhereGoing()
}

// Destroy releases the handle. The boid must not be updated afterwards.
func (b *Boid) Destroy() {
	if b.handle != nil {
		b.handle.Dispose()
	}
}

// ---------------------------------------------------------------------
// Steering behaviors
// ---------------------------------------------------------------------

// steer turns a desired direction into a steering vector: the change of
// velocity needed to go that way at MaxSpeed, bounded by the max force.
func (b *Boid) steer(dt float64, direction geometry.Vector3D) geometry.Vector3D {
	direction = direction.Normalize()
	if direction.IsZero() {
		return geometry.Zero
	}
	desired := direction.Mul(b.Settings.MaxSpeed)
	return desired.Sub(b.velocity).ClampLength(0, b.Settings.maxForce(dt))
}

// seek steers toward target. Zero when the boid already sits on it.
func (b *Boid) seek(dt float64, target geometry.Vector3D) geometry.Vector3D {
	return b.steer(dt, target.Sub(b.position))
}

// containment pulls the boid back once it leaves its boundary sphere.
func (b *Boid) containment(dt float64) geometry.Vector3D {
	toCenter := b.boundaryOrigin.Sub(b.position)
	if toCenter.Len() <= b.boundaryRadius {
		return geometry.Zero
	}
	return b.steer(dt, toCenter)
}

// alignment steers toward the average heading of neighbors in range.
func (b *Boid) alignment(dt float64, neighbors []*Boid) geometry.Vector3D {
	var sum geometry.Vector3D
	count := 0
	for _, other := range neighbors {
		if other == nil || other == b {
			continue
		}
		if other.position.DistanceTo(b.position) <= b.Settings.AlignmentRange {
			sum = sum.Add(other.velocity)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}
	return b.steer(dt, sum.Mul(1/float64(count)))
}

// cohesion seeks the center of mass of neighbors in range.
func (b *Boid) cohesion(dt float64, neighbors []*Boid) geometry.Vector3D {
	var center geometry.Vector3D
	count := 0
	for _, other := range neighbors {
		if other == nil || other == b {
			continue
		}
		if other.position.DistanceTo(b.position) <= b.Settings.CohesionRange {
			center = center.Add(other.position)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}
	return b.seek(dt, center.Mul(1/float64(count)))
}

// separation steers away from close neighbors by averaging
// (self-neighbor)/distance over every neighbor within SeparationRange.
func (b *Boid) separation(dt float64, neighbors []*Boid) geometry.Vector3D {
	var away geometry.Vector3D
	count := 0
	for _, other := range neighbors {
		if other == nil || other == b {
			continue
		}
		distance := other.position.DistanceTo(b.position)
		if distance > b.Settings.SeparationRange || distance < geometry.Epsilon {
			continue
		}
		away = away.Add(b.position.Sub(other.position).Mul(1 / distance))
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return b.steer(dt, away.Mul(1/float64(count)))
}

// avoidObstacles casts a ray along the heading. On a hit it flees the hit
// point and adds the first cast direction that clears the same obstacle.
// Both terms use AvoidanceWeight so they dominate the flocking forces.
func (b *Boid) avoidObstacles(dt float64, obstacles ObstacleQuery) geometry.Vector3D {
	if obstacles == nil {
		return geometry.Zero
	}
	heading := b.Heading()
	if heading.IsZero() {
		return geometry.Zero
	}
	hits := obstacles.Raycast(geometry.NewRay(b.position, heading), b.Settings.VisionRange)
	if len(hits) == 0 {
		return geometry.Zero
	}

	weight := b.Settings.AvoidanceWeight
	nearest := hits[0]
	force := b.seek(dt, nearest.Point).Negate().Mul(weight)

	if nearest.Obstacle == nil {
		return force
	}
	for _, dir := range b.directions {
		ray := geometry.NewRay(b.position, dir)
		if _, blocked := nearest.Obstacle.Raycast(ray, b.Settings.VisionRange); !blocked {
			force = force.Add(dir.Mul(weight))
			break
		}
	}
	return force
}

// wander seeks a random point of the boundary cube, picking a new one when
// reached or after wanderRetargetTicks ticks.
func (b *Boid) wander(dt float64) geometry.Vector3D {
	if b.position.DistanceTo(b.wanderTarget) < wanderReachDistance || b.wanderTicks > wanderRetargetTicks {
		b.wanderTarget = b.randomWanderTarget()
		b.wanderTicks = 0
	}
	return b.seek(dt, b.wanderTarget)
}

func (b *Boid) randomWanderTarget() geometry.Vector3D {
	return b.boundaryOrigin.Add(geometry.RandomVectorInCube(b.rng, b.boundaryRadius))
}

// ---------------------------------------------------------------------
// Integration and orientation
// ---------------------------------------------------------------------

// integrate applies the acceleration and moves the boid by one velocity step.
// The displacement is per tick and not scaled by dt, only steering is.
func (b *Boid) integrate() {
	b.velocity = b.velocity.Add(b.acceleration)
	b.acceleration = geometry.Zero

	if b.velocity.IsZero() {
		// no direction left, keep going where the boid faces at minimum speed
		heading := b.Heading()
		if heading.IsZero() {
			heading = DefaultForward
		}
		b.velocity = heading.Mul(b.Settings.MinSpeed)
	} else {
		b.velocity = b.velocity.ClampLength(b.Settings.MinSpeed, b.Settings.MaxSpeed)
	}

	b.position = b.position.Add(b.velocity)
	b.handle.SetPosition(b.position)
}

// lookWhereGoing turns the handle toward the average of recent velocities.
func (b *Boid) lookWhereGoing() {
	b.history.push(b.velocity, b.Settings.historySize())
	heading := b.history.average()
	if heading.IsZero() {
		return
	}
	b.handle.LookAt(b.position.Add(heading))
}
