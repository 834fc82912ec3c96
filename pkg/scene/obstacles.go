package scene

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// Shape is an obstacle the scene can index.
type Shape interface {
	behavior.Obstacle
	rtreego.Spatial
	Name() string
	// Min and Max are the corners of the axis aligned bounding box.
	Min() geometry.Vector3D
	Max() geometry.Vector3D
}

// SphereObstacle is a solid ball, e.g. a pillar cap or a rock.
type SphereObstacle struct {
	name   string
	center geometry.Vector3D
	radius float64
	bounds rtreego.Rect
}

// NewSphereObstacle fails when radius is not positive.
func NewSphereObstacle(name string, center geometry.Vector3D, radius float64) (*SphereObstacle, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere %q radius %v: %w", name, radius, ErrInvalidShape)
	}
	s := &SphereObstacle{name: name, center: center, radius: radius}
	r := geometry.Vector3D{X: radius, Y: radius, Z: radius}
	bounds, err := boundsRect(center.Sub(r), center.Add(r))
	if err != nil {
		return nil, fmt.Errorf("sphere %q bounds: %w", name, err)
	}
	s.bounds = bounds
	return s, nil
}

func (s *SphereObstacle) Name() string { return s.name }

func (s *SphereObstacle) Bounds() rtreego.Rect { return s.bounds }

func (s *SphereObstacle) Center() geometry.Vector3D { return s.center }

func (s *SphereObstacle) Radius() float64 { return s.radius }

func (s *SphereObstacle) Min() geometry.Vector3D {
	return s.center.Sub(geometry.Vector3D{X: s.radius, Y: s.radius, Z: s.radius})
}

func (s *SphereObstacle) Max() geometry.Vector3D {
	return s.center.Add(geometry.Vector3D{X: s.radius, Y: s.radius, Z: s.radius})
}

func (s *SphereObstacle) Raycast(ray geometry.Ray, maxDistance float64) (behavior.Intersection, bool) {
	d, ok := ray.IntersectSphere(s.center, s.radius, maxDistance)
	if !ok {
		return behavior.Intersection{}, false
	}
	return behavior.Intersection{Point: ray.At(d), Distance: d, Obstacle: s}, true
}

// BoxObstacle is an axis aligned box, e.g. a wall or a display case.
type BoxObstacle struct {
	name     string
	min, max geometry.Vector3D
	bounds   rtreego.Rect
}

// NewBoxObstacle accepts the corners in any order. A box must have volume.
func NewBoxObstacle(name string, a, b geometry.Vector3D) (*BoxObstacle, error) {
	lo, hi := a.Min(b), a.Max(b)
	if hi.X-lo.X <= 0 || hi.Y-lo.Y <= 0 || hi.Z-lo.Z <= 0 {
		return nil, fmt.Errorf("box %q from %v to %v: %w", name, lo, hi, ErrInvalidShape)
	}
	bounds, err := boundsRect(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("box %q bounds: %w", name, err)
	}
	return &BoxObstacle{name: name, min: lo, max: hi, bounds: bounds}, nil
}

func (b *BoxObstacle) Name() string { return b.name }

func (b *BoxObstacle) Bounds() rtreego.Rect { return b.bounds }

func (b *BoxObstacle) Min() geometry.Vector3D { return b.min }

func (b *BoxObstacle) Max() geometry.Vector3D { return b.max }

func (b *BoxObstacle) Raycast(ray geometry.Ray, maxDistance float64) (behavior.Intersection, bool) {
	d, ok := ray.IntersectAABB(b.min, b.max, maxDistance)
	if !ok {
		return behavior.Intersection{}, false
	}
	return behavior.Intersection{Point: ray.At(d), Distance: d, Obstacle: b}, true
}

// boundsRect converts a box to an R-tree rect. rtreego rejects flat
// rects, so every side is padded by minExtent.
func boundsRect(lo, hi geometry.Vector3D) (rtreego.Rect, error) {
	lo = lo.Sub(geometry.Vector3D{X: minExtent, Y: minExtent, Z: minExtent})
	size := hi.Sub(lo).Add(geometry.Vector3D{X: minExtent, Y: minExtent, Z: minExtent})
	return rtreego.NewRect(rtreego.Point(lo.Slice()), size.Slice())
}
