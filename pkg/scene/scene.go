// Package scene holds the static obstacles of the world and answers the
// ray queries boids use to avoid them.
package scene

import (
	"errors"
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

const (
	dimensions = 3
	// R-tree node fill, small because scenes hold tens of obstacles.
	minChildren = 4
	maxChildren = 16
	// minExtent pads rects so axis aligned rays still have volume.
	minExtent = 1e-6
)

var ErrInvalidShape = errors.New("invalid obstacle shape")

// Scene is a behavior.ObstacleQuery backed by an R-tree.
// It must not be modified while a tick is running.
type Scene struct {
	tree   *rtreego.Rtree
	shapes []Shape
}

var _ behavior.ObstacleQuery = (*Scene)(nil)

// New creates a scene holding shapes.
func New(shapes ...Shape) *Scene {
	spatials := make([]rtreego.Spatial, 0, len(shapes))
	kept := make([]Shape, 0, len(shapes))
	for _, s := range shapes {
		if s == nil {
			continue
		}
		spatials = append(spatials, s)
		kept = append(kept, s)
	}
	return &Scene{
		tree:   rtreego.NewTree(dimensions, minChildren, maxChildren, spatials...),
		shapes: kept,
	}
}

// Add inserts a shape. A nil shape is ignored.
func (s *Scene) Add(shape Shape) {
	if shape == nil {
		return
	}
	s.tree.Insert(shape)
	s.shapes = append(s.shapes, shape)
}

// Len is the number of obstacles.
func (s *Scene) Len() int { return len(s.shapes) }

// Obstacles returns the shapes in insertion order. The slice must not be modified.
func (s *Scene) Obstacles() []Shape { return s.shapes }

// Raycast returns every hit within maxDistance, nearest first. Only shapes
// whose bounds intersect the bounds of the ray segment are tested.
func (s *Scene) Raycast(ray geometry.Ray, maxDistance float64) []behavior.Intersection {
	if len(s.shapes) == 0 || maxDistance <= 0 || ray.Direction.IsZero() {
		return nil
	}
	lo, hi := ray.Bounds(maxDistance)
	bb, err := boundsRect(lo, hi)
	if err != nil {
		return nil
	}

	var hits []behavior.Intersection
	for _, candidate := range s.tree.SearchIntersect(bb) {
		shape, ok := candidate.(Shape)
		if !ok {
			continue
		}
		if hit, ok := shape.Raycast(ray, maxDistance); ok {
			hits = append(hits, hit)
		}
	}
	behavior.SortIntersections(hits)
	return hits
}

// String lists the obstacles, for logs.
func (s *Scene) String() string {
	return fmt.Sprintf("scene with %d obstacles", len(s.shapes))
}
